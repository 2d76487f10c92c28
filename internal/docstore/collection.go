package docstore

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/localrivet/mdpack/internal/errortypes"
)

// Collection owns the canonical id -> Document mapping. All mutating
// operations are serialized behind a single exclusive lock; reads may
// interleave with reads. Contents live purely in memory and are lost
// when the collection is closed.
type Collection struct {
	mu     sync.RWMutex
	docs   map[string]Document
	closed bool
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{
		docs: make(map[string]Document),
	}
}

// Add stores a new document and returns its freshly allocated id.
// Content must be non-empty. The metadata map is copied in, so the
// caller may reuse it.
func (c *Collection) Add(content string, metadata map[string]string) (string, error) {
	if content == "" {
		return "", errortypes.InvalidArgumentError(errors.New("content cannot be empty"), "cannot add document")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", errClosed("add")
	}

	id := uuid.NewString()
	md := make(map[string]string, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}

	c.docs[id] = Document{ID: id, Content: content, Metadata: md}
	return id, nil
}

// Get returns a copy of the document with the given id.
func (c *Collection) Get(id string) (Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	doc, ok := c.docs[id]
	if !ok {
		return Document{}, notFound(id)
	}
	return doc.Clone(), nil
}

// Update modifies a stored document. A non-nil content replaces the
// content entirely. Metadata keys are merged into the existing map:
// new keys are added, existing keys overwritten, absent keys left
// untouched. The merge semantics are part of the contract.
func (c *Collection) Update(id string, content *string, metadata map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errClosed("update")
	}

	doc, ok := c.docs[id]
	if !ok {
		return notFound(id)
	}

	if content != nil {
		doc.Content = *content
	}
	for k, v := range metadata {
		doc.Metadata[k] = v
	}

	c.docs[id] = doc
	return nil
}

// Remove deletes the document permanently. The id is never reused.
func (c *Collection) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errClosed("remove")
	}

	if _, ok := c.docs[id]; !ok {
		return notFound(id)
	}
	delete(c.docs, id)
	return nil
}

// Exists reports whether a document with the given id is present.
// It is total and never fails.
func (c *Collection) Exists(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.docs[id]
	return ok
}

// List returns copies of all stored documents, ordered by ascending id
// so enumeration is deterministic. Callers must not rely on insertion
// order.
func (c *Collection) List() []Document {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Document, 0, len(c.docs))
	for _, doc := range c.docs {
		out = append(out, doc.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of stored documents.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.docs)
}

// Close releases the collection. There is nothing to flush; the
// contents are discarded. Operations after Close fail.
func (c *Collection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.docs = nil
	c.closed = true
	return nil
}

func notFound(id string) error {
	return errortypes.NotFoundError(errors.New("document not found"), "no document with the given id").
		WithField("doc_id", id)
}

func errClosed(op string) error {
	return errortypes.InternalError(errors.New("collection is closed"), "operation on closed collection").
		WithField("operation", op)
}
