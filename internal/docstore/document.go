// Package docstore provides the in-memory document collection used by
// the mdpack service: document storage, identity, search ranking, and
// context snippet extraction.
package docstore

// DefaultTitle is the placeholder used when a document carries no
// "title" metadata key.
const DefaultTitle = "Untitled"

// Document is a value type holding a document's identity, content,
// and metadata. A Document that has not been added to a Collection
// has an empty ID; once added it keeps the same ID for its lifetime
// in that Collection.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// Clone returns a deep copy of the document. The Collection hands out
// clones so callers cannot mutate canonical state except through Update.
func (d Document) Clone() Document {
	md := make(map[string]string, len(d.Metadata))
	for k, v := range d.Metadata {
		md[k] = v
	}
	return Document{
		ID:       d.ID,
		Content:  d.Content,
		Metadata: md,
	}
}

// Title returns the document's "title" metadata value, or DefaultTitle
// when the key is absent or empty.
func (d Document) Title() string {
	if t := d.Metadata["title"]; t != "" {
		return t
	}
	return DefaultTitle
}
