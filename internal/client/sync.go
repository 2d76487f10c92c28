package client

import (
	"errors"
	"sync"
	"time"

	"github.com/localrivet/mdpack/internal/docstore"
	"github.com/localrivet/mdpack/internal/errortypes"
	"github.com/localrivet/mdpack/internal/tools"
)

// SyncAdapter serializes facade calls from any number of goroutines
// onto a single scheduler goroutine, so callers never touch the
// session concurrently. Calls observe an optional per-call deadline:
// on expiry the caller gets a timeout error while the in-flight job
// runs to completion on the scheduler and its result is discarded.
type SyncAdapter struct {
	facade  *Facade
	work    chan func()
	done    chan struct{}
	timeout time.Duration

	mu     sync.Mutex
	closed bool
}

// SyncOption configures a SyncAdapter.
type SyncOption func(*SyncAdapter)

// WithCallTimeout sets the per-call deadline. Zero means wait forever.
func WithCallTimeout(d time.Duration) SyncOption {
	return func(a *SyncAdapter) {
		a.timeout = d
	}
}

// NewSyncAdapter wraps a facade and starts the scheduler goroutine.
func NewSyncAdapter(facade *Facade, opts ...SyncOption) *SyncAdapter {
	a := &SyncAdapter{
		facade: facade,
		work:   make(chan func()),
		done:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt(a)
	}

	go a.run()
	return a
}

// run is the scheduler loop. Jobs execute one at a time in submission
// order until Close shuts the adapter down.
func (a *SyncAdapter) run() {
	for {
		select {
		case job := <-a.work:
			job()
		case <-a.done:
			return
		}
	}
}

type outcome struct {
	value interface{}
	err   error
}

// submit hands fn to the scheduler and waits for its result, bounded
// by the call timeout when one is set.
func (a *SyncAdapter) submit(op string, fn func() (interface{}, error)) (interface{}, error) {
	if a.isClosed() {
		return nil, adapterClosed(op)
	}

	// Buffered so a job that completes after its caller timed out can
	// still deliver its result and let the scheduler move on.
	result := make(chan outcome, 1)
	job := func() {
		v, err := fn()
		result <- outcome{value: v, err: err}
	}

	select {
	case a.work <- job:
	case <-a.done:
		return nil, adapterClosed(op)
	}

	if a.timeout <= 0 {
		out := <-result
		return out.value, out.err
	}

	timer := time.NewTimer(a.timeout)
	defer timer.Stop()

	select {
	case out := <-result:
		return out.value, out.err
	case <-timer.C:
		return nil, errortypes.TimeoutError(errors.New("deadline exceeded"),
			"synchronous call timed out").
			WithField("operation", op).
			WithField("timeout", a.timeout.String())
	}
}

// CreateDocument creates a document and returns its new id.
func (a *SyncAdapter) CreateDocument(content string, metadata map[string]string) (string, error) {
	v, err := a.submit(tools.ToolCreateDocument, func() (interface{}, error) {
		return a.facade.CreateDocument(content, metadata)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// ReadDocument reads a full document by id.
func (a *SyncAdapter) ReadDocument(id string) (docstore.Document, error) {
	v, err := a.submit("read_document", func() (interface{}, error) {
		return a.facade.ReadDocument(id)
	})
	if err != nil {
		return docstore.Document{}, err
	}
	return v.(docstore.Document), nil
}

// UpdateDocument updates a document's content and/or metadata.
func (a *SyncAdapter) UpdateDocument(id string, content *string, metadata map[string]string) error {
	_, err := a.submit(tools.ToolUpdateDocument, func() (interface{}, error) {
		return nil, a.facade.UpdateDocument(id, content, metadata)
	})
	return err
}

// DeleteDocument deletes a document by id.
func (a *SyncAdapter) DeleteDocument(id string) error {
	_, err := a.submit(tools.ToolDeleteDocument, func() (interface{}, error) {
		return nil, a.facade.DeleteDocument(id)
	})
	return err
}

// SearchDocuments returns the server-formatted search result text.
func (a *SyncAdapter) SearchDocuments(query string, maxResults int) (string, error) {
	v, err := a.submit(tools.ToolSearchDocuments, func() (interface{}, error) {
		return a.facade.SearchDocuments(query, maxResults)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// FetchContext returns the server-formatted context blocks for a query.
func (a *SyncAdapter) FetchContext(query string, docIDs []string, maxResults int) (string, error) {
	v, err := a.submit(tools.ToolFetchContext, func() (interface{}, error) {
		return a.facade.FetchContext(query, docIDs, maxResults)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// ListDocuments returns the collection listing as an id -> title map.
func (a *SyncAdapter) ListDocuments() (map[string]string, error) {
	v, err := a.submit("list_documents", func() (interface{}, error) {
		return a.facade.ListDocuments()
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]string), nil
}

// Close runs the facade teardown as the final scheduled job, then
// stops the scheduler. Jobs already queued execute before the
// teardown; calls made after Close report session-not-ready. The
// teardown wait observes the same per-call deadline as submit, so a
// wedged scheduler cannot block Close forever.
func (a *SyncAdapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	defer close(a.done)

	result := make(chan error, 1)
	job := func() {
		result <- a.facade.Close()
	}

	if a.timeout <= 0 {
		a.work <- job
		return <-result
	}

	timer := time.NewTimer(a.timeout)
	defer timer.Stop()

	select {
	case a.work <- job:
	case <-timer.C:
		return closeTimedOut(a.timeout)
	}

	select {
	case err := <-result:
		return err
	case <-timer.C:
		return closeTimedOut(a.timeout)
	}
}

func closeTimedOut(timeout time.Duration) error {
	return errortypes.TimeoutError(errors.New("deadline exceeded"),
		"adapter teardown timed out").
		WithField("operation", "close").
		WithField("timeout", timeout.String())
}

func (a *SyncAdapter) isClosed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

func adapterClosed(op string) error {
	return errortypes.SessionNotReadyError(errors.New("sync adapter is closed"),
		"cannot perform operation").WithField("operation", op)
}
