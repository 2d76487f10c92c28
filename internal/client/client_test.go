package client

import (
	"errors"
	"testing"

	"github.com/localrivet/mdpack/internal/errortypes"
)

var testError = errors.New("test error")

// MockSession implements the Session interface for testing
type MockSession struct {
	CalledTools   []string
	CalledArgs    []map[string]interface{}
	ReadURIs      []string
	ToolResults   map[string]interface{}
	ResourceTexts map[string]interface{}
	Closed        bool
	ReturnError   bool
}

func (m *MockSession) CallTool(name string, args map[string]interface{}) (interface{}, error) {
	if m.ReturnError {
		return nil, testError
	}
	m.CalledTools = append(m.CalledTools, name)
	m.CalledArgs = append(m.CalledArgs, args)
	if res, ok := m.ToolResults[name]; ok {
		return res, nil
	}
	return "", nil
}

func (m *MockSession) GetResource(uri string) (interface{}, error) {
	if m.ReturnError {
		return nil, testError
	}
	m.ReadURIs = append(m.ReadURIs, uri)
	if res, ok := m.ResourceTexts[uri]; ok {
		return res, nil
	}
	return "", nil
}

func (m *MockSession) Close() error {
	if m.ReturnError {
		return testError
	}
	m.Closed = true
	return nil
}

func newTestFacade(t *testing.T, sess *MockSession) *Facade {
	t.Helper()
	f, err := NewFacade(Options{Session: sess})
	if err != nil {
		t.Fatalf("NewFacade failed: %v", err)
	}
	return f
}

func TestNewFacadeRequiresSessionOrConfig(t *testing.T) {
	_, err := NewFacade(Options{})
	if err == nil {
		t.Fatal("Expected error without session or server config")
	}
}

func TestCreateDocument(t *testing.T) {
	sess := &MockSession{
		ToolResults: map[string]interface{}{
			"create_document": "Document created with ID: abc-123",
		},
	}
	f := newTestFacade(t, sess)

	id, err := f.CreateDocument("hello", map[string]string{"title": "T"})
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	if id != "abc-123" {
		t.Errorf("Expected id 'abc-123', got %q", id)
	}

	if len(sess.CalledTools) != 1 || sess.CalledTools[0] != "create_document" {
		t.Fatalf("Expected one create_document call, got %v", sess.CalledTools)
	}
	if sess.CalledArgs[0]["content"] != "hello" {
		t.Errorf("Expected content argument, got %v", sess.CalledArgs[0])
	}
}

func TestCreateDocumentUnparseableResponse(t *testing.T) {
	sess := &MockSession{
		ToolResults: map[string]interface{}{
			"create_document": "something unexpected",
		},
	}
	f := newTestFacade(t, sess)

	_, err := f.CreateDocument("hello", nil)
	if !errortypes.IsTransportError(err) {
		t.Errorf("Expected transport error for unparseable response, got %v", err)
	}
}

func TestReadDocument(t *testing.T) {
	sess := &MockSession{
		ResourceTexts: map[string]interface{}{
			"mdp://docs/abc":          "raw body",
			"mdp://docs/abc/metadata": "author: sam\ntitle: Doc",
		},
	}
	f := newTestFacade(t, sess)

	doc, err := f.ReadDocument("abc")
	if err != nil {
		t.Fatalf("ReadDocument failed: %v", err)
	}
	if doc.ID != "abc" || doc.Content != "raw body" {
		t.Errorf("Unexpected document: %+v", doc)
	}
	if doc.Metadata["title"] != "Doc" || doc.Metadata["author"] != "sam" {
		t.Errorf("Unexpected metadata: %v", doc.Metadata)
	}

	if len(sess.ReadURIs) != 2 {
		t.Fatalf("Expected 2 resource reads, got %v", sess.ReadURIs)
	}
}

func TestUpdateDocumentArguments(t *testing.T) {
	sess := &MockSession{}
	f := newTestFacade(t, sess)

	content := "new body"
	err := f.UpdateDocument("abc", &content, map[string]string{"k": "v"})
	if err != nil {
		t.Fatalf("UpdateDocument failed: %v", err)
	}

	args := sess.CalledArgs[0]
	if args["doc_id"] != "abc" || args["content"] != "new body" {
		t.Errorf("Unexpected args: %v", args)
	}

	// Nil content must not appear in the arguments at all
	if err := f.UpdateDocument("abc", nil, map[string]string{"k": "v"}); err != nil {
		t.Fatalf("UpdateDocument failed: %v", err)
	}
	if _, ok := sess.CalledArgs[1]["content"]; ok {
		t.Errorf("Nil content should be omitted, got %v", sess.CalledArgs[1])
	}
}

func TestSearchDocumentsDefaultLimit(t *testing.T) {
	sess := &MockSession{}
	f := newTestFacade(t, sess)

	if _, err := f.SearchDocuments("query", 0); err != nil {
		t.Fatalf("SearchDocuments failed: %v", err)
	}
	if sess.CalledArgs[0]["max_results"] != 10 {
		t.Errorf("Expected default max_results 10, got %v", sess.CalledArgs[0]["max_results"])
	}
}

func TestFetchContextArguments(t *testing.T) {
	sess := &MockSession{}
	f := newTestFacade(t, sess)

	if _, err := f.FetchContext("query", []string{"a", "b"}, 0); err != nil {
		t.Fatalf("FetchContext failed: %v", err)
	}

	args := sess.CalledArgs[0]
	if args["max_results"] != 5 {
		t.Errorf("Expected default max_results 5, got %v", args["max_results"])
	}
	ids, ok := args["doc_ids"].([]string)
	if !ok || len(ids) != 2 {
		t.Errorf("Expected doc_ids argument, got %v", args["doc_ids"])
	}

	// Empty doc_ids are omitted entirely
	if _, err := f.FetchContext("query", nil, 3); err != nil {
		t.Fatalf("FetchContext failed: %v", err)
	}
	if _, ok := sess.CalledArgs[1]["doc_ids"]; ok {
		t.Errorf("Empty doc_ids should be omitted, got %v", sess.CalledArgs[1])
	}
}

func TestListDocuments(t *testing.T) {
	sess := &MockSession{
		ResourceTexts: map[string]interface{}{
			"mdp://collections/list": "a1: First\nb2: Untitled",
		},
	}
	f := newTestFacade(t, sess)

	listing, err := f.ListDocuments()
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if listing["a1"] != "First" || listing["b2"] != "Untitled" {
		t.Errorf("Unexpected listing: %v", listing)
	}
}

func TestTransportFailureWrapping(t *testing.T) {
	sess := &MockSession{ReturnError: true}
	f := newTestFacade(t, sess)

	if _, err := f.SearchDocuments("query", 5); !errortypes.IsTransportError(err) {
		t.Errorf("Expected transport error, got %v", err)
	}
	if _, err := f.ReadDocument("abc"); !errortypes.IsTransportError(err) {
		t.Errorf("Expected transport error, got %v", err)
	}
}

func TestCallsAfterCloseReportSessionNotReady(t *testing.T) {
	sess := &MockSession{}
	f := newTestFacade(t, sess)

	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !sess.Closed {
		t.Error("Close should release the session")
	}

	if _, err := f.CreateDocument("x", nil); !errortypes.IsSessionNotReadyError(err) {
		t.Errorf("Expected session-not-ready, got %v", err)
	}
	if _, err := f.ReadDocument("abc"); !errortypes.IsSessionNotReadyError(err) {
		t.Errorf("Expected session-not-ready, got %v", err)
	}
	if err := f.DeleteDocument("abc"); !errortypes.IsSessionNotReadyError(err) {
		t.Errorf("Expected session-not-ready, got %v", err)
	}

	// Close is idempotent
	if err := f.Close(); err != nil {
		t.Errorf("Second Close should be a no-op, got %v", err)
	}
}

func TestCloseMarksClosedEvenOnFailure(t *testing.T) {
	sess := &MockSession{ReturnError: true}
	f := newTestFacade(t, sess)

	if err := f.Close(); !errortypes.IsTransportError(err) {
		t.Errorf("Expected transport error from failing teardown, got %v", err)
	}

	// The facade must still be unusable afterwards
	if _, err := f.SearchDocuments("query", 5); !errortypes.IsSessionNotReadyError(err) {
		t.Errorf("Expected session-not-ready after failed Close, got %v", err)
	}
}
