// Package client provides the client facade and synchronous adapter
// for consuming an mdpack MCP server.
package client

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	gomcpclient "github.com/localrivet/gomcp/client"
	"github.com/localrivet/mdpack/internal/docstore"
	"github.com/localrivet/mdpack/internal/errortypes"
	"github.com/localrivet/mdpack/internal/tools"
)

const (
	clientName      = "mdpack-client"
	protocolVersion = "2025-03-26"
)

// Session is the slice of the MCP client surface the facade depends
// on: tool calls, resource reads, and teardown.
type Session interface {
	CallTool(name string, args map[string]interface{}) (interface{}, error)
	GetResource(uri string) (interface{}, error)
	Close() error
}

// Facade issues resource reads and tool calls over an MCP session and
// decodes the results back into documents and strings. Calls made
// after Close fail with a session-not-ready error. The facade releases
// the session on every exit path once Close is invoked.
type Facade struct {
	mu     sync.Mutex
	sess   Session
	logger *slog.Logger
	closed bool
}

// Options configures a new Facade.
type Options struct {
	// ServerConfigPath points at an mcpservers.json style file that
	// defines how to start and connect to the server process. Used
	// together with ServerName when no Session is injected.
	ServerConfigPath string

	// ServerName selects the server entry within ServerConfigPath.
	ServerName string

	// Session injects an already established session. Takes precedence
	// over ServerConfigPath; used when embedding or testing.
	Session Session

	// Logger is the logger for this facade. slog.Default() if nil.
	Logger *slog.Logger
}

// NewFacade opens a session per the options and returns a ready facade.
func NewFacade(opts Options) (*Facade, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sess := opts.Session
	if sess == nil {
		if opts.ServerConfigPath == "" {
			return nil, errortypes.ConfigError(errors.New("no session and no server config provided"),
				"cannot create client facade")
		}

		logger.Info("Opening MCP session", "server_config", opts.ServerConfigPath, "server", opts.ServerName)
		c, err := gomcpclient.NewClient(clientName,
			gomcpclient.WithProtocolVersion(protocolVersion),
			gomcpclient.WithProtocolNegotiation(true),
			gomcpclient.WithServerConfig(opts.ServerConfigPath, opts.ServerName),
		)
		if err != nil {
			return nil, errortypes.TransportError(err, "failed to open MCP session").
				WithField("server_config", opts.ServerConfigPath).
				WithField("server", opts.ServerName)
		}
		sess = c
	}

	return &Facade{sess: sess, logger: logger}, nil
}

// CreateDocument creates a document and returns its new id.
func (f *Facade) CreateDocument(content string, metadata map[string]string) (string, error) {
	args := map[string]interface{}{"content": content}
	if len(metadata) > 0 {
		args["metadata"] = metadata
	}

	text, err := f.callTool(tools.ToolCreateDocument, args)
	if err != nil {
		return "", err
	}

	if !strings.HasPrefix(text, tools.CreatedPrefix) {
		return "", errortypes.TransportError(errors.New("unexpected create_document response"),
			"could not parse new document id").WithField("response", text)
	}
	return tools.ParseCreateConfirmation(text), nil
}

// ReadDocument reads a document's content and metadata resources and
// reassembles them into a Document value.
func (f *Facade) ReadDocument(id string) (docstore.Document, error) {
	content, err := f.readResource(documentURI(id))
	if err != nil {
		return docstore.Document{}, err
	}

	metaText, err := f.readResource(metadataURI(id))
	if err != nil {
		return docstore.Document{}, err
	}

	return docstore.Document{
		ID:       id,
		Content:  content,
		Metadata: tools.ParseMetadata(metaText),
	}, nil
}

// UpdateDocument updates a document's content and/or metadata. A nil
// content leaves the content untouched; metadata keys are merged
// server-side.
func (f *Facade) UpdateDocument(id string, content *string, metadata map[string]string) error {
	args := map[string]interface{}{"doc_id": id}
	if content != nil {
		args["content"] = *content
	}
	if len(metadata) > 0 {
		args["metadata"] = metadata
	}

	_, err := f.callTool(tools.ToolUpdateDocument, args)
	return err
}

// DeleteDocument deletes a document by id.
func (f *Facade) DeleteDocument(id string) error {
	_, err := f.callTool(tools.ToolDeleteDocument, map[string]interface{}{"doc_id": id})
	return err
}

// SearchDocuments returns the server-formatted search result text.
func (f *Facade) SearchDocuments(query string, maxResults int) (string, error) {
	if maxResults <= 0 {
		maxResults = tools.DefaultSearchLimit
	}
	return f.callTool(tools.ToolSearchDocuments, map[string]interface{}{
		"query":       query,
		"max_results": maxResults,
	})
}

// FetchContext returns the server-formatted context blocks for a
// query. When docIDs is non-empty only those documents are considered.
func (f *Facade) FetchContext(query string, docIDs []string, maxResults int) (string, error) {
	if maxResults <= 0 {
		maxResults = tools.DefaultContextLimit
	}
	args := map[string]interface{}{
		"query":       query,
		"max_results": maxResults,
	}
	if len(docIDs) > 0 {
		args["doc_ids"] = docIDs
	}
	return f.callTool(tools.ToolFetchContext, args)
}

// ListDocuments reads the collection listing resource and parses it
// into an id -> title map.
func (f *Facade) ListDocuments() (map[string]string, error) {
	text, err := f.readResource(tools.ResourceCollectionList)
	if err != nil {
		return nil, err
	}
	return tools.ParseListing(text), nil
}

// Close releases the underlying session. The facade is marked closed
// even when the session teardown itself fails, so later calls report
// session-not-ready rather than touching a broken session.
func (f *Facade) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	sess := f.sess
	f.sess = nil
	f.mu.Unlock()

	f.logger.Info("Closing MCP session")
	if err := sess.Close(); err != nil {
		return errortypes.TransportError(err, "failed to close MCP session")
	}
	return nil
}

// ready returns the live session or a session-not-ready error.
func (f *Facade) ready(op string) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || f.sess == nil {
		return nil, errortypes.SessionNotReadyError(errors.New("client session not initialized"),
			"cannot perform operation").WithField("operation", op)
	}
	return f.sess, nil
}

func (f *Facade) callTool(name string, args map[string]interface{}) (string, error) {
	sess, err := f.ready(name)
	if err != nil {
		return "", err
	}

	f.logger.Debug("Calling tool", "tool", name)
	res, err := sess.CallTool(name, args)
	if err != nil {
		return "", errortypes.TransportError(err, "tool call failed").WithField("tool", name)
	}
	return textResult(res), nil
}

func (f *Facade) readResource(uri string) (string, error) {
	sess, err := f.ready(uri)
	if err != nil {
		return "", err
	}

	f.logger.Debug("Reading resource", "uri", uri)
	res, err := sess.GetResource(uri)
	if err != nil {
		return "", errortypes.TransportError(err, "resource read failed").WithField("uri", uri)
	}
	return textResult(res), nil
}

// textResult flattens a protocol result value to its text form.
func textResult(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

func documentURI(id string) string {
	return strings.Replace(tools.ResourceDocumentContent, "{id}", id, 1)
}

func metadataURI(id string) string {
	return strings.Replace(tools.ResourceDocumentMetadata, "{id}", id, 1)
}
