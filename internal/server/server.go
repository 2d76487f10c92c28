// Package server provides the MCP server implementation for the mdpack service.
package server

import (
	"errors"
	"log/slog"
	"time"

	"github.com/localrivet/gomcp/server"
	"github.com/localrivet/mdpack/internal/docstore"
	"github.com/localrivet/mdpack/internal/errortypes"
	"github.com/localrivet/mdpack/internal/telemetry"
	"github.com/localrivet/mdpack/internal/tools"
)

// ServerName is the name announced to MCP clients.
const ServerName = "mdpack"

// Common server error types
var (
	ErrServerNotInitialized = errors.New("server not initialized")
	ErrMissingDependencies  = errors.New("one or more required dependencies are nil")
)

// MCPDocumentToolServer implements the DocumentToolServer interface.
// It owns one document collection for its lifespan and binds the
// document tools and mdp:// resources onto it.
type MCPDocumentToolServer struct {
	store        *docstore.Collection
	metrics      *telemetry.MetricsCollector
	mcpServer    server.Server
	searchLimit  int
	contextLimit int
}

// NewDocumentToolServer creates a new MCPDocumentToolServer instance.
// A nil metrics collector is replaced with a fresh one.
func NewDocumentToolServer(store *docstore.Collection, metrics *telemetry.MetricsCollector) *MCPDocumentToolServer {
	if metrics == nil {
		metrics = telemetry.NewMetricsCollector()
	}
	return &MCPDocumentToolServer{
		store:        store,
		metrics:      metrics,
		searchLimit:  tools.DefaultSearchLimit,
		contextLimit: tools.DefaultContextLimit,
	}
}

// WithLimits overrides the default result limits applied when a
// request omits max_results.
func (s *MCPDocumentToolServer) WithLimits(searchLimit, contextLimit int) *MCPDocumentToolServer {
	if searchLimit > 0 {
		s.searchLimit = searchLimit
	}
	if contextLimit > 0 {
		s.contextLimit = contextLimit
	}
	return s
}

// Initialize initializes the server, registering all tools and resources.
func (s *MCPDocumentToolServer) Initialize() error {
	slog.Info("Initializing MCP Document Tool Server")

	if s.store == nil {
		return errortypes.ConfigError(ErrMissingDependencies, "server initialization failed")
	}

	// Create the MCP server
	srv := server.NewServer(ServerName)

	// Register document tools
	srv = srv.Tool(tools.ToolCreateDocument, "Create a new document with content and optional metadata",
		s.handleCreateDocument)

	srv = srv.Tool(tools.ToolUpdateDocument, "Update an existing document's content and/or metadata",
		s.handleUpdateDocument)

	srv = srv.Tool(tools.ToolDeleteDocument, "Delete a document by ID",
		s.handleDeleteDocument)

	srv = srv.Tool(tools.ToolSearchDocuments, "Search documents matching a query",
		s.handleSearchDocuments)

	srv = srv.Tool(tools.ToolFetchContext, "Fetch context snippets relevant to a query",
		s.handleFetchContext)

	// Register read-only resources
	srv = srv.Resource(tools.ResourceDocumentContent, "Raw content of a document",
		s.handleDocumentContent)

	srv = srv.Resource(tools.ResourceDocumentMetadata, "Document metadata as key: value lines",
		s.handleDocumentMetadata)

	srv = srv.Resource(tools.ResourceCollectionList, "Collection listing as id: title lines",
		s.handleCollectionList)

	s.mcpServer = srv
	slog.Info("MCP Document Tool Server initialized successfully", "tool_count", 5, "resource_count", 3)
	return nil
}

// Start starts the MCP server on the stdio transport.
func (s *MCPDocumentToolServer) Start() error {
	if s.mcpServer == nil {
		return errortypes.ConfigError(ErrServerNotInitialized, "cannot start server")
	}

	slog.Info("Starting MCP Document Tool Server")

	stdioServer := s.mcpServer.AsStdio()
	return stdioServer.Run()
}

// Stop gracefully shuts down the MCP server and releases the collection.
func (s *MCPDocumentToolServer) Stop() error {
	slog.Info("Stopping MCP Document Tool Server")
	// The server exits when stdin is closed; the in-memory collection
	// needs no flush, only release.
	return s.store.Close()
}

// Metrics returns the metrics collector used by the server.
func (s *MCPDocumentToolServer) Metrics() *telemetry.MetricsCollector {
	return s.metrics
}

// handleCreateDocument handles the create_document MCP tool call.
func (s *MCPDocumentToolServer) handleCreateDocument(ctx *server.Context, req tools.CreateDocumentRequest) (string, error) {
	slog.Info("Processing create_document request", "content_length", len(req.Content))
	defer s.recordLatency(time.Now())

	id, err := s.store.Add(req.Content, tools.StringifyMetadata(req.Metadata))
	if err != nil {
		return "", s.toolFailure(tools.ToolCreateDocument, err)
	}

	s.metrics.IncrementCounter(telemetry.MetricDocumentsCreated, 1)
	s.metrics.SetGauge(telemetry.MetricDocumentCount, float64(s.store.Len()))

	slog.Info("Successfully created document", "doc_id", id)
	return tools.FormatCreateConfirmation(id), nil
}

// handleUpdateDocument handles the update_document MCP tool call.
func (s *MCPDocumentToolServer) handleUpdateDocument(ctx *server.Context, req tools.UpdateDocumentRequest) (string, error) {
	slog.Info("Processing update_document request", "doc_id", req.DocID)
	defer s.recordLatency(time.Now())

	if req.DocID == "" {
		err := errortypes.InvalidArgumentError(errors.New("doc_id cannot be empty"), "invalid update_document request")
		return "", s.toolFailure(tools.ToolUpdateDocument, err)
	}

	err := s.store.Update(req.DocID, req.Content, tools.StringifyMetadata(req.Metadata))
	if err != nil {
		return "", s.toolFailure(tools.ToolUpdateDocument, err)
	}

	s.metrics.IncrementCounter(telemetry.MetricDocumentsUpdated, 1)

	slog.Info("Successfully updated document", "doc_id", req.DocID)
	return tools.FormatUpdateConfirmation(req.DocID), nil
}

// handleDeleteDocument handles the delete_document MCP tool call.
func (s *MCPDocumentToolServer) handleDeleteDocument(ctx *server.Context, req tools.DeleteDocumentRequest) (string, error) {
	slog.Info("Processing delete_document request", "doc_id", req.DocID)
	defer s.recordLatency(time.Now())

	if err := s.store.Remove(req.DocID); err != nil {
		return "", s.toolFailure(tools.ToolDeleteDocument, err)
	}

	s.metrics.IncrementCounter(telemetry.MetricDocumentsDeleted, 1)
	s.metrics.SetGauge(telemetry.MetricDocumentCount, float64(s.store.Len()))

	slog.Info("Successfully deleted document", "doc_id", req.DocID)
	return tools.FormatDeleteConfirmation(req.DocID), nil
}

// handleSearchDocuments handles the search_documents MCP tool call.
func (s *MCPDocumentToolServer) handleSearchDocuments(ctx *server.Context, req tools.SearchDocumentsRequest) (string, error) {
	slog.Info("Processing search_documents request", "query", req.Query, "max_results", req.MaxResults)
	defer s.recordLatency(time.Now())

	limit := req.MaxResults
	if limit <= 0 {
		limit = s.searchLimit
		slog.Debug("Using default limit for search_documents", "limit", limit)
	}

	results, err := s.store.Search(req.Query, limit)
	if err != nil {
		return "", s.toolFailure(tools.ToolSearchDocuments, err)
	}

	s.metrics.IncrementCounter(telemetry.MetricSearches, 1)

	slog.Info("Search completed", "query", req.Query, "result_count", len(results))
	return tools.FormatSearchResults(results, req.Query), nil
}

// handleFetchContext handles the fetch_context MCP tool call. When an
// explicit doc_ids list is given, only those documents are considered
// and search ranking is bypassed; ids not present in the collection
// are skipped. Otherwise the top max_results search hits are used.
func (s *MCPDocumentToolServer) handleFetchContext(ctx *server.Context, req tools.FetchContextRequest) (string, error) {
	slog.Info("Processing fetch_context request", "query", req.Query, "doc_ids", len(req.DocIDs))
	defer s.recordLatency(time.Now())

	limit := req.MaxResults
	if limit <= 0 {
		limit = s.contextLimit
		slog.Debug("Using default limit for fetch_context", "limit", limit)
	}

	var docs []docstore.Document
	if len(req.DocIDs) > 0 {
		for _, id := range req.DocIDs {
			doc, err := s.store.Get(id)
			if err != nil {
				slog.Debug("Skipping unknown document in fetch_context", "doc_id", id)
				continue
			}
			docs = append(docs, doc)
		}
	} else {
		results, err := s.store.Search(req.Query, limit)
		if err != nil {
			return "", s.toolFailure(tools.ToolFetchContext, err)
		}
		for _, r := range results {
			docs = append(docs, r.Document)
		}
	}

	s.metrics.IncrementCounter(telemetry.MetricContextFetches, 1)

	slog.Info("Context fetch completed", "query", req.Query, "document_count", len(docs))
	return tools.FormatContextBlocks(docs, req.Query), nil
}

// handleDocumentContent serves the mdp://docs/{id} resource.
func (s *MCPDocumentToolServer) handleDocumentContent(ctx *server.Context, req tools.DocumentResourceRequest) (string, error) {
	slog.Debug("Reading document content resource", "doc_id", req.ID)

	doc, err := s.store.Get(req.ID)
	if err != nil {
		return "", s.resourceFailure(tools.ResourceDocumentContent, req.ID, err)
	}

	s.metrics.IncrementCounter(telemetry.MetricResourceReads, 1)
	return doc.Content, nil
}

// handleDocumentMetadata serves the mdp://docs/{id}/metadata resource.
func (s *MCPDocumentToolServer) handleDocumentMetadata(ctx *server.Context, req tools.DocumentResourceRequest) (string, error) {
	slog.Debug("Reading document metadata resource", "doc_id", req.ID)

	doc, err := s.store.Get(req.ID)
	if err != nil {
		return "", s.resourceFailure(tools.ResourceDocumentMetadata, req.ID, err)
	}

	s.metrics.IncrementCounter(telemetry.MetricResourceReads, 1)
	return tools.FormatMetadata(doc.Metadata), nil
}

// handleCollectionList serves the mdp://collections/list resource.
func (s *MCPDocumentToolServer) handleCollectionList(ctx *server.Context, req tools.CollectionListRequest) (string, error) {
	slog.Debug("Reading collection list resource")

	s.metrics.IncrementCounter(telemetry.MetricResourceReads, 1)
	return tools.FormatListing(s.store.List()), nil
}

// toolFailure logs a tool handler failure and converts it into the
// error returned to the protocol layer.
func (s *MCPDocumentToolServer) toolFailure(tool string, err error) error {
	var appErr *errortypes.AppError
	if !errors.As(err, &appErr) {
		appErr = errortypes.InternalError(err, "tool handler failed")
	}
	appErr = appErr.WithField("tool", tool).WithField("code", ErrorCode(appErr))

	errortypes.LogError(nil, appErr)
	s.metrics.IncrementCounter(telemetry.MetricToolErrors, 1)
	return appErr
}

// resourceFailure logs a resource handler failure with the URI and id
// needed to diagnose it.
func (s *MCPDocumentToolServer) resourceFailure(uri, id string, err error) error {
	var appErr *errortypes.AppError
	if !errors.As(err, &appErr) {
		appErr = errortypes.InternalError(err, "resource handler failed")
	}
	appErr = appErr.WithField("resource", uri).WithField("doc_id", id).WithField("code", ErrorCode(appErr))

	errortypes.LogError(nil, appErr)
	s.metrics.IncrementCounter(telemetry.MetricResourceErrors, 1)
	return appErr
}

func (s *MCPDocumentToolServer) recordLatency(start time.Time) {
	s.metrics.RecordTimer(telemetry.MetricToolLatency, time.Since(start))
}
