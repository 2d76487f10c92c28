package mdpack

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/localrivet/mdpack/internal/client"
	"github.com/localrivet/mdpack/internal/config"
	"github.com/localrivet/mdpack/internal/docstore"
	"github.com/localrivet/mdpack/internal/errortypes"
	"github.com/localrivet/mdpack/internal/server"
	"github.com/localrivet/mdpack/internal/telemetry"
)

// Version is the current version of the mdpack library
const Version = "0.1.0"

// Config represents the configuration for the mdpack service.
type Config = config.Config

// Document is a stored document with its id, content and metadata.
type Document = docstore.Document

// SearchResult is a document paired with its relevance score.
type SearchResult = docstore.SearchResult

// Server represents the mdpack service: an in-memory document
// collection exposed over MCP tools and resources.
type Server struct {
	config     *config.Config
	store      *docstore.Collection
	metrics    *telemetry.MetricsCollector
	toolServer server.DocumentToolServer
	logger     *slog.Logger
}

// ServerOptions defines the options for creating a new Server.
type ServerOptions struct {
	Config     *Config      // Pre-filled config. If nil, ConfigPath is used.
	ConfigPath string       // Path to config file. Used if Config is nil. If both are empty, DefaultConfig() is used.
	Logger     *slog.Logger // External logger. If nil, slog.Default() is used.
}

// NewServer creates a new mdpack Server with the given options.
// If opts.Config is provided, it will be used directly.
// Otherwise, if opts.ConfigPath is provided, configuration will be loaded from that path.
// If neither is provided, DefaultConfig() will be used.
// If opts.Logger is nil, slog.Default() will be used.
func NewServer(opts ServerOptions) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg *Config
	var err error

	if opts.Config != nil {
		cfg = opts.Config
		logger.Info("Using provided Config object for server initialization")
	} else if opts.ConfigPath != "" {
		logger.Info("Loading configuration for server initialization", "path", opts.ConfigPath)
		cfg, err = config.LoadConfigWithPath(opts.ConfigPath)
		if err != nil {
			logger.Error("Failed to load configuration from path", "path", opts.ConfigPath, "error", err)
			return nil, errortypes.ConfigError(err, "Failed to load configuration from path: "+opts.ConfigPath)
		}
	} else {
		logger.Warn("No Config object or ConfigPath provided, using default configuration for server initialization")
		cfg = DefaultConfig()
	}

	store, metrics, err := CreateComponents(cfg, logger)
	if err != nil {
		logger.Error("Failed to create components during server initialization", "error", err)
		return nil, err
	}

	logger.Info("Initializing document tool server component")
	mcpServer := server.NewDocumentToolServer(store, metrics).
		WithLimits(cfg.Limits.SearchResults, cfg.Limits.ContextResults)
	err = mcpServer.Initialize()
	if err != nil {
		logger.Error("Failed to initialize MCP document tool server component", "error", err)
		return nil, errortypes.ConfigError(err, "Failed to initialize MCP document tool server component")
	}

	logger.Info("mdpack server successfully initialized")
	return &Server{
		config:     cfg,
		store:      store,
		metrics:    metrics,
		toolServer: mcpServer,
		logger:     logger,
	}, nil
}

// DefaultConfig returns the default configuration for the mdpack service.
func DefaultConfig() *Config {
	return config.NewConfig()
}

// SaveConfig writes the configuration to the given path and returns
// the JSON content that was written.
func SaveConfig(cfg *Config, path string) ([]byte, error) {
	// Pretty-print the JSON for better readability
	content, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, errortypes.ConfigError(err, "failed to marshal configuration")
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return nil, errortypes.ConfigError(err, "failed to write config file")
	}

	return content, nil
}

// Start starts the mdpack service on the stdio transport.
func (s *Server) Start() error {
	s.logger.Info("Starting mdpack service")
	return s.toolServer.Start()
}

// Stop stops the mdpack service and releases the collection.
func (s *Server) Stop() error {
	s.logger.Info("Stopping mdpack service")
	err := s.toolServer.Stop()
	if err != nil {
		s.logger.Error("Error stopping tool server", "error", err)
		return err
	}

	s.logger.Info("mdpack service stopped")
	return nil
}

// CreateDocument adds a document to the collection and returns its id.
func (s *Server) CreateDocument(content string, metadata map[string]string) (string, error) {
	s.logger.Debug("Creating document", "content_length", len(content))
	id, err := s.store.Add(content, metadata)
	if err != nil {
		s.logger.Error("Failed to create document", "error", err)
		return "", err
	}

	s.logger.Info("Successfully created document", "id", id)
	return id, nil
}

// GetDocument returns a document by id.
func (s *Server) GetDocument(id string) (Document, error) {
	return s.store.Get(id)
}

// UpdateDocument updates a document's content and/or metadata. A nil
// content keeps the existing content; metadata keys are merged into
// the existing metadata.
func (s *Server) UpdateDocument(id string, content *string, metadata map[string]string) error {
	s.logger.Debug("Updating document", "id", id)
	return s.store.Update(id, content, metadata)
}

// DeleteDocument removes a document by id.
func (s *Server) DeleteDocument(id string) error {
	s.logger.Debug("Deleting document", "id", id)
	return s.store.Remove(id)
}

// SearchDocuments returns the documents matching the query, best first.
func (s *Server) SearchDocuments(query string, maxResults int) ([]SearchResult, error) {
	s.logger.Debug("Searching documents", "query", query, "max_results", maxResults)
	results, err := s.store.Search(query, maxResults)
	if err != nil {
		s.logger.Error("Failed to search documents", "query", query, "error", err)
		return nil, err
	}

	s.logger.Info("Search completed", "query", query, "count", len(results))
	return results, nil
}

// FetchContext returns the context snippet of a document around the
// first occurrence of the query.
func (s *Server) FetchContext(id, query string) (string, error) {
	return s.store.Context(id, query)
}

// ListDocuments returns all documents ordered by id.
func (s *Server) ListDocuments() []Document {
	return s.store.List()
}

// GetStore returns the document collection used by the server.
func (s *Server) GetStore() *docstore.Collection {
	return s.store
}

// GetMetrics returns the metrics collector used by the server.
func (s *Server) GetMetrics() *telemetry.MetricsCollector {
	return s.metrics
}

// CreateComponents creates and initializes the components of the
// mdpack service without creating a server instance. This is useful
// for embedders that need direct access to the collection and metrics.
func CreateComponents(cfg *Config, logger *slog.Logger) (*docstore.Collection, *telemetry.MetricsCollector, error) {
	if logger == nil {
		logger = slog.Default()
		logger.Debug("CreateComponents called with nil logger, defaulting to slog.Default()")
	}

	logger.Info("Initializing in-memory document collection",
		"search_limit", cfg.Limits.SearchResults, "context_limit", cfg.Limits.ContextResults)
	store := docstore.NewCollection()
	metrics := telemetry.NewMetricsCollector()

	logger.Info("Components successfully initialized via CreateComponents")
	return store, metrics, nil
}

// ClientOptions defines the options for creating a new Client.
type ClientOptions = client.Options

// NewClient opens a client facade per the options.
func NewClient(opts ClientOptions) (*client.Facade, error) {
	return client.NewFacade(opts)
}

// NewSyncClient wraps a facade in a synchronous adapter that
// serializes calls onto a single scheduler goroutine.
func NewSyncClient(facade *client.Facade, opts ...client.SyncOption) *client.SyncAdapter {
	return client.NewSyncAdapter(facade, opts...)
}
