package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mdpack "github.com/localrivet/mdpack"
	"github.com/localrivet/mdpack/internal/config"
	"github.com/localrivet/mdpack/internal/docstore"
	"github.com/localrivet/mdpack/internal/errortypes"
	"github.com/localrivet/mdpack/internal/logger"
	"github.com/localrivet/mdpack/internal/server"
	"github.com/localrivet/mdpack/internal/telemetry"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigFilename, "path to the configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("mdpack " + mdpack.Version)
		return
	}

	// Initialize logging first thing
	appLogger := setupLogging()

	appLogger.Info("mdpack MCP Server - Starting...")

	// Load configuration
	cfg, err := config.LoadConfigWithPath(*configPath)
	if err != nil {
		errortypes.LogError(nil, err)
		appLogger.Fatal("Failed to load configuration")
	}

	// Configure logging based on config
	if cfg.Logging.Level != "" {
		appLogger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
		appLogger.Info("Log level set to %s", cfg.Logging.Level)
	}

	if cfg.Logging.Format == "json" {
		appLogger.SetFormat(logger.JSON)
		appLogger.Info("Log format set to JSON")
	}

	// Initialize the document collection
	store := docstore.NewCollection()
	storeLogger := appLogger.WithContext("store")
	storeLogger.Info("In-memory document collection initialized")

	// Initialize metrics
	metrics := telemetry.NewMetricsCollector()

	// Initialize the MCP server
	srv := server.NewDocumentToolServer(store, metrics).
		WithLimits(cfg.Limits.SearchResults, cfg.Limits.ContextResults)
	srvLogger := appLogger.WithContext("server")

	err = srv.Initialize()
	if err != nil {
		errortypes.LogError(nil, errortypes.ConfigError(err, "Failed to initialize MCP server"))
		appLogger.Fatal("Failed to initialize MCP server")
	}
	srvLogger.Info("MCP server initialized")

	// Handle graceful shutdown
	setupSignalHandler(store, appLogger)

	// Start the MCP server (this will block until server is terminated)
	srvLogger.Info("Starting MCP server...")
	if err := srv.Start(); err != nil {
		errortypes.LogError(nil, errortypes.TransportError(err, "MCP server failed"))
		appLogger.Fatal("Failed to start MCP server")
	}
}

// setupLogging configures and returns the application logger
func setupLogging() *logger.Logger {
	// Create default configuration
	cfg := logger.DefaultConfig()

	// Try to get log level from environment variable
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		cfg.Level = logger.ParseLevel(levelStr)
	}

	// Create and return logger
	appLogger := logger.New(cfg)
	logger.SetDefaultLogger(appLogger)

	return appLogger
}

// setupSignalHandler sets up a signal handler for graceful shutdown.
func setupSignalHandler(store *docstore.Collection, log *logger.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("Received shutdown signal, terminating gracefully...")

		// Release the in-memory collection
		if err := store.Close(); err != nil {
			errortypes.LogError(nil, errortypes.InternalError(err, "Error closing collection during shutdown"))
		} else {
			log.Info("Collection closed successfully")
		}

		log.Info("Shutdown complete")
		os.Exit(0)
	}()
}
