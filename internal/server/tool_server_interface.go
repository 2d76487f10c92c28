// Package server provides the MCP server implementation for the mdpack service.
package server

// DocumentToolServer defines the interface for the MCP server that
// handles document tool calls and resource reads from MCP clients.
type DocumentToolServer interface {
	// Initialize initializes the server with dependencies and configurations.
	Initialize() error

	// Start starts the MCP server on the specified transport.
	Start() error

	// Stop gracefully shuts down the MCP server.
	Stop() error
}
