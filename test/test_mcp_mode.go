package main

import (
	"fmt"
	"os"

	"github.com/localrivet/mdpack/internal/config"
)

func main() {
	// Set MCP_MODE environment variable
	os.Setenv("MCP_MODE", "1")

	fmt.Println("=== Starting MCP Mode Test ===")
	fmt.Println("This line should be visible in terminal output")

	// Config loading logs must stay off stdout so they cannot corrupt
	// the stdio transport stream
	cfg, err := config.LoadConfigWithPath(".mdpackconfig")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Print to confirm config was loaded
	fmt.Println("=== Config Loaded Successfully ===")
	fmt.Printf("Server Name: %s\n", cfg.Server.Name)
	fmt.Printf("Search Limit: %d\n", cfg.Limits.SearchResults)
	fmt.Printf("Log Level: %s\n", cfg.Logging.Level)

	// Reset MCP_MODE
	os.Setenv("MCP_MODE", "")

	fmt.Println("\n=== Testing Without MCP Mode ===")

	cfg2, err := config.LoadConfigWithPath(".mdpackconfig")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Config Loaded Again ===")
	fmt.Printf("Server Name: %s\n", cfg2.Server.Name)
	fmt.Printf("Log Level: %s\n", cfg2.Logging.Level)

	fmt.Println("\n=== Test Complete ===")
}
