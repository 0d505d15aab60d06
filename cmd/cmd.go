// Package cmd provides the CLI commands for openl-mcp.
//
// Commands:
//   - mcp: MCP server on stdio transport (for Claude Desktop, Cursor, ...)
//   - serve: MCP server over streamable HTTP
//
// Signal handling and graceful shutdown are implemented for both commands
// via context cancellation.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
)

// Execute is the main entry point for the openl-mcp CLI.
func Execute() error {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	// stdout belongs to the MCP stdio transport; logs go to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if len(os.Args) < 2 {
		runHelp()
		return nil
	}

	switch os.Args[1] {
	case "mcp":
		return runMCP()
	case "serve":
		return runServe()
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("openl-mcp - MCP server for OpenL Studio test execution")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  openl-mcp mcp          Start MCP server on stdio (for Claude Desktop/Cursor)")
	fmt.Println("  openl-mcp serve [addr] Start MCP server over HTTP (default: 127.0.0.1:8246)")
	fmt.Println("  openl-mcp --version    Show version information")
	fmt.Println("  openl-mcp --help       Show this help")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  OPENL_BASE_URL               Required: OpenL Studio REST base URL")
	fmt.Println("  OPENL_USERNAME               Optional: basic auth user")
	fmt.Println("  OPENL_PASSWORD               Optional: basic auth password")
	fmt.Println("  OPENL_PERSONAL_ACCESS_TOKEN  Optional: token auth (overrides basic)")
	fmt.Println("  OPENL_MCP_OTEL_ENDPOINT      Optional: OTLP trace collector endpoint")
	fmt.Println("  DEBUG                        Optional: enable debug logging")
	fmt.Println()
	fmt.Println("Configuration file: ~/.openl-mcp/config.yaml")
}
