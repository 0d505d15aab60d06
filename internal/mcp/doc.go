// Package mcp implements the Model Context Protocol server for openl-mcp.
//
// The server exposes OpenL Studio test execution as MCP tools for AI
// assistants: starting asynchronous test runs, polling aggregated results
// with session affinity, filtering results to one rule table, and a small
// read-only project/table browsing surface.
//
// # Architecture
//
//	MCP client (assistant)
//	     |  JSON-RPC over stdio or streamable HTTP
//	     v
//	Server (official MCP SDK)
//	     |  typed tool handlers, schemas inferred via jsonschema-go
//	     v
//	testrun.Service ---- session.Store (correlation headers per project)
//	     |
//	     v
//	openl.Client  ->  OpenL Studio REST API
//
// # Error handling
//
// Tool handlers distinguish domain failures from system failures. Domain
// failures (missing argument, no active test session, remote rejection)
// become text results with IsError set so the assistant can react; only
// implementation bugs propagate as protocol errors. Error text is
// sanitized before leaving the process: no tokens, no internal paths.
package mcp
