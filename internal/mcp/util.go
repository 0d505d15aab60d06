package mcp

import (
	"encoding/json"
	"errors"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/openl-tablets/openl-mcp/internal/openl"
	"github.com/openl-tablets/openl-mcp/internal/testrun"
)

// dataToMCP converts arbitrary data to MCP text content via JSON
// marshaling. All tool output becomes JSON text; clients parse it.
func dataToMCP(data any) *sdk.CallToolResult {
	if data == nil {
		return &sdk.CallToolResult{
			Content: []sdk.Content{&sdk.TextContent{Text: ""}},
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		return &sdk.CallToolResult{
			Content: []sdk.Content{&sdk.TextContent{Text: "marshal error"}},
			IsError: true,
		}
	}
	return &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: string(b)}},
	}
}

// errorToMCP maps a domain failure to an IsError text result, or returns
// false for system failures that should propagate as protocol errors.
//
// Domain failures carry their own remediation: a missing session tells the
// assistant to start a run, a RemoteError carries status and endpoint.
// RemoteError messages are sanitized at the gateway, never here.
func errorToMCP(err error) (*sdk.CallToolResult, bool) {
	var remoteErr *openl.RemoteError
	switch {
	case errors.Is(err, testrun.ErrInvalidArgument),
		errors.Is(err, testrun.ErrNoActiveTestSession),
		errors.As(err, &remoteErr):
		return &sdk.CallToolResult{
			Content: []sdk.Content{&sdk.TextContent{Text: err.Error()}},
			IsError: true,
		}, true
	default:
		return nil, false
	}
}
