package mcp

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ListProjectsInput defines the input schema for list_projects.
type ListProjectsInput struct{}

// ListProjectTablesInput defines the input schema for list_project_tables.
type ListProjectTablesInput struct {
	ProjectID string `json:"projectId" jsonschema:"Identifier of the project"`
}

// OpenProjectInput defines the input schema for open_project.
type OpenProjectInput struct {
	ProjectID string `json:"projectId" jsonschema:"Identifier of the project to open"`
}

// registerProjectTools registers the project browsing tools: list_projects,
// list_project_tables, open_project.
func (s *Server) registerProjectTools() error {
	listSchema, err := jsonschema.For[ListProjectsInput](nil)
	if err != nil {
		return fmt.Errorf("schema for list_projects: %w", err)
	}
	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name:        "list_projects",
		Description: "List the OpenL projects visible to the configured credentials.",
		InputSchema: listSchema,
	}, s.ListProjects)

	tablesSchema, err := jsonschema.For[ListProjectTablesInput](nil)
	if err != nil {
		return fmt.Errorf("schema for list_project_tables: %w", err)
	}
	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name:        "list_project_tables",
		Description: "List the rule tables of a project, including their ids for scoped test runs.",
		InputSchema: tablesSchema,
	}, s.ListProjectTables)

	openSchema, err := jsonschema.For[OpenProjectInput](nil)
	if err != nil {
		return fmt.Errorf("schema for open_project: %w", err)
	}
	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name: "open_project",
		Description: "Open a closed OpenL project. Usually unnecessary: start_project_tests " +
			"opens the project on demand.",
		InputSchema: openSchema,
	}, s.OpenProject)

	return nil
}

// ListProjects handles the list_projects MCP tool call.
func (s *Server) ListProjects(ctx context.Context, req *sdk.CallToolRequest, in ListProjectsInput) (*sdk.CallToolResult, any, error) {
	projects, err := s.catalog.Projects(ctx)
	if err != nil {
		if res, ok := errorToMCP(err); ok {
			return res, nil, nil
		}
		return nil, nil, fmt.Errorf("list_projects: %w", err)
	}
	return dataToMCP(projects), nil, nil
}

// ListProjectTables handles the list_project_tables MCP tool call.
func (s *Server) ListProjectTables(ctx context.Context, req *sdk.CallToolRequest, in ListProjectTablesInput) (*sdk.CallToolResult, any, error) {
	tables, err := s.catalog.ProjectTables(ctx, in.ProjectID)
	if err != nil {
		if res, ok := errorToMCP(err); ok {
			return res, nil, nil
		}
		return nil, nil, fmt.Errorf("list_project_tables: %w", err)
	}
	return dataToMCP(tables), nil, nil
}

// OpenProject handles the open_project MCP tool call.
func (s *Server) OpenProject(ctx context.Context, req *sdk.CallToolRequest, in OpenProjectInput) (*sdk.CallToolResult, any, error) {
	if err := s.catalog.OpenProject(ctx, in.ProjectID); err != nil {
		if res, ok := errorToMCP(err); ok {
			return res, nil, nil
		}
		return nil, nil, fmt.Errorf("open_project: %w", err)
	}
	return dataToMCP(map[string]string{
		"projectId": in.ProjectID,
		"status":    "OPENED",
	}), nil, nil
}
