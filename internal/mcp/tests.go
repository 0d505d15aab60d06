package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/openl-tablets/openl-mcp/internal/testrun"
)

// StartProjectTestsInput defines the input schema for start_project_tests.
type StartProjectTestsInput struct {
	ProjectID         string `json:"projectId" jsonschema:"Identifier of the project to test"`
	TableID           string `json:"tableId,omitempty" jsonschema:"Optional rule table id to scope the run to a single table"`
	TestRanges        string `json:"testRanges,omitempty" jsonschema:"Optional explicit test ranges, e.g. '1-3,5'"`
	WaitForCompletion bool   `json:"waitForCompletion,omitempty" jsonschema:"Block until the run completes or the maximum wait elapses"`
	MaxWaitSeconds    int    `json:"maxWaitSeconds,omitempty" jsonschema:"Maximum seconds to wait when waitForCompletion is set (default 120)"`
}

// GetTestResultsSummaryInput defines the input schema for get_test_results_summary.
type GetTestResultsSummaryInput struct {
	ProjectID string `json:"projectId" jsonschema:"Identifier of the project"`
	Failures  int    `json:"failures,omitempty" jsonschema:"Include up to this many failing test cases in the response"`
}

// GetTestResultsInput defines the input schema for get_test_results.
type GetTestResultsInput struct {
	ProjectID    string `json:"projectId" jsonschema:"Identifier of the project"`
	Page         int    `json:"page,omitempty" jsonschema:"Zero-based page of rule tables (default 0)"`
	Size         int    `json:"size,omitempty" jsonschema:"Rule tables per page (default 20)"`
	FailuresOnly bool   `json:"failuresOnly,omitempty" jsonschema:"Return only failing test cases"`
}

// GetTestResultsByTableInput defines the input schema for get_test_results_by_table.
type GetTestResultsByTableInput struct {
	ProjectID string `json:"projectId" jsonschema:"Identifier of the project"`
	TableID   string `json:"tableId" jsonschema:"Rule table id to filter results to"`
	Page      int    `json:"page,omitempty" jsonschema:"Zero-based page to start scanning from (default 0)"`
	Size      int    `json:"size,omitempty" jsonschema:"Rule tables per scanned page (default 20)"`
}

// startReport is the payload of start_project_tests: the start outcome, a
// human-readable report line, and the wait result when the caller blocked.
type startReport struct {
	testrun.StartResult
	Report string              `json:"report"`
	Wait   *testrun.WaitResult `json:"wait,omitempty"`
}

// registerTestTools registers the test execution tools:
// start_project_tests, get_test_results_summary, get_test_results,
// get_test_results_by_table.
func (s *Server) registerTestTools() error {
	startSchema, err := jsonschema.For[StartProjectTestsInput](nil)
	if err != nil {
		return fmt.Errorf("schema for start_project_tests: %w", err)
	}
	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name: "start_project_tests",
		Description: "Start an asynchronous test execution for an OpenL project. " +
			"Optionally scope the run to one rule table or explicit test ranges. " +
			"Automatically opens a closed project first. " +
			"Set waitForCompletion to block until the run finishes.",
		InputSchema: startSchema,
	}, s.StartProjectTests)

	summarySchema, err := jsonschema.For[GetTestResultsSummaryInput](nil)
	if err != nil {
		return fmt.Errorf("schema for get_test_results_summary: %w", err)
	}
	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name: "get_test_results_summary",
		Description: "Get aggregate pass/fail counts for the most recently started test run " +
			"of a project. Cheap status check; requires start_project_tests first.",
		InputSchema: summarySchema,
	}, s.GetTestResultsSummary)

	resultsSchema, err := jsonschema.For[GetTestResultsInput](nil)
	if err != nil {
		return fmt.Errorf("schema for get_test_results: %w", err)
	}
	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name: "get_test_results",
		Description: "Get one page of per-table test results for the most recently started " +
			"run. Pagination counts rule tables, not individual assertions.",
		InputSchema: resultsSchema,
	}, s.GetTestResults)

	byTableSchema, err := jsonschema.For[GetTestResultsByTableInput](nil)
	if err != nil {
		return fmt.Errorf("schema for get_test_results_by_table: %w", err)
	}
	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name: "get_test_results_by_table",
		Description: "Get test results for a single rule table, scanning result pages until " +
			"the table is found. Returns an empty result if the table has no cases.",
		InputSchema: byTableSchema,
	}, s.GetTestResultsByTable)

	return nil
}

// StartProjectTests handles the start_project_tests MCP tool call.
func (s *Server) StartProjectTests(ctx context.Context, req *sdk.CallToolRequest, in StartProjectTestsInput) (*sdk.CallToolResult, any, error) {
	result, err := s.testRun.Start(ctx, testrun.StartInput{
		ProjectID:  in.ProjectID,
		TableID:    in.TableID,
		TestRanges: in.TestRanges,
	})
	if err != nil {
		if res, ok := errorToMCP(err); ok {
			return res, nil, nil
		}
		return nil, nil, fmt.Errorf("start_project_tests: %w", err)
	}

	report := startReport{
		StartResult: result,
		Report:      fmt.Sprintf("Test run started for project %q.", in.ProjectID),
	}
	if result.AutoOpened {
		report.Report += " The project was automatically opened."
	}

	if in.WaitForCompletion {
		wait, err := s.testRun.Wait(ctx, testrun.WaitInput{
			ProjectID:         in.ProjectID,
			WaitForCompletion: true,
			MaxWait:           time.Duration(in.MaxWaitSeconds) * time.Second,
		})
		if err != nil {
			if res, ok := errorToMCP(err); ok {
				return res, nil, nil
			}
			return nil, nil, fmt.Errorf("start_project_tests wait: %w", err)
		}
		report.Wait = &wait
		if wait.Completed {
			report.Report += " Execution completed."
		} else {
			report.Report += " Execution is still pending; poll get_test_results_summary for progress."
		}
	}

	return dataToMCP(report), nil, nil
}

// GetTestResultsSummary handles the get_test_results_summary MCP tool call.
func (s *Server) GetTestResultsSummary(ctx context.Context, req *sdk.CallToolRequest, in GetTestResultsSummaryInput) (*sdk.CallToolResult, any, error) {
	summary, err := s.testRun.GetSummary(ctx, in.ProjectID, in.Failures)
	if err != nil {
		if res, ok := errorToMCP(err); ok {
			return res, nil, nil
		}
		return nil, nil, fmt.Errorf("get_test_results_summary: %w", err)
	}
	return dataToMCP(summary), nil, nil
}

// GetTestResults handles the get_test_results MCP tool call.
func (s *Server) GetTestResults(ctx context.Context, req *sdk.CallToolRequest, in GetTestResultsInput) (*sdk.CallToolResult, any, error) {
	page, err := s.testRun.GetResults(ctx, in.ProjectID, in.Page, in.Size, in.FailuresOnly)
	if err != nil {
		if res, ok := errorToMCP(err); ok {
			return res, nil, nil
		}
		return nil, nil, fmt.Errorf("get_test_results: %w", err)
	}
	return dataToMCP(page), nil, nil
}

// GetTestResultsByTable handles the get_test_results_by_table MCP tool call.
func (s *Server) GetTestResultsByTable(ctx context.Context, req *sdk.CallToolRequest, in GetTestResultsByTableInput) (*sdk.CallToolResult, any, error) {
	result, err := s.testRun.GetResultsByTable(ctx, in.ProjectID, in.TableID, in.Page, in.Size)
	if err != nil {
		if res, ok := errorToMCP(err); ok {
			return res, nil, nil
		}
		return nil, nil, fmt.Errorf("get_test_results_by_table: %w", err)
	}
	return dataToMCP(result), nil, nil
}
