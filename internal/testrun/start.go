package testrun

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openl-tablets/openl-mcp/internal/openl"
)

// StartInput narrows which tests a run executes. ProjectID is required;
// TableID and TestRanges are optional scoping.
type StartInput struct {
	ProjectID  string
	TableID    string
	TestRanges string
}

// StartResult reports the outcome of a test-start, including whether the
// project had to be opened automatically first.
type StartResult struct {
	Started     bool   `json:"started"`
	AutoOpened  bool   `json:"autoOpened"`
	ExecutionID string `json:"executionId,omitempty"`
}

// Start triggers an asynchronous test execution and commits the captured
// correlation headers into the session store, superseding any prior
// session for the project.
//
// If the remote rejects the start with 409 (project not open), the project
// is opened transparently (the open call gets exactly one retry) and the
// start is resubmitted exactly once. No other retries happen: retrying a
// test-start risks duplicate remote executions with distinct session
// identities.
func (s *Service) Start(ctx context.Context, in StartInput) (StartResult, error) {
	if err := validProjectID(in.ProjectID); err != nil {
		return StartResult{}, err
	}

	opts := openl.StartOptions{TableID: in.TableID, TestRanges: in.TestRanges}

	headers, err := s.gateway.StartTestRun(ctx, in.ProjectID, opts)
	autoOpened := false
	if isProjectClosed(err) {
		s.logger.Info("project not open, attempting auto-open", "project", in.ProjectID)

		if openErr := s.openWithOneRetry(ctx, in.ProjectID); openErr != nil {
			return StartResult{}, fmt.Errorf("auto-opening project %q: %w", in.ProjectID, openErr)
		}
		autoOpened = true

		headers, err = s.gateway.StartTestRun(ctx, in.ProjectID, opts)
	}
	if err != nil {
		return StartResult{}, err
	}

	s.store.Commit(in.ProjectID, headers)

	result := StartResult{
		Started:     true,
		AutoOpened:  autoOpened,
		ExecutionID: headers.Get(s.execIDHdr),
	}

	s.logger.Info("test run started",
		"project", in.ProjectID,
		"table", in.TableID,
		"execution_id", result.ExecutionID,
		"auto_opened", autoOpened)

	return result, nil
}

// openWithOneRetry opens a project, retrying the open call once. Failures
// beyond that surface to the caller.
func (s *Service) openWithOneRetry(ctx context.Context, projectID string) error {
	err := s.gateway.OpenProject(ctx, projectID)
	if err == nil {
		return nil
	}
	s.logger.Warn("project open failed, retrying once", "project", projectID, "error", err)
	return s.gateway.OpenProject(ctx, projectID)
}

// isProjectClosed reports whether a start failure signals that the project
// is not currently open.
func isProjectClosed(err error) bool {
	var remoteErr *openl.RemoteError
	return errors.As(err, &remoteErr) && remoteErr.StatusCode == http.StatusConflict
}
