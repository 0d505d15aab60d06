// Package testrun implements the test-execution session bridge: starting
// asynchronous test runs on OpenL Studio, capturing the server-assigned
// correlation headers, and threading them through result polling.
//
// Session state lives only in the remote service. The bridge reconstructs
// it locally between otherwise-independent tool calls via the injected
// session.Store; a new start for the same project supersedes the prior
// session (last writer wins), which is an inherent hazard of the remote
// session model rather than something this package resolves.
package testrun

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/openl-tablets/openl-mcp/internal/config"
	"github.com/openl-tablets/openl-mcp/internal/log"
	"github.com/openl-tablets/openl-mcp/internal/openl"
	"github.com/openl-tablets/openl-mcp/internal/session"
)

// DefaultPageSize is used when a caller does not specify a page size.
const DefaultPageSize = 20

// maxScanPages caps the by-table page walk for servers that neither report
// totalPages nor ever return an empty page.
const maxScanPages = 500

// Gateway is the slice of the OpenL client this package depends on.
type Gateway interface {
	StartTestRun(ctx context.Context, projectID string, opts openl.StartOptions) (http.Header, error)
	TestSummary(ctx context.Context, projectID string, q openl.SummaryQuery, extra http.Header) (*openl.ExecutionSummary, error)
	OpenProject(ctx context.Context, projectID string) error
}

// Config holds the dependencies of the test-run service.
type Config struct {
	Gateway Gateway
	Store   session.Store
	Logger  log.Logger

	// ExecutionIDHeader is the response header carrying the execution id.
	// Defaults to config.DefaultExecutionIDHeader.
	ExecutionIDHeader string
}

// Service is the test-run bridge: initiator, poller/aggregator, and wait
// loop over one Gateway and one session Store.
type Service struct {
	gateway   Gateway
	store     session.Store
	logger    log.Logger
	execIDHdr string
}

// NewService validates the configuration and creates a Service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	execIDHdr := cfg.ExecutionIDHeader
	if execIDHdr == "" {
		execIDHdr = config.DefaultExecutionIDHeader
	}

	return &Service{
		gateway:   cfg.Gateway,
		store:     cfg.Store,
		logger:    cfg.Logger,
		execIDHdr: http.CanonicalHeaderKey(execIDHdr),
	}, nil
}

// validProjectID rejects missing or blank project identifiers before any
// network call is made.
func validProjectID(projectID string) error {
	if strings.TrimSpace(projectID) == "" {
		return fmt.Errorf("%w: projectId is required", ErrInvalidArgument)
	}
	return nil
}

// sessionHeaders rebuilds the outgoing request headers from a stored
// record: every captured correlation header plus a Cookie header derived
// from the stored session cookie.
func sessionHeaders(rec session.Record) http.Header {
	h := http.Header{}
	for name, value := range rec.Headers {
		h.Set(name, value)
	}
	if rec.Cookie != "" {
		h.Set("Cookie", rec.Cookie)
	}
	return h
}

// record fetches the session record for a project, translating absence
// into ErrNoActiveTestSession.
func (s *Service) record(projectID string) (session.Record, error) {
	rec, ok := s.store.Get(projectID)
	if !ok {
		return session.Record{}, fmt.Errorf("%w (project %q)", ErrNoActiveTestSession, projectID)
	}
	return rec, nil
}
