// Package openl is the gateway to the OpenL Studio REST API.
//
// The client owns authentication, the per-call transport timeout, outbound
// rate limiting, and error shaping. It deliberately knows nothing about
// test sessions: callers that need session affinity pass the captured
// correlation headers in as extra request headers.
package openl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/openl-tablets/openl-mcp/internal/config"
	"github.com/openl-tablets/openl-mcp/internal/log"
)

// Client is the OpenL Studio API client. Safe for concurrent use.
type Client struct {
	baseURL    string
	username   string
	password   string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     log.Logger
}

// NewClient creates an OpenL API client from the application configuration.
func NewClient(cfg *config.Config, logger log.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	burst := int(cfg.RateLimitRPS)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL:  cfg.BaseURL,
		username: cfg.Username,
		password: cfg.Password,
		token:    cfg.Token,
		httpClient: &http.Client{
			Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst),
		logger:  logger,
	}, nil
}

// StartTestRun triggers an asynchronous test execution for a project.
// Returns the 202 response headers; they carry the execution id and
// optionally a session cookie the caller must replay on every poll.
func (c *Client) StartTestRun(ctx context.Context, projectID string, opts StartOptions) (http.Header, error) {
	query := url.Values{}
	if opts.TableID != "" {
		query.Set("tableId", opts.TableID)
	}
	if opts.TestRanges != "" {
		query.Set("testRanges", opts.TestRanges)
	}

	path := fmt.Sprintf("/projects/%s/tests/run", url.PathEscape(projectID))
	return c.do(ctx, http.MethodPost, path, query, nil, nil, nil)
}

// TestSummary fetches one Execution Summary page. extra carries the
// session correlation headers captured from the start response.
func (c *Client) TestSummary(ctx context.Context, projectID string, q SummaryQuery, extra http.Header) (*ExecutionSummary, error) {
	query := url.Values{}
	if q.Size > 0 {
		query.Set("page", fmt.Sprint(q.Page))
		query.Set("size", fmt.Sprint(q.Size))
	}
	if q.FailuresLimit > 0 {
		query.Set("failures", fmt.Sprint(q.FailuresLimit))
	}
	if q.FailuresOnly {
		query.Set("failuresOnly", "true")
	}

	path := fmt.Sprintf("/projects/%s/tests/summary", url.PathEscape(projectID))

	var summary ExecutionSummary
	if _, err := c.do(ctx, http.MethodGet, path, query, nil, extra, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// OpenProject transitions a project to the OPENED status. Used by the
// auto-open recovery path and exposed as its own tool.
func (c *Client) OpenProject(ctx context.Context, projectID string) error {
	path := fmt.Sprintf("/projects/%s", url.PathEscape(projectID))
	body := map[string]string{"status": ProjectOpened}

	_, err := c.do(ctx, http.MethodPatch, path, nil, body, nil, nil)
	return err
}

// Projects lists the projects in the design repository.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if _, err := c.do(ctx, http.MethodGet, "/projects", nil, nil, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// ProjectTables lists the rule tables of a project.
func (c *Client) ProjectTables(ctx context.Context, projectID string) ([]TableInfo, error) {
	path := fmt.Sprintf("/projects/%s/tables", url.PathEscape(projectID))

	var tables []TableInfo
	if _, err := c.do(ctx, http.MethodGet, path, nil, nil, nil, &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

// do performs one HTTP round trip: rate limit, marshal, auth, execute,
// status check, unmarshal. Returns the response headers so callers can
// capture session correlation state. Non-2xx responses become *RemoteError
// with a sanitized message.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, extra http.Header, result any) (http.Header, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuth(req)

	// Session correlation headers come last so a captured header can never
	// be clobbered by the fixed set above.
	for name, values := range extra {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("openl request failed",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"request_id", requestID)
		return nil, &RemoteError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Endpoint:   path,
			Message:    sanitizeMessage(string(respBody), []string{c.password, c.token}),
		}
	}

	c.logger.Debug("openl request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID)

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return nil, fmt.Errorf("unmarshaling response from %s: %w", path, err)
		}
	}

	return resp.Header, nil
}

// setAuth applies the configured authentication scheme. A personal access
// token takes precedence over basic credentials; both absent means
// anonymous access (local OpenL instances).
func (c *Client) setAuth(req *http.Request) {
	switch {
	case c.token != "":
		req.Header.Set("Authorization", "Bearer "+c.token)
	case c.username != "":
		req.SetBasicAuth(c.username, c.password)
	}
}
