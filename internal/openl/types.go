package openl

// Execution status values reported by the test summary endpoint. An empty
// status is treated as complete so that servers predating the status field
// never wedge the wait loop.
const (
	StatusRunning  = "RUNNING"
	StatusComplete = "COMPLETED"
)

// Project status values used by the PATCH /projects/{id} endpoint.
const (
	ProjectOpened = "OPENED"
	ProjectClosed = "CLOSED"
)

// TestUnit is a single assertion inside a test case. Units may be elided
// by the server for brevity, in which case only the aggregate counts on
// the owning TestCaseSummary are available.
type TestUnit struct {
	Description   string `json:"description,omitempty"`
	Failed        bool   `json:"failed,omitempty"`
	ExpectedValue string `json:"expectedValue,omitempty"`
	ActualValue   string `json:"actualValue,omitempty"`
}

// TestCaseSummary aggregates the results of one rule table's tests.
type TestCaseSummary struct {
	Name             string     `json:"name"`
	TableID          string     `json:"tableId"`
	ExecutionTimeMs  float64    `json:"executionTimeMs"`
	NumberOfTests    int        `json:"numberOfTests"`
	NumberOfFailures int        `json:"numberOfFailures"`
	TestUnits        []TestUnit `json:"testUnits,omitempty"`
}

// ExecutionSummary is one page of aggregated test-table results. The
// pagination fields describe table-level summaries: one page row may
// bundle several underlying test units.
type ExecutionSummary struct {
	Status           string            `json:"status,omitempty"`
	TestCases        []TestCaseSummary `json:"testCases"`
	ExecutionTimeMs  float64           `json:"executionTimeMs"`
	NumberOfTests    int               `json:"numberOfTests"`
	NumberOfFailures int               `json:"numberOfFailures"`
	PageNumber       int               `json:"pageNumber"`
	PageSize         int               `json:"pageSize"`
	NumberOfElements int               `json:"numberOfElements"`
	TotalPages       int               `json:"totalPages,omitempty"`
}

// Pending reports whether the remote execution is still running.
func (s *ExecutionSummary) Pending() bool {
	return s.Status == StatusRunning
}

// Passed derives the pass count from the aggregate fields.
func (s *ExecutionSummary) Passed() int {
	return s.NumberOfTests - s.NumberOfFailures
}

// Project describes a rules project in the design repository.
type Project struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	Branch     string `json:"branch,omitempty"`
	ModifiedBy string `json:"modifiedBy,omitempty"`
	ModifiedAt string `json:"modifiedAt,omitempty"`
}

// TableInfo describes one rule table inside a project.
type TableInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"tableType,omitempty"`
}

// StartOptions narrows which tests a run executes. Both fields are
// optional; zero values run the whole project.
type StartOptions struct {
	// TableID scopes the run to a single rule table.
	TableID string
	// TestRanges selects explicit test cases, e.g. "1-3,5".
	TestRanges string
}

// SummaryQuery carries pagination and filtering for the summary endpoint.
// Size <= 0 omits pagination parameters; FailuresLimit <= 0 omits the
// failures cap.
type SummaryQuery struct {
	Page          int
	Size          int
	FailuresOnly  bool
	FailuresLimit int
}
