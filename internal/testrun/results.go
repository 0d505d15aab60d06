package testrun

import (
	"context"

	"github.com/openl-tablets/openl-mcp/internal/openl"
)

// Summary is the aggregate view of one execution, with the pass count
// derived locally. TestCases is populated only when the remote chose to
// include case details (e.g. a failures cap was requested).
type Summary struct {
	Completed        bool                    `json:"completed"`
	NumberOfTests    int                     `json:"numberOfTests"`
	NumberOfFailures int                     `json:"numberOfFailures"`
	NumberOfPassed   int                     `json:"numberOfPassed"`
	ExecutionTimeMs  float64                 `json:"executionTimeMs"`
	TestCases        []openl.TestCaseSummary `json:"testCases,omitempty"`
}

// Page is one page of per-table results with display-oriented pagination
// metadata. Offset is pageNumber*pageSize; displayed rows start at
// Offset+1. Pagination counts rule tables, not individual test units.
type Page struct {
	Summary
	PageNumber       int  `json:"pageNumber"`
	PageSize         int  `json:"pageSize"`
	NumberOfElements int  `json:"numberOfElements"`
	TotalPages       int  `json:"totalPages,omitempty"`
	Offset           int  `json:"offset"`
	HasMore          bool `json:"hasMore"`
}

// TableResults is the outcome of a by-table filter. TableFound false with
// empty TestCases means the scan exhausted the result set without a match;
// that is an empty result, not an error.
type TableResults struct {
	TableID          string                  `json:"tableId"`
	TableFound       bool                    `json:"tableFound"`
	TestCases        []openl.TestCaseSummary `json:"testCases"`
	NumberOfTests    int                     `json:"numberOfTests"`
	NumberOfFailures int                     `json:"numberOfFailures"`
	NumberOfPassed   int                     `json:"numberOfPassed"`
	PagesScanned     int                     `json:"pagesScanned"`
}

// GetSummary performs one cheap status round trip: aggregate counts only,
// no pagination. failuresLimit > 0 asks the server to include up to that
// many failing cases in the response.
func (s *Service) GetSummary(ctx context.Context, projectID string, failuresLimit int) (Summary, error) {
	if err := validProjectID(projectID); err != nil {
		return Summary{}, err
	}
	rec, err := s.record(projectID)
	if err != nil {
		return Summary{}, err
	}

	remote, err := s.gateway.TestSummary(ctx, projectID, openl.SummaryQuery{FailuresLimit: failuresLimit}, sessionHeaders(rec))
	if err != nil {
		return Summary{}, err
	}

	return s.toSummary(remote), nil
}

// GetResults fetches one page of per-table results, forwarding pagination
// parameters verbatim to the remote endpoint.
func (s *Service) GetResults(ctx context.Context, projectID string, page, size int, failuresOnly bool) (Page, error) {
	if err := validProjectID(projectID); err != nil {
		return Page{}, err
	}
	rec, err := s.record(projectID)
	if err != nil {
		return Page{}, err
	}

	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}

	remote, err := s.gateway.TestSummary(ctx, projectID, openl.SummaryQuery{
		Page:         page,
		Size:         size,
		FailuresOnly: failuresOnly,
	}, sessionHeaders(rec))
	if err != nil {
		return Page{}, err
	}

	return s.toPage(remote), nil
}

// GetResultsByTable walks result pages looking for cases belonging to one
// rule table. The scan starts at the given page (or 0) and stops at the
// first page containing a match, on an empty page, at the remote-reported
// page count, or at a hard cap, whichever comes first. Worst case it pages
// through the whole remote result set once.
func (s *Service) GetResultsByTable(ctx context.Context, projectID, tableID string, page, size int) (TableResults, error) {
	if err := validProjectID(projectID); err != nil {
		return TableResults{}, err
	}
	if tableID == "" {
		return TableResults{}, ErrInvalidArgument
	}
	rec, err := s.record(projectID)
	if err != nil {
		return TableResults{}, err
	}
	hdrs := sessionHeaders(rec)

	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}

	result := TableResults{TableID: tableID, TestCases: []openl.TestCaseSummary{}}

	for scanned := 0; scanned < maxScanPages; scanned++ {
		remote, err := s.gateway.TestSummary(ctx, projectID, openl.SummaryQuery{
			Page: page,
			Size: size,
		}, hdrs)
		if err != nil {
			return TableResults{}, err
		}
		result.PagesScanned++

		for _, tc := range remote.TestCases {
			if tc.TableID != tableID {
				continue
			}
			result.TestCases = append(result.TestCases, tc)
			result.NumberOfTests += tc.NumberOfTests
			result.NumberOfFailures += tc.NumberOfFailures
		}
		if len(result.TestCases) > 0 {
			result.TableFound = true
			break
		}

		// Exhaustion: an empty page, or the last remote-reported page.
		if len(remote.TestCases) == 0 || remote.NumberOfElements == 0 {
			break
		}
		if remote.TotalPages > 0 && page+1 >= remote.TotalPages {
			break
		}
		page++
	}

	result.NumberOfPassed = result.NumberOfTests - result.NumberOfFailures
	return result, nil
}

// toSummary converts a remote summary, deriving the pass count and
// normalizing the failure count so numberOfFailures <= numberOfTests holds
// even against a misbehaving server.
func (s *Service) toSummary(remote *openl.ExecutionSummary) Summary {
	failures := remote.NumberOfFailures
	if failures > remote.NumberOfTests {
		s.logger.Warn("remote reported more failures than tests, clamping",
			"failures", failures, "tests", remote.NumberOfTests)
		failures = remote.NumberOfTests
	}
	return Summary{
		Completed:        !remote.Pending(),
		NumberOfTests:    remote.NumberOfTests,
		NumberOfFailures: failures,
		NumberOfPassed:   remote.NumberOfTests - failures,
		ExecutionTimeMs:  remote.ExecutionTimeMs,
		TestCases:        remote.TestCases,
	}
}

// toPage shapes one remote page, deriving the display offset and whether
// more pages exist.
func (s *Service) toPage(remote *openl.ExecutionSummary) Page {
	hasMore := false
	if remote.TotalPages > 0 {
		hasMore = remote.PageNumber+1 < remote.TotalPages
	} else if remote.PageSize > 0 {
		// Without a page count a full page suggests more may follow.
		hasMore = len(remote.TestCases) == remote.PageSize
	}

	return Page{
		Summary:          s.toSummary(remote),
		PageNumber:       remote.PageNumber,
		PageSize:         remote.PageSize,
		NumberOfElements: remote.NumberOfElements,
		TotalPages:       remote.TotalPages,
		Offset:           remote.PageNumber * remote.PageSize,
		HasMore:          hasMore,
	}
}
