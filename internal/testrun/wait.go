package testrun

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
)

// Wait loop tuning. The per-attempt delay grows exponentially from
// initialPollDelay up to maxPollDelay; the overall deadline is the
// caller-supplied MaxWait, layered above the per-call transport timeout.
const (
	initialPollDelay = 500 * time.Millisecond
	maxPollDelay     = 10 * time.Second

	// DefaultMaxWait applies when WaitForCompletion is set without an
	// explicit maximum.
	DefaultMaxWait = 2 * time.Minute
)

// errStillPending drives the retry loop while the remote run is pending.
var errStillPending = errors.New("test execution still pending")

// WaitInput configures a blocking poll for completion.
type WaitInput struct {
	ProjectID         string
	WaitForCompletion bool
	MaxWait           time.Duration
}

// WaitResult carries the last-known summary. Completed false after a wait
// means the maximum wait elapsed while the run was still pending; that is
// an outcome for the caller to judge, not an error.
type WaitResult struct {
	Summary   Summary `json:"summary"`
	Completed bool    `json:"completed"`
	Attempts  int     `json:"attempts"`
}

// Wait fetches the execution summary, optionally blocking until the run
// completes. With WaitForCompletion false it performs exactly one summary
// fetch and returns immediately regardless of completion state. Otherwise
// it re-polls with bounded exponential backoff until the run is no longer
// pending or MaxWait elapses; on timeout the last-known summary is
// returned with Completed=false.
//
// Cancellation of an in-progress remote execution is not supported; the
// only local cancellation is ctx.
func (s *Service) Wait(ctx context.Context, in WaitInput) (WaitResult, error) {
	if err := validProjectID(in.ProjectID); err != nil {
		return WaitResult{}, err
	}

	first, err := s.GetSummary(ctx, in.ProjectID, 0)
	if err != nil {
		return WaitResult{}, err
	}

	result := WaitResult{Summary: first, Completed: first.Completed, Attempts: 1}
	if !in.WaitForCompletion || first.Completed {
		return result, nil
	}

	maxWait := in.MaxWait
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}

	waitCtx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()

	err = retry.Do(
		func() error {
			summary, err := s.GetSummary(waitCtx, in.ProjectID, 0)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			result.Attempts++
			result.Summary = summary
			if !summary.Completed {
				return errStillPending
			}
			return nil
		},
		retry.Context(waitCtx),
		retry.Attempts(0), // bounded by waitCtx, not by a count
		retry.Delay(initialPollDelay),
		retry.MaxDelay(maxPollDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)

	switch {
	case err == nil:
		result.Completed = true
		return result, nil
	case waitCtx.Err() != nil && ctx.Err() == nil:
		// Our own deadline fired: report the last-known summary as still
		// pending rather than failing.
		s.logger.Info("wait elapsed before completion",
			"project", in.ProjectID,
			"max_wait", maxWait,
			"attempts", result.Attempts)
		result.Completed = false
		return result, nil
	case errors.Is(err, errStillPending):
		result.Completed = false
		return result, nil
	default:
		return WaitResult{}, err
	}
}
