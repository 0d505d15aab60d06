package testrun

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/openl-tablets/openl-mcp/internal/openl"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// summarySequence serves scripted summaries in order, repeating the last
// one once the script is exhausted.
func summarySequence(statuses ...string) func(string, openl.SummaryQuery, http.Header) (*openl.ExecutionSummary, error) {
	i := 0
	return func(string, openl.SummaryQuery, http.Header) (*openl.ExecutionSummary, error) {
		status := statuses[i]
		if i < len(statuses)-1 {
			i++
		}
		return &openl.ExecutionSummary{
			Status:           status,
			NumberOfTests:    5,
			NumberOfFailures: 1,
		}, nil
	}
}

func TestWait_NoWaitSingleFetch(t *testing.T) {
	gw := &fakeGateway{summaryFn: summarySequence(openl.StatusRunning)}
	svc, _ := newTestService(t, gw)
	startSession(t, svc, gw, "p", "s1", "")

	result, err := svc.Wait(context.Background(), WaitInput{ProjectID: "p", WaitForCompletion: false})
	if err != nil {
		t.Fatalf("Wait() unexpected error: %v", err)
	}

	if gw.summaryCalls != 1 {
		t.Errorf("summaryCalls = %d, want exactly 1", gw.summaryCalls)
	}
	if result.Completed {
		t.Error("Completed = true for a RUNNING summary")
	}
	if result.Summary.NumberOfPassed != 4 {
		t.Errorf("passed = %d, want 4", result.Summary.NumberOfPassed)
	}
}

func TestWait_AlreadyComplete(t *testing.T) {
	gw := &fakeGateway{summaryFn: summarySequence(openl.StatusComplete)}
	svc, _ := newTestService(t, gw)
	startSession(t, svc, gw, "p", "s1", "")

	result, err := svc.Wait(context.Background(), WaitInput{ProjectID: "p", WaitForCompletion: true, MaxWait: time.Minute})
	if err != nil {
		t.Fatalf("Wait() unexpected error: %v", err)
	}
	if gw.summaryCalls != 1 {
		t.Errorf("summaryCalls = %d, want 1 (no polling once complete)", gw.summaryCalls)
	}
	if !result.Completed {
		t.Error("Completed = false, want true")
	}
}

func TestWait_PollsUntilComplete(t *testing.T) {
	gw := &fakeGateway{summaryFn: summarySequence(
		openl.StatusRunning,
		openl.StatusRunning,
		openl.StatusComplete,
	)}
	svc, _ := newTestService(t, gw)
	startSession(t, svc, gw, "p", "s1", "")

	result, err := svc.Wait(context.Background(), WaitInput{ProjectID: "p", WaitForCompletion: true, MaxWait: 30 * time.Second})
	if err != nil {
		t.Fatalf("Wait() unexpected error: %v", err)
	}
	if !result.Completed {
		t.Error("Completed = false, want true")
	}
	if gw.summaryCalls < 3 {
		t.Errorf("summaryCalls = %d, want >= 3", gw.summaryCalls)
	}
}

func TestWait_TimeoutReturnsPendingSummary(t *testing.T) {
	gw := &fakeGateway{summaryFn: summarySequence(openl.StatusRunning)}
	svc, _ := newTestService(t, gw)
	startSession(t, svc, gw, "p", "s1", "")

	start := time.Now()
	result, err := svc.Wait(context.Background(), WaitInput{ProjectID: "p", WaitForCompletion: true, MaxWait: 1200 * time.Millisecond})
	if err != nil {
		t.Fatalf("Wait() timeout must not be an error, got: %v", err)
	}
	if result.Completed {
		t.Error("Completed = true, want false after timeout")
	}
	if result.Summary.NumberOfTests != 5 {
		t.Errorf("last-known summary lost: %+v", result.Summary)
	}
	if elapsed := time.Since(start); elapsed < time.Second {
		t.Errorf("returned after %v, want at least the max wait", elapsed)
	}
}

func TestWait_PollErrorPropagates(t *testing.T) {
	gw := &fakeGateway{}
	calls := 0
	gw.summaryFn = func(string, openl.SummaryQuery, http.Header) (*openl.ExecutionSummary, error) {
		calls++
		if calls == 1 {
			return &openl.ExecutionSummary{Status: openl.StatusRunning}, nil
		}
		return nil, &openl.RemoteError{StatusCode: http.StatusBadGateway}
	}
	svc, _ := newTestService(t, gw)
	startSession(t, svc, gw, "p", "s1", "")

	_, err := svc.Wait(context.Background(), WaitInput{ProjectID: "p", WaitForCompletion: true, MaxWait: 30 * time.Second})
	var remoteErr *openl.RemoteError
	if !errors.As(err, &remoteErr) || remoteErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("error = %v, want the 502 RemoteError", err)
	}
}

func TestWait_MissingProjectID(t *testing.T) {
	gw := &fakeGateway{}
	svc, _ := newTestService(t, gw)

	_, err := svc.Wait(context.Background(), WaitInput{ProjectID: ""})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("error = %v, want ErrInvalidArgument", err)
	}
}
