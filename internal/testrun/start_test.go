package testrun

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/openl-tablets/openl-mcp/internal/config"
	"github.com/openl-tablets/openl-mcp/internal/openl"
)

func TestStart_CommitsSession(t *testing.T) {
	gw := &fakeGateway{
		startFn: func(projectID string, opts openl.StartOptions) (http.Header, error) {
			if projectID != "my-project" {
				t.Errorf("projectID = %q", projectID)
			}
			if opts.TableID != "Test_calculatePremium_1234" || opts.TestRanges != "1-3,5" {
				t.Errorf("opts = %+v", opts)
			}
			return acceptedHeaders("s1", "JSESSIONID=abc; Path=/"), nil
		},
	}
	svc, store := newTestService(t, gw)

	result, err := svc.Start(context.Background(), StartInput{
		ProjectID:  "my-project",
		TableID:    "Test_calculatePremium_1234",
		TestRanges: "1-3,5",
	})
	if err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}

	if !result.Started {
		t.Error("result.Started = false")
	}
	if result.AutoOpened {
		t.Error("result.AutoOpened = true, want false")
	}
	if result.ExecutionID != "s1" {
		t.Errorf("result.ExecutionID = %q, want s1", result.ExecutionID)
	}

	rec, ok := store.Get("my-project")
	if !ok {
		t.Fatal("no session record committed")
	}
	if rec.Headers[config.DefaultExecutionIDHeader] != "s1" {
		t.Errorf("stored execution id = %q", rec.Headers[config.DefaultExecutionIDHeader])
	}
	if rec.Cookie != "JSESSIONID=abc" {
		t.Errorf("stored cookie = %q", rec.Cookie)
	}
}

func TestStart_MissingProjectID(t *testing.T) {
	gw := &fakeGateway{}
	svc, _ := newTestService(t, gw)

	for _, projectID := range []string{"", "   "} {
		_, err := svc.Start(context.Background(), StartInput{ProjectID: projectID})
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Start(%q) error = %v, want ErrInvalidArgument", projectID, err)
		}
	}
	if gw.startCalls != 0 {
		t.Errorf("startCalls = %d, want 0 (validation is pre-flight)", gw.startCalls)
	}
}

func TestStart_AutoOpensClosedProject(t *testing.T) {
	gw := &fakeGateway{}
	gw.startFn = func(string, openl.StartOptions) (http.Header, error) {
		if gw.startCalls == 1 {
			return nil, &openl.RemoteError{StatusCode: http.StatusConflict, Method: "POST", Endpoint: "/projects/p/tests/run"}
		}
		return acceptedHeaders("s2", ""), nil
	}
	gw.openFn = func(string) error { return nil }

	svc, _ := newTestService(t, gw)

	result, err := svc.Start(context.Background(), StartInput{ProjectID: "p"})
	if err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}
	if !result.AutoOpened {
		t.Error("result.AutoOpened = false, want true")
	}
	if gw.openCalls != 1 {
		t.Errorf("openCalls = %d, want 1", gw.openCalls)
	}
	if gw.startCalls != 2 {
		t.Errorf("startCalls = %d, want 2 (original + one resubmit)", gw.startCalls)
	}
}

func TestStart_OpenRetriedOnce(t *testing.T) {
	gw := &fakeGateway{}
	gw.startFn = func(string, openl.StartOptions) (http.Header, error) {
		if gw.startCalls == 1 {
			return nil, &openl.RemoteError{StatusCode: http.StatusConflict}
		}
		return acceptedHeaders("s3", ""), nil
	}
	gw.openFn = func(string) error {
		if gw.openCalls == 1 {
			return &openl.RemoteError{StatusCode: http.StatusInternalServerError}
		}
		return nil
	}

	svc, _ := newTestService(t, gw)

	result, err := svc.Start(context.Background(), StartInput{ProjectID: "p"})
	if err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}
	if !result.AutoOpened {
		t.Error("result.AutoOpened = false, want true")
	}
	if gw.openCalls != 2 {
		t.Errorf("openCalls = %d, want 2 (one retry)", gw.openCalls)
	}
}

func TestStart_OpenFailureSurfaces(t *testing.T) {
	openErr := &openl.RemoteError{StatusCode: http.StatusForbidden, Method: "PATCH", Endpoint: "/projects/p"}
	gw := &fakeGateway{}
	gw.startFn = func(string, openl.StartOptions) (http.Header, error) {
		return nil, &openl.RemoteError{StatusCode: http.StatusConflict}
	}
	gw.openFn = func(string) error { return openErr }

	svc, store := newTestService(t, gw)

	_, err := svc.Start(context.Background(), StartInput{ProjectID: "p"})
	if err == nil {
		t.Fatal("Start() expected error, got nil")
	}
	var remoteErr *openl.RemoteError
	if !errors.As(err, &remoteErr) || remoteErr.StatusCode != http.StatusForbidden {
		t.Errorf("error = %v, want the open failure", err)
	}
	if gw.openCalls != 2 {
		t.Errorf("openCalls = %d, want 2 (retried exactly once)", gw.openCalls)
	}
	if gw.startCalls != 1 {
		t.Errorf("startCalls = %d, want 1 (no resubmit after failed open)", gw.startCalls)
	}
	if _, ok := store.Get("p"); ok {
		t.Error("session committed despite failed start")
	}
}

func TestStart_NonConflictFailurePropagates(t *testing.T) {
	gw := &fakeGateway{
		startFn: func(string, openl.StartOptions) (http.Header, error) {
			return nil, &openl.RemoteError{StatusCode: http.StatusBadRequest, Message: "bad testRanges"}
		},
	}
	svc, _ := newTestService(t, gw)

	_, err := svc.Start(context.Background(), StartInput{ProjectID: "p", TestRanges: "x"})
	var remoteErr *openl.RemoteError
	if !errors.As(err, &remoteErr) || remoteErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("error = %v, want 400 RemoteError", err)
	}
	if gw.openCalls != 0 {
		t.Errorf("openCalls = %d, want 0 (only 409 triggers auto-open)", gw.openCalls)
	}
	if gw.startCalls != 1 {
		t.Errorf("startCalls = %d, want 1 (test-start is never retried)", gw.startCalls)
	}
}
