package observability

import (
	"context"
	"testing"

	"github.com/openl-tablets/openl-mcp/internal/config"
	"github.com/openl-tablets/openl-mcp/internal/log"
)

func TestSetup_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.OtelConfig{}, log.NewNop())
	if err != nil {
		t.Fatalf("Setup() unexpected error: %v", err)
	}
	if shutdown == nil {
		t.Fatal("Setup() returned nil shutdown")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("no-op shutdown returned error: %v", err)
	}
}

func TestSetup_WithEndpoint(t *testing.T) {
	cfg := config.OtelConfig{
		Endpoint:    "localhost:4318",
		ServiceName: "openl-mcp-test",
		Environment: "test",
	}

	shutdown, err := Setup(context.Background(), cfg, log.NewNop())
	if err != nil {
		t.Fatalf("Setup() unexpected error: %v", err)
	}

	// No spans were recorded, so flushing against an unreachable
	// collector must still succeed.
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown returned error: %v", err)
	}
}

func TestSetup_DefaultServiceName(t *testing.T) {
	cfg := config.OtelConfig{Endpoint: "localhost:4318"}

	shutdown, err := Setup(context.Background(), cfg, log.NewNop())
	if err != nil {
		t.Fatalf("Setup() unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = shutdown(context.Background()) })
}
