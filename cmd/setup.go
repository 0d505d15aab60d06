package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openl-tablets/openl-mcp/internal/config"
	"github.com/openl-tablets/openl-mcp/internal/mcp"
	"github.com/openl-tablets/openl-mcp/internal/observability"
	"github.com/openl-tablets/openl-mcp/internal/openl"
	"github.com/openl-tablets/openl-mcp/internal/session"
	"github.com/openl-tablets/openl-mcp/internal/testrun"
)

// setupServer wires the full stack: OpenL client, session store, test-run
// service, MCP server, and optional trace export. The returned shutdown
// flushes pending spans and must be called on exit.
func setupServer(ctx context.Context, cfg *config.Config) (*mcp.Server, func(context.Context) error, error) {
	logger := slog.Default()

	shutdown, err := observability.Setup(ctx, cfg.Otel, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("setting up tracing: %w", err)
	}

	client, err := openl.NewClient(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("creating OpenL client: %w", err)
	}

	svc, err := testrun.NewService(testrun.Config{
		Gateway: client,
		Store:   session.NewMemoryStore(cfg.SessionHeaders),
		Logger:  logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating test-run service: %w", err)
	}

	server, err := mcp.NewServer(mcp.Config{
		Name:    "openl-mcp",
		Version: Version,
		Logger:  logger,
		TestRun: svc,
		Catalog: client,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating MCP server: %w", err)
	}

	return server, shutdown, nil
}
