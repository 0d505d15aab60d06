package mcp

import (
	"context"
	"fmt"
	"net/http"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/openl-tablets/openl-mcp/internal/log"
	"github.com/openl-tablets/openl-mcp/internal/openl"
	"github.com/openl-tablets/openl-mcp/internal/testrun"
)

// Catalog is the read-only project browsing slice of the OpenL client,
// plus the explicit open operation.
type Catalog interface {
	Projects(ctx context.Context) ([]openl.Project, error)
	ProjectTables(ctx context.Context, projectID string) ([]openl.TableInfo, error)
	OpenProject(ctx context.Context, projectID string) error
}

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
	Logger  log.Logger
	TestRun *testrun.Service
	Catalog Catalog
}

// Server wraps the MCP SDK server and the OpenL bridge services.
type Server struct {
	mcpServer *sdk.Server
	testRun   *testrun.Service
	catalog   Catalog
	logger    log.Logger
}

// NewServer creates the MCP server and registers all tools.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("server name is required")
	}
	if cfg.Version == "" {
		return nil, fmt.Errorf("server version is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if cfg.TestRun == nil {
		return nil, fmt.Errorf("testrun service is required")
	}
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{
		mcpServer: mcpServer,
		testRun:   cfg.TestRun,
		catalog:   cfg.Catalog,
		logger:    cfg.Logger,
	}

	if err := s.registerTestTools(); err != nil {
		return nil, fmt.Errorf("registering test tools: %w", err)
	}
	if err := s.registerProjectTools(); err != nil {
		return nil, fmt.Errorf("registering project tools: %w", err)
	}

	return s, nil
}

// Run starts the MCP server on the given transport. Blocking; handles all
// protocol communication until ctx is canceled or the transport closes.
func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcpServer.Run(ctx, transport)
}

// HTTPHandler returns a streamable-HTTP handler serving this MCP server,
// for networked clients that cannot spawn a stdio process.
func (s *Server) HTTPHandler() http.Handler {
	return sdk.NewStreamableHTTPHandler(func(*http.Request) *sdk.Server {
		return s.mcpServer
	}, nil)
}
