package mcp

import (
	"context"
	"log/slog"

	"github.com/rpggio/bugtrail/internal/domain/activity"
	"github.com/rpggio/bugtrail/internal/domain/defect"
	"github.com/rpggio/bugtrail/internal/domain/project"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	Add(ctx context.Context, name string) (*project.Project, error)
	Rename(ctx context.Context, ref, newName string) (*project.Project, error)
	Delete(ctx context.Context, ref string) (*project.Project, error)
	Select(ctx context.Context, ref string) (*project.Project, error)
	Get(ctx context.Context, ref string) (*project.Project, error)
	Current(ctx context.Context) (*project.Project, error)
	List(ctx context.Context) ([]project.ProjectSummary, error)
}

// DefectService defines error record operations needed by MCP.
type DefectService interface {
	Add(ctx context.Context, projectID string, fields defect.Fields) (*defect.Record, error)
	Edit(ctx context.Context, projectID string, index int, fields defect.Fields) (*defect.Record, error)
	Delete(ctx context.Context, projectID string, index int) (*defect.Deleted, error)
	Undo(ctx context.Context) (*defect.Deleted, error)
	Duplicate(ctx context.Context, projectID string, index int) (*defect.Record, error)
	Get(ctx context.Context, projectID string, index int) (*defect.Record, error)
	List(ctx context.Context, projectID string) ([]defect.Record, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	LogActivity(ctx context.Context, entry *activity.ActivityEntry) error
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Projects ProjectService
	Defects  DefectService
	Activity ActivityService
}

// Config contains server configuration.
type Config struct {
	Services  Services
	ExportDir string
	Version   string
	Logger    *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "bugtrail",
		Version: cfg.Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	h := &toolHandlers{
		projects:  cfg.Services.Projects,
		defects:   cfg.Services.Defects,
		activity:  cfg.Services.Activity,
		exportDir: cfg.ExportDir,
		logger:    cfg.Logger,
	}
	registerTools(server, h)

	return server
}
