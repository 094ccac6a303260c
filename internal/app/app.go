// Package app wires storage, state and domain services into one handle that
// the CLI, the TUI and the MCP server share.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rpggio/bugtrail/internal/config"
	"github.com/rpggio/bugtrail/internal/domain/activity"
	"github.com/rpggio/bugtrail/internal/domain/defect"
	"github.com/rpggio/bugtrail/internal/domain/project"
	"github.com/rpggio/bugtrail/internal/mcp"
	"github.com/rpggio/bugtrail/internal/sqlite"
	"github.com/rpggio/bugtrail/internal/state"
	"github.com/rpggio/bugtrail/internal/storage"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// App holds the opened database and the services built on it.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	DB       *sqlite.DB
	KV       *sqlite.KVRepository
	State    *state.Store
	Projects *project.Service
	Defects  *defect.Service
	Activity *activity.Service
}

// Option configures Open.
type Option func(*options)

type options struct {
	defectOpts []defect.ServiceOption
}

// WithDefectOptions passes options through to the defect service.
func WithDefectOptions(opts ...defect.ServiceOption) Option {
	return func(o *options) {
		o.defectOpts = append(o.defectOpts, opts...)
	}
}

// Open opens the database at cfg.DB.Path, migrates it and hydrates state.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("preparing database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	kv := sqlite.NewKVRepository(db)
	st, err := state.Open(ctx, storage.New(kv, logger), logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("loading state: %w", err)
	}
	logger.Debug("state loaded", "path", cfg.DB.Path, "state", st.Snapshot().String())

	activityRepo := sqlite.NewActivityRepository(db)
	return &App{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		KV:       kv,
		State:    st,
		Projects: project.NewService(st, activityRepo, logger),
		Defects:  defect.NewService(st.Records(), activityRepo, logger, o.defectOpts...),
		Activity: activity.NewService(activityRepo, logger),
	}, nil
}

// MCPServer builds an MCP server over the app's services.
func (a *App) MCPServer(version string) *sdkmcp.Server {
	return mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Projects: a.Projects,
			Defects:  a.Defects,
			Activity: a.Activity,
		},
		ExportDir: a.Config.Export.Dir,
		Version:   version,
		Logger:    a.Logger,
	})
}

// CurrentProjectID returns the selected project's id, or "" when none is.
func (a *App) CurrentProjectID(ctx context.Context) (string, error) {
	proj, err := a.Projects.Current(ctx)
	if err != nil || proj == nil {
		return "", err
	}
	return proj.ID, nil
}

// Close closes the database.
func (a *App) Close() error {
	return a.DB.Close()
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
