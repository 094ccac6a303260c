package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rpggio/bugtrail/internal/app"
	"github.com/rpggio/bugtrail/internal/config"
	"github.com/rpggio/bugtrail/internal/domain/defect"
	"github.com/rpggio/bugtrail/internal/domain/project"
	"github.com/spf13/cobra"
)

// build-time override (e.g. -ldflags "-X main.version=1.2.3")
var version = "dev"

func main() {
	root := newRootCmd()
	root.SilenceUsage = true
	root.SilenceErrors = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries root flags and what PersistentPreRunE derives from them.
type cli struct {
	configPath string
	verbose    bool
	debug      bool

	cfg     config.Config
	logger  *slog.Logger
	logFile io.Closer
}

// newRootCmd creates the root Cobra command.
func newRootCmd() *cobra.Command {
	c := &cli{}
	cmd := &cobra.Command{
		Use:   "bugtrail",
		Short: "Track errors per project",
		Long: strings.TrimSpace(`
bugtrail keeps a list of reported errors for each of your projects.

Errors carry a title, who it is assigned to, who reported it and when, a
status, a severity, the environment it was caught in, and the current and
expected behavior. Records are addressed by their position (#) in the
project's list.

Run "bugtrail tui" for the interactive view or "bugtrail mcp" to serve the
same operations to an MCP client over stdio.`),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.close()
		},
	}

	cmd.PersistentFlags().StringVar(&c.configPath, "config", "", "Config file (.yaml or .toml); defaults to $BUGTRAIL_CONFIG_PATH")
	cmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose (info) logging")
	cmd.PersistentFlags().BoolVar(&c.debug, "debug", false, "Enable debug logging (overrides --verbose)")
	cmd.Version = version

	cmd.AddCommand(newProjectCmd(c))
	cmd.AddCommand(newErrorCmd(c))
	cmd.AddCommand(newStatsCmd(c))
	cmd.AddCommand(newExportCmd(c))
	cmd.AddCommand(newActivityCmd(c))
	cmd.AddCommand(newImportCmd(c))
	cmd.AddCommand(newDumpCmd(c))
	cmd.AddCommand(newMCPCmd(c))
	cmd.AddCommand(newTUICmd(c))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// newVersionCmd prints version info.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bugtrail version: %s\n", version)
		},
	}
}

func (c *cli) init(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c.cfg = cfg

	// The TUI owns the terminal, so it never logs to stderr.
	logger, closer, err := newLogger(cfg.Log, c.verbose, c.debug, cmd.Name() == "tui")
	if err != nil {
		return err
	}
	c.logger = logger
	c.logFile = closer
	slog.SetDefault(logger)
	logger.Debug("logging initialized", "command", cmd.CommandPath(), "db", cfg.DB.Path)
	return nil
}

func (c *cli) close() {
	if c.logFile != nil {
		_ = c.logFile.Close()
		c.logFile = nil
	}
}

// open opens the app. Callers close it.
func (c *cli) open(ctx context.Context) (*app.App, error) {
	a, err := app.Open(ctx, c.cfg, c.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", c.cfg.DB.Path, err)
	}
	return a, nil
}

// resolveProject returns the project named by ref, or the current project
// when ref is empty.
func resolveProject(ctx context.Context, a *app.App, ref string) (*project.Project, error) {
	if ref != "" {
		return a.Projects.Get(ctx, ref)
	}
	proj, err := a.Projects.Current(ctx)
	if err != nil {
		return nil, err
	}
	if proj == nil {
		return nil, fmt.Errorf("%w: pass --project or run \"bugtrail project select\"", defect.ErrNoProject)
	}
	return proj, nil
}
