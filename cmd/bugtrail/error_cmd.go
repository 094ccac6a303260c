package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rpggio/bugtrail/internal/app"
	"github.com/rpggio/bugtrail/internal/domain/defect"
	"github.com/rpggio/bugtrail/internal/domain/project"
	"github.com/rpggio/bugtrail/internal/export"
	"github.com/spf13/cobra"
)

// errorCmd holds flags shared by the error subcommands.
type errorCmd struct {
	*cli
	projectRef string
}

func newErrorCmd(c *cli) *cobra.Command {
	e := &errorCmd{cli: c}
	cmd := &cobra.Command{
		Use:     "error",
		Aliases: []string{"errors"},
		Short:   "Manage the errors of a project",
		Long: strings.TrimSpace(`
Manage error records. Commands act on the current project unless --project
names another one. <index> is the record's position (#) in "error list".`),
	}
	cmd.PersistentFlags().StringVarP(&e.projectRef, "project", "p", "", "Project id or name (default: current project)")

	cmd.AddCommand(
		e.newAddCmd(),
		e.newEditCmd(),
		e.newDeleteCmd(),
		e.newUndoCmd(),
		e.newDuplicateCmd(),
		e.newListCmd(),
		e.newShowCmd(),
	)
	return cmd
}

// withProject opens the app and resolves the target project for fn.
func (e *errorCmd) withProject(ctx context.Context, fn func(a *app.App, proj *project.Project) error) error {
	a, err := e.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	proj, err := resolveProject(ctx, a, e.projectRef)
	if err != nil {
		return err
	}
	return fn(a, proj)
}

func (e *errorCmd) newAddCmd() *cobra.Command {
	var ff fieldFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Report a new error",
		Example: `  bugtrail error add --title "Login button broken" --assigned-to dana --reported-by lee \
    --severity high --environment production \
    --current "Nothing happens" --expected "User is logged in"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return e.withProject(ctx, func(a *app.App, proj *project.Project) error {
				fields, err := ff.apply(cmd, defect.Fields{}, true)
				if err != nil {
					return err
				}
				rec, err := a.Defects.Add(ctx, proj.ID, fields)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: id %d %q in %s\n", defect.NoticeCreated, rec.ID, rec.Title, proj.Name)
				return nil
			})
		},
	}
	ff.bind(cmd, true)
	return cmd
}

func (e *errorCmd) newEditCmd() *cobra.Command {
	var ff fieldFlags
	cmd := &cobra.Command{
		Use:   "edit <index>",
		Short: "Change fields of an error; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return e.withProject(ctx, func(a *app.App, proj *project.Project) error {
				current, err := a.Defects.Get(ctx, proj.ID, index)
				if err != nil {
					return err
				}
				fields, err := ff.apply(cmd, current.Fields(), false)
				if err != nil {
					return err
				}
				rec, err := a.Defects.Edit(ctx, proj.ID, index, fields)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: id %d %q\n", defect.NoticeEdited, rec.ID, rec.Title)
				return nil
			})
		},
	}
	ff.bind(cmd, false)
	return cmd
}

func (e *errorCmd) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <index>",
		Short: "Delete an error; \"error undo\" puts it back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return e.withProject(ctx, func(a *app.App, proj *project.Project) error {
				deleted, err := a.Defects.Delete(ctx, proj.ID, index)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: id %d %q\n", defect.NoticeDeleted, deleted.Record.ID, deleted.Record.Title)
				return nil
			})
		},
	}
}

func (e *errorCmd) newUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Restore the most recently deleted error",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := e.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			restored, err := a.Defects.Undo(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: id %d %q at #%d\n", defect.NoticeRestored, restored.Record.ID, restored.Record.Title, restored.Index)
			return nil
		},
	}
}

func (e *errorCmd) newDuplicateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <index>",
		Short: "Copy an error directly below itself",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return e.withProject(ctx, func(a *app.App, proj *project.Project) error {
				rec, err := a.Defects.Duplicate(ctx, proj.ID, index)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: id %d %q\n", defect.NoticeDuplicated, rec.ID, rec.Title)
				return nil
			})
		},
	}
}

type indexedRecord struct {
	Index  int           `json:"index"`
	Record defect.Record `json:"record"`
}

func (e *errorCmd) newListCmd() *cobra.Command {
	var (
		search  string
		filter  string
		asJSON  bool
		noColor bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List a project's errors",
		Long: strings.TrimSpace(`
List a project's errors. --search matches titles case-insensitively.
--filter takes a boolean expression over the fields id, title, assignedTo,
reportedBy, reportedAt, status, severity, environment, currentBehavior and
expectedBehavior, for example:

  bugtrail error list --filter 'severity == "High" && environment == "production"'`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return e.withProject(ctx, func(a *app.App, proj *project.Project) error {
				list, err := a.Defects.List(ctx, proj.ID)
				if err != nil {
					return err
				}
				positions, err := selectPositions(list, search, filter)
				if err != nil {
					return err
				}

				if asJSON {
					out := make([]indexedRecord, 0, len(positions))
					for _, pos := range positions {
						out = append(out, indexedRecord{Index: pos, Record: list[pos]})
					}
					return writeJSON(cmd, out)
				}

				f := export.NewConsoleFormatter()
				f.EnableColors = !noColor
				if search == "" && filter == "" {
					positions = nil
				}
				return f.RenderPositions(cmd.OutOrStdout(), proj.Name, list, positions)
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive title search")
	cmd.Flags().StringVar(&filter, "filter", "", "Boolean filter expression")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable ANSI colors")
	return cmd
}

func (e *errorCmd) newShowCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <index>",
		Short: "Show every field of an error",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return e.withProject(ctx, func(a *app.App, proj *project.Project) error {
				rec, err := a.Defects.Get(ctx, proj.ID, index)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, indexedRecord{Index: index, Record: *rec})
				}

				tw := table.NewWriter()
				tw.SetOutputMirror(cmd.OutOrStdout())
				tw.SetStyle(table.StyleRounded)
				tw.SetTitle(fmt.Sprintf("%s #%d", proj.Name, index))
				tw.AppendRows([]table.Row{
					{"ID", rec.ID},
					{"Title", rec.Title},
					{"Assigned To", rec.AssignedTo},
					{"Reported By", rec.ReportedBy},
					{"Reported At", rec.ReportedAt},
					{"Status", string(rec.Status)},
					{"Severity", string(rec.Severity)},
					{"Environment", string(rec.Environment)},
					{"Current Behavior", rec.CurrentBehavior},
					{"Expected Behavior", rec.ExpectedBehavior},
				})
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

// selectPositions returns the list positions matching both search and filter.
func selectPositions(list []defect.Record, search, filter string) ([]int, error) {
	positions := defect.MatchPositions(list, search)
	if filter == "" {
		return positions, nil
	}
	f, err := defect.CompileFilter(filter)
	if err != nil {
		return nil, err
	}
	kept := positions[:0]
	for _, pos := range positions {
		ok, err := f.Match(list[pos])
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, pos)
		}
	}
	return kept, nil
}

func parseIndex(arg string) (int, error) {
	index, err := strconv.Atoi(arg)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("invalid index %q: want a position from \"error list\"", arg)
	}
	return index, nil
}

// fieldFlags binds one flag per editable record field.
type fieldFlags struct {
	title       string
	assignedTo  string
	reportedBy  string
	reportedAt  string
	status      string
	severity    string
	environment string
	current     string
	expected    string
}

func (f *fieldFlags) bind(cmd *cobra.Command, withDefaults bool) {
	status, severity, environment := "", "", ""
	if withDefaults {
		status = string(defect.StatusNotStarted)
		severity = string(defect.SeverityLow)
		environment = string(defect.EnvPreProduction)
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.title, "title", "t", "", "Short summary")
	fl.StringVar(&f.assignedTo, "assigned-to", "", "Who is fixing it")
	fl.StringVar(&f.reportedBy, "reported-by", "", "Who found it")
	fl.StringVar(&f.reportedAt, "reported-at", "", "Report date as M/D/YYYY (default today)")
	fl.StringVar(&f.status, "status", status, "Not Started|In Progress|Ready For Testing|Completed")
	fl.StringVar(&f.severity, "severity", severity, "Low|Medium|High|Very High")
	fl.StringVar(&f.environment, "environment", environment, "pre-production|production")
	fl.StringVar(&f.current, "current", "", "Current behavior")
	fl.StringVar(&f.expected, "expected", "", "Expected behavior")
}

// apply overlays flags onto base. With all set every flag applies, default
// or not; otherwise only flags given on the command line do.
func (f *fieldFlags) apply(cmd *cobra.Command, base defect.Fields, all bool) (defect.Fields, error) {
	set := func(name string) bool {
		return all || cmd.Flags().Changed(name)
	}

	if set("title") {
		base.Title = f.title
	}
	if set("assigned-to") {
		base.AssignedTo = f.assignedTo
	}
	if set("reported-by") {
		base.ReportedBy = f.reportedBy
	}
	if set("reported-at") {
		base.ReportedAt = f.reportedAt
	}
	if set("current") {
		base.CurrentBehavior = f.current
	}
	if set("expected") {
		base.ExpectedBehavior = f.expected
	}
	if set("status") {
		s, err := defect.ParseStatus(f.status)
		if err != nil {
			return defect.Fields{}, err
		}
		base.Status = s
	}
	if set("severity") {
		s, err := defect.ParseSeverity(f.severity)
		if err != nil {
			return defect.Fields{}, err
		}
		base.Severity = s
	}
	if set("environment") {
		env, err := defect.ParseEnvironment(f.environment)
		if err != nil {
			return defect.Fields{}, err
		}
		base.Environment = env
	}
	return base, nil
}
