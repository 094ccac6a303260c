package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rpggio/bugtrail/internal/domain/activity"
	"github.com/rpggio/bugtrail/internal/domain/defect"
	"github.com/rpggio/bugtrail/internal/export"
	"github.com/spf13/cobra"
)

func newStatsCmd(c *cli) *cobra.Command {
	var (
		projectRef string
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Count a project's errors by status, severity and environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			proj, err := resolveProject(ctx, a, projectRef)
			if err != nil {
				return err
			}
			list, err := a.Defects.List(ctx, proj.ID)
			if err != nil {
				return err
			}
			stats := defect.Summarize(list)
			if asJSON {
				return writeJSON(cmd, stats)
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.SetStyle(table.StyleRounded)
			tw.SetTitle(proj.Name)
			tw.AppendHeader(table.Row{"Group", "Value", "Count"})
			for _, s := range defect.Statuses {
				tw.AppendRow(table.Row{"Status", string(s), stats.ByStatus[s]})
			}
			tw.AppendSeparator()
			for _, s := range defect.Severities {
				tw.AppendRow(table.Row{"Severity", string(s), stats.BySeverity[s]})
			}
			tw.AppendSeparator()
			for _, env := range defect.Environments {
				tw.AppendRow(table.Row{"Environment", string(env), stats.ByEnvironment[env]})
			}
			tw.AppendFooter(table.Row{"Total", fmt.Sprintf("%d open", stats.Open), stats.Total})
			tw.Render()
			fmt.Fprintf(cmd.OutOrStdout(), "\n  DRE: %.2f%%\n", stats.DRE)
			return nil
		},
	}
	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project id or name (default: current project)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newExportCmd(c *cli) *cobra.Command {
	var (
		projectRef string
		dir        string
		toStdout   bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a project's errors to <project>_errors.csv",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			proj, err := resolveProject(ctx, a, projectRef)
			if err != nil {
				return err
			}
			list, err := a.Defects.List(ctx, proj.ID)
			if err != nil {
				return err
			}
			if toStdout {
				return export.WriteCSV(cmd.OutOrStdout(), list)
			}

			if dir == "" {
				dir = c.cfg.Export.Dir
			}
			path, err := export.WriteFile(dir, proj.Name, list)
			if err != nil {
				return err
			}
			if err := a.Activity.LogActivity(ctx, &activity.ActivityEntry{
				ProjectID:    proj.ID,
				ActivityType: activity.TypeExported,
				Summary:      export.NoticeExported,
				Details:      path,
			}); err != nil {
				c.logger.Warn("logging export activity", "error", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d to %s\n", export.NoticeExported, len(list), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project id or name (default: current project)")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Output directory (default: export.dir from config)")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Write CSV to stdout instead of a file")
	return cmd
}

func newActivityCmd(c *cli) *cobra.Command {
	var (
		projectRef string
		limit      int
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent changes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			opts := activity.ListActivityOptions{Limit: limit}
			if projectRef != "" {
				proj, err := a.Projects.Get(ctx, projectRef)
				if err != nil {
					return err
				}
				opts.ProjectID = proj.ID
			}
			entries, err := a.Activity.GetRecentActivity(ctx, opts)
			if err != nil {
				return err
			}
			if asJSON {
				if entries == nil {
					entries = []activity.ActivityEntry{}
				}
				return writeJSON(cmd, entries)
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.SetStyle(table.StyleRounded)
			tw.AppendHeader(table.Row{"When", "Type", "Summary", "Details"})
			for _, e := range entries {
				tw.AppendRow(table.Row{e.CreatedAt.Local().Format("2006-01-02 15:04"), string(e.ActivityType), e.Summary, e.Details})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Only this project (id or name)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}
