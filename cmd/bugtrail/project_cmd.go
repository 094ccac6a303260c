package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rpggio/bugtrail/internal/domain/project"
	"github.com/spf13/cobra"
)

func newProjectCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Manage projects",
	}
	cmd.AddCommand(
		newProjectAddCmd(c),
		newProjectRenameCmd(c),
		newProjectDeleteCmd(c),
		newProjectSelectCmd(c),
		newProjectListCmd(c),
	)
	return cmd
}

func newProjectAddCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create a project and make it current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			proj, err := a.Projects.Add(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", project.NoticeCreated, proj.Name, proj.ID)
			return nil
		},
	}
}

func newProjectRenameCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <project> <new-name>",
		Short: "Rename a project; its errors stay attached",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			proj, err := a.Projects.Rename(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", project.NoticeRenamed, proj.Name)
			return nil
		},
	}
}

func newProjectDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project>",
		Short: "Delete a project and all of its errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			proj, err := a.Projects.Delete(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", project.NoticeDeleted, proj.Name)
			return nil
		},
	}
}

func newProjectSelectCmd(c *cli) *cobra.Command {
	var clearCurrent bool
	cmd := &cobra.Command{
		Use:   "select [project]",
		Short: "Make a project current",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !clearCurrent {
				return fmt.Errorf("pass a project or --clear")
			}
			ctx := cmd.Context()
			a, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			ref := ""
			if len(args) == 1 {
				ref = args[0]
			}
			proj, err := a.Projects.Select(ctx, ref)
			if err != nil {
				return err
			}
			if proj == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No project selected")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", project.NoticeSelected, proj.Name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearCurrent, "clear", false, "Clear the current project")
	return cmd
}

func newProjectListCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects in sidebar order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.Projects.List(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				if list == nil {
					list = []project.ProjectSummary{}
				}
				return writeJSON(cmd, list)
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects. Create one with \"bugtrail project add <name>\".")
				return nil
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.SetStyle(table.StyleRounded)
			tw.AppendHeader(table.Row{"", "Name", "Errors", "Open", "DRE", "ID"})
			for _, p := range list {
				marker := ""
				if p.Current {
					marker = "*"
				}
				tw.AppendRow(table.Row{marker, p.Name, p.ErrorCount, p.OpenErrors, strconv.FormatFloat(p.DRE, 'f', 2, 64) + "%", p.ID})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}
