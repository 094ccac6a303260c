package main

import (
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/bugtrail/internal/tui"
	"github.com/spf13/cobra"
)

func newMCPCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve project and error tools to an MCP client over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			c.logger.Info("starting stdio transport", "db", c.cfg.DB.Path)
			// Run blocks until stdin closes or the context is canceled.
			err = a.MCPServer(version).Run(ctx, &sdkmcp.StdioTransport{})
			if err != nil && ctx.Err() == nil {
				return fmt.Errorf("stdio server: %w", err)
			}
			c.logger.Info("shutting down")
			return nil
		},
	}
}

func newTUICmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			m := tui.New(ctx, a.Projects, a.Defects, c.cfg.Export.Dir, c.logger)
			if err := tui.Run(ctx, m); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}
