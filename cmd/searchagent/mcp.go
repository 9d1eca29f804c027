package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/searchagent/mcp"
)

func mcpCMD(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the ask_web tool over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			// stdout carries the protocol
			a, err := loadApp(ctx, *cfgPath, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			return mcp.ServeStdio(ctx, mcp.NewServer(a.agent, version, a.logger))
		},
	}
}
