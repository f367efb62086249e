package main

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/jharjadi/jdgen/internal/mcptools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the jdgen tools over MCP stdio",
	Long:  "Runs an MCP server on stdin/stdout whose tools forward to the jdgen REST API. Point an MCP client at `jdctl mcp`.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		return server.ServeStdio(mcptools.NewServer(c, version))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
