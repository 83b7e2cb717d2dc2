package main

import (
	"os"

	"github.com/akolanti/docqa/internal/mcpServer"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the document tools to an MCP client over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol
		pipeline, err := openApp(cmd.Context(), os.Stderr)
		if err != nil {
			return err
		}
		defer closeApp(pipeline)

		return mcpServer.NewServer(pipeline.Service).Run(cmd.Context())
	},
}
