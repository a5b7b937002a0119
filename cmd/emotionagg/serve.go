package main

import (
	"github.com/spf13/cobra"

	"emotionagg/internal/mcp"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	a.logger.Info("serving MCP over stdio")
	server := mcp.NewServer(a.pipeline, a.db, a.selector, version, a.logger)
	return server.Run(ctx, &sdk.StdioTransport{})
}
