package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/trove/internal/adapters/driving/mcp"
)

var mcpPort int

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the document library to AI assistants",
	Long: `Starts an MCP server exposing search and document tools.

Without flags the server speaks JSON-RPC over stdio, which is what
desktop assistants expect when they launch the binary themselves:

  trove mcp serve

With --port it listens on loopback HTTP instead, useful for the MCP
Inspector and other local HTTP clients:

  trove mcp serve --port 8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve over HTTP on this port instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	server, err := mcp.NewServer(&mcp.Ports{
		Search:   searchService,
		Document: documentService,
	}, mcp.WithVersion(version))
	if err != nil {
		return fmt.Errorf("starting MCP server: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if mcpPort > 0 {
		addr := fmt.Sprintf("127.0.0.1:%d", mcpPort)
		cmd.Printf("MCP server listening on http://%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
