// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents to ingest and query documents via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/docqa/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs docqa as an MCP (Model Context Protocol) server over stdio, exposing
document ingestion, similarity search, and retrieval-augmented answering
as tools.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an MCP client)
  docqa mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "docqa": {
  #       "command": "docqa",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(true)
	if err != nil {
		return err
	}

	if rt.cfg.APIKey == "" {
		log.Println("Warning: no API key set - embedding and generation will fail unless the endpoint allows anonymous access")
	}

	server := mcpserver.NewMCPServer(
		"docqa",
		versionInfo.Version,
	)

	mcp.RegisterTools(server, rt.pipe, rt.store, rt.cfg)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("docqa MCP server starting on stdio...")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, gracefully shutting down...")
		}
		if err := rt.Close(); err != nil {
			log.Printf("Warning: Error closing index: %v", err)
		}
		if !quiet {
			log.Println("Shutdown complete")
		}

	case err := <-serverErr:
		_ = rt.Close()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
