package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/quiver"
	"github.com/aretw0/quiver/internal/cli"
	"github.com/aretw0/quiver/pkg/adapters/mcp"
	"github.com/aretw0/quiver/pkg/runner"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes one editor to AI agents as MCP tools (add_state, add_transition, ...).

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, _, err := setup(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		sessionID, _ := cmd.Flags().GetString("session")
		automaton, _ := cmd.Flags().GetString("automaton")

		stack, err := cli.OpenStack(cfg, logger)
		if err != nil {
			return err
		}
		defer stack.Close()

		signals := runner.NewSignalManager()
		defer signals.Stop()
		ctx := signals.Context()

		snap, err := stack.Seed(ctx, sessionID, automaton)
		if err != nil {
			return err
		}
		doc, err := stack.OpenDocument(ctx, "", snap)
		if err != nil {
			return err
		}
		var opts []quiver.Option
		if sessionID != "" {
			opts = append(opts, quiver.WithSessionID(sessionID), quiver.WithStore(stack.Store))
		}
		if stack.Publisher != nil {
			opts = append(opts, quiver.WithPublisher(stack.Publisher))
		}
		editor, err := cli.NewEditor(ctx, cfg, logger, doc, opts...)
		if err != nil {
			return err
		}

		srv := mcp.NewServer(editor)

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			logger.Info("Starting Quiver MCP Server (Stdio)...")
			return srv.ServeStdio()
		case "sse":
			logger.Info("Starting Quiver MCP Server (SSE)", "port", port)
			if err := srv.ServeSSE(ctx, port); err != nil && err != http.ErrServerClosed {
				return err
			}
			logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().StringP("session", "s", "", "Session ID: resume it and save every edit to the configured store")
	mcpCmd.Flags().StringP("automaton", "a", "", "Start from a named automaton of the library")
}
