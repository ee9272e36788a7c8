package main

import (
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/aretw0/landsketch/internal/cli"
	"github.com/aretw0/landsketch/pkg/adapters/mcp"
	"github.com/aretw0/landsketch/pkg/session"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes one painting session as an MCP server, so AI agents can select
brushes, paint strokes, export and submit sketches as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		app := setupApp(cmd)
		defer app.Close()

		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")
		baseURL, _ := cmd.Flags().GetString("base-url")

		sessionID := uuid.NewString()
		studio, err := app.NewStudio(session.Scope(app.Store, sessionID))
		if err != nil {
			exitWith("Error initializing studio", err)
		}
		defer studio.Close()

		srv := mcp.NewServer(studio, mcp.WithLogger(app.Logger))

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			app.Logger.Info("Starting landsketch MCP Server (Stdio)", "session_id", sessionID)
			if err := srv.ServeStdio(); err != nil {
				app.Logger.Error("MCP Server execution failed", "err", err)
				os.Exit(1)
			}
		case "sse":
			if baseURL == "" {
				baseURL = "http://localhost" + addr
			}
			app.Logger.Info("Starting landsketch MCP Server (SSE)", "address", addr, "session_id", sessionID)

			sigCtx := cli.NewSignalContext(cmd.Context())
			defer sigCtx.Cancel()

			if err := srv.ServeSSE(sigCtx, addr, baseURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
				app.Logger.Error("MCP Server execution failed", "err", err)
				os.Exit(1)
			}
			app.Logger.Info("MCP Server stopped gracefully")
		default:
			exitWith("Unknown transport", errors.New(transport+" (supported: stdio, sse)"))
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", ":8081", "Address to listen on (only for SSE)")
	mcpCmd.Flags().String("base-url", "", "Public base URL of the SSE server (default: http://localhost<addr>)")
}
