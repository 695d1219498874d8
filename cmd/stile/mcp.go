package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/stile"
	"github.com/aretw0/stile/pkg/adapters/backend"
	"github.com/aretw0/stile/pkg/adapters/file"
	loamadapter "github.com/aretw0/stile/pkg/adapters/loam"
	mcpadapter "github.com/aretw0/stile/pkg/adapters/mcp"
	"github.com/aretw0/stile/pkg/session"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the wizard as an MCP Server.
This allows AI agents (like Claude Desktop) to drive signup flows as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("dir")
		if !cmd.Flags().Changed("dir") && len(args) > 0 {
			dir = args[0]
		}

		flow, _ := cmd.Flags().GetString("flow")
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		backendURL, _ := cmd.Flags().GetString("backend")

		// Logs go to stderr: stdout carries JSON-RPC in stdio transport.
		opts := &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)

		source, err := loamadapter.Open(dir)
		if err != nil {
			log.Fatalf("Error opening flow directory: %v", err)
		}

		wizardOpts := []stile.Option{
			stile.WithSource(source, flow),
			stile.WithLogger(logger),
		}
		if backendURL != "" {
			client := backend.NewClient(backendURL, backend.WithLogger(logger))
			wizardOpts = append(wizardOpts,
				stile.WithChecker(client),
				stile.WithSubmitter(client),
			)
		}

		wizard, err := stile.New(nil, wizardOpts...)
		if err != nil {
			log.Fatalf("Error initializing wizard: %v", err)
		}

		manager := session.NewManager(file.New(""), session.WithLogger(logger))
		srv := mcpadapter.NewServer(wizard.Engine(), manager)

		switch transport {
		case "stdio":
			log.SetOutput(os.Stderr)
			slog.Info("Starting Stile MCP Server (Stdio)...")
			if err := srv.ServeStdio(); err != nil {
				slog.Error("MCP Server execution failed", "error", err)
				os.Exit(1)
			}
		case "sse":
			slog.Info("Starting Stile MCP Server (SSE)", "port", port)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil {
				if err != http.ErrServerClosed {
					slog.Error("MCP Server execution failed", "error", err)
					os.Exit(1)
				}
			}
			slog.Info("MCP Server stopped gracefully")
		default:
			log.Fatalf("Unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().String("backend", "", "Base URL of the signup backend (checks and submission)")
}
