package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp [dir]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts arbor as an MCP Server.
This allows AI agents to plan over the domain through the plan and list_tasks tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := baseOptions(cmd)
		opts.Dir = projectDir(cmd, args)
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		opts.Timeout, _ = cmd.Flags().GetDuration("timeout")

		// Logs always go to stderr so they never corrupt JSON-RPC on stdout.
		level, err := logging.ParseLevel(opts.LogLevel)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		if opts.Debug {
			level = slog.LevelDebug
		}
		logger := logging.New(level)
		log.SetOutput(os.Stderr)

		project, err := cli.LoadProject(opts.Dir)
		if err != nil {
			log.Fatalf("Error initializing arbor: %v", err)
		}
		planner, err := cli.NewPlanner(project, opts, logger)
		if err != nil {
			log.Fatalf("%v", err)
		}

		srv := mcp.NewServer(planner,
			mcp.WithSchemas(project.Bundle.Schema),
			mcp.WithRoot(project.Bundle.Root),
			mcp.WithLogger(logger),
		)

		switch transport {
		case "stdio":
			logger.Info("Starting Arbor MCP Server (Stdio)...")
			if err := srv.ServeStdio(); err != nil {
				logger.Error("MCP Server execution failed", "error", err)
				os.Exit(1)
			}
		case "sse":
			logger.Info("Starting Arbor MCP Server (SSE)", "port", port)

			// Create a context that cancels on interrupt signal
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil {
				logger.Error("MCP Server execution failed", "error", err)
				os.Exit(1)
			}
			logger.Info("MCP Server stopped gracefully")
		default:
			log.Fatalf("Unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().Duration("timeout", 0, "Per-call planning timeout (0 disables)")
}
