package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/presentation/tui"
	httpAdapter "github.com/aretw0/arbor/pkg/adapters/http"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [dir]",
	Short: "Start the HTTP planning server",
	Long:  `Loads the domain once and serves POST /plan, GET /tasks, GET /graph and GET /metrics over HTTP.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := baseOptions(cmd)
		opts.Dir = projectDir(cmd, args)
		if opts.LogLevel == "" {
			opts.LogLevel = "info"
		}
		opts.Timeout, _ = cmd.Flags().GetDuration("timeout")
		opts.MaxNodes, _ = cmd.Flags().GetInt("max-nodes")
		port, _ := cmd.Flags().GetString("port")

		logger, err := cli.NewLogger(opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		project, err := cli.LoadProject(opts.Dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing arbor: %v\n", err)
			os.Exit(1)
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error registering metrics: %v\n", err)
			os.Exit(1)
		}

		planner, err := cli.NewPlanner(project, opts, logger, metrics.Hooks())
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}

		handler := httpAdapter.NewHandler(planner,
			httpAdapter.WithSchemas(project.Bundle.Schema),
			httpAdapter.WithRoot(project.Bundle.Root),
			httpAdapter.WithMetrics(metrics, reg),
			httpAdapter.WithLogger(logger),
		)

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		tui.PrintBanner(os.Stderr)
		go func() {
			logger.Info("Starting Arbor Server", "address", srv.Addr, "domain", project.Bundle.Domain.Name, "dir", opts.Dir)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			logger.Error("Server error", "error", err)
			os.Exit(1)

		case sig := <-shutdown:
			logger.Info("Start shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("Graceful shutdown did not complete", "timeout", 5*time.Second, "error", err)
				if err := srv.Close(); err != nil {
					logger.Error("Error killing server", "error", err)
				}
			}
			logger.Info("Arbor Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().Duration("timeout", 10*time.Second, "Per-request planning timeout")
	serveCmd.Flags().Int("max-nodes", 0, "Per-request search node budget (0 is unbounded)")
}
