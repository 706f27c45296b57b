package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/rhuss/evalkit/pkg/config"
	"github.com/rhuss/evalkit/pkg/debug"
	"github.com/rhuss/evalkit/pkg/observability"
)

// globalFlags holds flags shared by all subcommands.
type globalFlags struct {
	configPath string
	debug      string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "evalctl",
		Short: "Invoke Databricks model serving endpoints for evaluations",
		Long: `evalctl sends prompts to Databricks chat completion endpoints and prints
normalized results: output, token usage, estimated cost and cache status.

Responses are cached (memory, postgres or redis) so repeated evaluation
runs do not hit the backend twice for identical requests.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file path")
	cmd.PersistentFlags().StringVar(&flags.debug, "debug", "", "debug categories (providers,fetch,cache,config or all)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (ERROR, WARN, INFO, DEBUG, TRACE)")

	cmd.AddCommand(
		invokeCmd(&flags),
		modelsCmd(&flags),
		configCmd(&flags),
	)

	return cmd
}

// loadConfig loads configuration and applies logging settings. Flags
// take precedence over the config file.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	categories := cfg.Logging.Debug
	if flags.debug != "" {
		categories = flags.debug
	}
	level := cfg.Logging.Level
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	debug.Init(categories, level)

	return cfg, nil
}

// serveMetrics exposes Prometheus metrics while the command runs. The
// returned function stops the listener.
func serveMetrics(cfg config.MetricsConfig) func() {
	if !cfg.Enabled {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Path, observability.Handler())
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("metrics endpoint listening", "addr", cfg.Addr, "path", cfg.Path)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Warn("metrics endpoint failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}
