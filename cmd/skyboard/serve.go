package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"infinite-experiment/skyboard/internal/api"
	"infinite-experiment/skyboard/internal/logging"
	"infinite-experiment/skyboard/internal/metrics"
	"infinite-experiment/skyboard/internal/routes"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			if err := logging.Init(cfg.AppEnv); err != nil {
				return err
			}
			defer logging.Close()

			logging.Info("Skyboard starting up",
				"environment", cfg.AppEnv,
				"api_base_url", cfg.APIBaseURL,
				"cache_backend", cfg.CacheBackend,
				"timestamp", time.Now().Format(time.RFC3339),
			)

			metricsReg := metrics.NewMetricsRegistry()
			deps, err := api.InitDependencies(cfg, metricsReg)
			if err != nil {
				return err
			}
			defer deps.Close()

			upSince := time.Now()
			router, closeUI := routes.RegisterRoutes(deps, prometheus.DefaultGatherer, upSince)
			defer closeUI()

			srv := &http.Server{
				Addr:              cfg.ListenAddr(),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logging.Info("Server starting", "addr", srv.Addr, "environment", cfg.AppEnv)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logging.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
