package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/AnatoleLucet/reactive"
	"github.com/AnatoleLucet/reactive/internal/bench"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var (
		flags configFlags
		addr  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve benches and runtime metrics over HTTP",
		Long: `Start an HTTP server owning one long-lived runtime.

  POST /run      run a bench (query: scenario, size, writes)
  GET  /stats    stats of the last successful run
  GET  /metrics  Prometheus metrics
  GET  /healthz  liveness`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}

			logger := newLogger(cfg.LogLevel)

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())

			rt := reactive.NewRuntime(append(bench.Options(cfg),
				reactive.WithLogger(logger),
				reactive.WithRegisterer(reg),
			)...)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go rt.Run(ctx)

			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           bench.NewServer(rt, cfg, reg, logger).Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", cfg.Addr).Msg("listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("graceful shutdown")
				return err
			}

			logger.Info().Msg("stopped")
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default from config, :9090)")

	return cmd
}
