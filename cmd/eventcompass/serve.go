package main

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/bjaus/dispatch"
	"github.com/bjaus/dispatch/internal/backend"
	"github.com/bjaus/dispatch/internal/config"
	"github.com/bjaus/dispatch/internal/metrics"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, st, logger, err := opts.openStore(cmd)
			if err != nil {
				return err
			}
			defer func() {
				if err := st.Close(); err != nil {
					logger.Error("close store", "error", err)
				}
			}()
			if addr != "" {
				cfg.Addr = addr
			}

			m := metrics.New()
			app := backend.New(st, dispatch.WithLogger(logger), dispatch.WithObserver(m))
			if err := app.Validate(); err != nil {
				return err
			}

			logger.Info("starting server", "addr", cfg.Addr, "database", cfg.Database)
			err = dispatch.Serve(cmd.Context(), cfg.Addr, handler(cfg, logger, app, m))
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

// handler mounts the app and, when enabled, /metrics behind the edge
// middleware.
func handler(cfg *config.Config, logger *slog.Logger, app *dispatch.App, m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()
	if cfg.Metrics {
		mux.Handle("GET /metrics", m.Handler())
	}
	mux.Handle("/", app)

	mw := []dispatch.Middleware{
		dispatch.Recovery(logger),
		dispatch.RequestID(),
		dispatch.Logger(logger),
		dispatch.Secure(),
		m.InFlight(),
	}
	if len(cfg.CORSOrigins) > 0 {
		mw = append(mw, dispatch.CORS(dispatch.CORSConfig{
			AllowOrigins:  cfg.CORSOrigins,
			ExposeHeaders: []string{"X-Request-ID"},
		}))
	}
	if cfg.MaxBodyBytes > 0 {
		mw = append(mw, dispatch.BodyLimit(cfg.MaxBodyBytes))
	}
	if cfg.RateLimit.Rate > 0 {
		mw = append(mw, dispatch.RateLimit(dispatch.RateLimitConfig{
			Rate:  cfg.RateLimit.Rate,
			Burst: cfg.RateLimit.Burst,
		}))
	}
	if cfg.Timeout > 0 {
		mw = append(mw, dispatch.Timeout(cfg.Timeout))
	}
	return dispatch.Chain(mw...)(mux)
}
