// @title         epimetrics API
// @version       0.1.0
// @description   Gap filled public health time series and derived views

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"epimetrics/internal/core/version"
	"epimetrics/internal/modkit/repokit"
	"epimetrics/internal/platform/config"
	"epimetrics/internal/platform/logger"
	phttp "epimetrics/internal/platform/net/http"
	"epimetrics/internal/platform/net/middleware"
	"epimetrics/internal/platform/store"

	"epimetrics/internal/services/api"

	"github.com/go-chi/chi/v5"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// bring up logging early
	lo := logger.FromEnv()
	if lo.Service == "" {
		lo.Service = version.Service
	}
	logger.Init(lo)
	l := logger.Get()

	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	// open the platform store (postgres, optional clickhouse and redis)
	st, err := store.Open(ctx, store.FromConfig(root, version.Service), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	// http server (reads CORE_API_ADDR and timeouts)
	srv := phttp.NewServer(apiCfg, func(m *chi.Mux) {
		m.Use(middleware.Heartbeat("/ping"))
	})

	api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
			EnableMetrics:  apiCfg.MayBool("METRICS", true),
		},
	)

	l.Info().Str("service", version.Service).Str("version", version.Info().Version).Msg("starting")
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
