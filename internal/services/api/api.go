// Package api provides the HTTP API for the application
package api

import (
	"time"

	"epimetrics/internal/platform/cache"
	"epimetrics/internal/platform/config"
	"epimetrics/internal/platform/logger"
	phttp "epimetrics/internal/platform/net/http"
	"epimetrics/internal/platform/store"

	"epimetrics/internal/modkit"
	"epimetrics/internal/modkit/httpkit"
	"epimetrics/internal/modkit/module"
	"epimetrics/internal/modkit/swaggerkit"

	metamod "epimetrics/internal/services/api/meta/module"
	seriesmod "epimetrics/internal/services/api/series/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
	EnableMetrics  bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	apiCfg := opt.Config.Prefix("CORE_API_")

	// shared deps for modules
	deps := modkit.Deps{
		Log:    *opt.Logger,
		Cfg:    opt.Config,
		PG:     opt.Store.PG,
		CH:     opt.Store.CH,
		Cache:  cache.New(opt.Store.RDS, "epimetrics", opt.Config.Prefix("SERVICE_REDIS_").MayDuration("CACHE_TTL", 5*time.Minute)),
		Checks: opt.Store,
	}

	mods := []module.Module{
		metamod.New(deps),
		seriesmod.New(deps),
	}

	stack := httpkit.CommonStack(httpkit.StackOptions{
		AllowedOrigins: apiCfg.MayCSV("CORS_ORIGINS", nil),
		Timeout:        apiCfg.MayDuration("REQUEST_TIMEOUT", 30*time.Second),
		MaxInFlight:    apiCfg.MayInt("MAX_IN_FLIGHT", 0),
	})

	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
	phttp.MountMetrics(r, "/metrics", opt.EnableMetrics)

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
}
