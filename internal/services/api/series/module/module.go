// Package module wires series into the API using modkit
package module

import (
	"net/http"

	modkit "epimetrics/internal/modkit"
	"epimetrics/internal/modkit/httpkit"
	str "epimetrics/internal/platform/strings"
	serieshttp "epimetrics/internal/services/api/series/http"
	seriesrepo "epimetrics/internal/services/api/series/repo"
	seriessvc "epimetrics/internal/services/api/series/service"
)

// Module implements the series module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports any

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc seriessvc.Service
}

// New constructs the series module with options read from deps.Cfg
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	return NewWithOptions(deps, FromConfig(deps.Cfg), opts...)
}

// NewWithOptions constructs the series module with explicit options
func NewWithOptions(deps modkit.Deps, o Options, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("series"), modkit.WithPrefix("/series")}, opts...)...)

	svc := seriessvc.New(newRepo(deps, o), deps.Cache, seriessvc.Config{Anchor: o.Anchor})
	deps.Log.Info().Str("module", b.Name).Str("backend", o.Backend).Str("anchor", o.Anchor.String()).Msg("series module ready")

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = adaptSeriesPort{svc: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		serieshttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// newRepo picks the aggregator backend; a selected backend that is not configured stops the boot
func newRepo(deps modkit.Deps, o Options) seriesrepo.Repo {
	if o.Backend == seriesrepo.BackendCH {
		if deps.CH == nil {
			panic("series: clickhouse backend selected but SERVICE_CLICKHOUSE is not enabled")
		}
		return seriesrepo.NewCH(deps.CH)
	}
	if deps.PG == nil {
		panic("series: postgres backend selected but SERVICE_PGSQL is not enabled")
	}
	return seriesrepo.NewPG().Bind(deps.PG)
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
