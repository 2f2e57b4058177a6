package http

import (
	stdhttp "net/http"

	mw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MountProfiler mounts pprof under prefix (e.g. "/debug") when enabled
func MountProfiler(r Router, prefix string, enabled bool) {
	if !enabled {
		return
	}
	h := stdhttp.StripPrefix(prefix, mw.Profiler())
	r.Handle(prefix, h)
	r.Handle(prefix+"/*", h)
}

// MountMetrics exposes the default prometheus registry at path when enabled
func MountMetrics(r Router, path string, enabled bool) {
	if !enabled {
		return
	}
	r.Handle(path, promhttp.Handler())
}
