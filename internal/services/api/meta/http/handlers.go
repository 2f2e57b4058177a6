// Package http provides meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"strings"
	"time"

	"epimetrics/internal/core/version"
	"epimetrics/internal/modkit"
	"epimetrics/internal/modkit/httpkit"
	"epimetrics/internal/modkit/module"
	perr "epimetrics/internal/platform/errors"
)

// Backends probed by the readiness check, in report order
var Backends = []string{"pg", "ch", "redis"}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Checks      modkit.Checker
	Timeout     time.Duration
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.Timeout <= 0 {
		d.Timeout = 2 * time.Second
	}
	h := &handlers{deps: d}

	httpkit.GetJSON(r, "/health", h.health)
	httpkit.GetJSON(r, "/ready", h.ready)
	httpkit.GetJSON(r, "/version", h.version)
	httpkit.GetJSON(r, "/service", h.service)
}

// HealthResponse is the health payload
// swagger:model
type HealthResponse struct {
	OK      bool   `json:"ok"       example:"true"`
	Service string `json:"service"  example:"epimetrics-api"`
	Started string `json:"started"  example:"2021-06-01T12:00:00Z"`
	Now     string `json:"now"      example:"2021-06-01T12:05:00Z"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"   example:"pg"`
	Status string `json:"status" example:"ok"` // ok fail skipped
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432 connect: connection refused"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"` // ok degraded
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2021-06-01T12:05:00Z"`
}

// ServiceResponse describes service info
type ServiceResponse struct {
	Name    string            `json:"name"    example:"epimetrics-api"`
	Started string            `json:"started" example:"2021-06-01T12:00:00Z"`
	Uptime  int64             `json:"uptime"  example:"300"`
	Modules []string          `json:"modules" example:"meta,series"`
	Build   version.BuildInfo `json:"build"`
}

// swagger:route GET /meta/health Meta metaHealth
// @Summary Health check
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse "ok"
// @Router /meta/health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// swagger:route GET /meta/ready Meta metaReady
// @Summary Readiness probe with dependency checks
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse "ok or degraded"
// @Failure 503 {object} httpkit.Envelope "a configured backend is down"
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(r.Context(), h.deps.Timeout)
	defer cancel()

	out := ReadyResponse{Status: "ok", Checks: make([]ReadyCheck, 0, len(Backends))}
	var failed []string
	for _, name := range Backends {
		c := ReadyCheck{Name: name, Status: "skipped"}
		if h.deps.Checks != nil {
			configured, err := h.deps.Checks.Check(ctx, name)
			switch {
			case err != nil:
				c.Status, c.Error = "fail", err.Error()
				failed = append(failed, name)
			case configured:
				c.Status = "ok"
			}
		}
		if c.Status == "skipped" {
			out.Status = "degraded"
		}
		out.Checks = append(out.Checks, c)
	}
	out.Now = time.Now().UTC().Format(time.RFC3339)

	if len(failed) > 0 {
		return nil, perr.Unavailablef("not ready: %s", strings.Join(failed, ", "))
	}
	return out, nil
}

// swagger:route GET /meta/version Meta metaVersion
// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo "ok"
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

// swagger:route GET /meta/service Meta metaService
// @Summary Service info and uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse "ok"
// @Router /meta/service [get]
func (h *handlers) service(_ *http.Request) (any, error) {
	uptime := time.Since(h.deps.StartedAt)
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(uptime / time.Second),
		Modules: module.Names(),
		Build:   version.Info(),
	}, nil
}
