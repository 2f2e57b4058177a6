// Package module wires the records loader; it mounts no routes
package module

import (
	"context"
	"fmt"

	"epimetrics/internal/modkit"
	"epimetrics/internal/services/records/domain"
	"epimetrics/internal/services/records/repo"
	"epimetrics/internal/services/records/schema"
	"epimetrics/internal/services/records/service"
)

// Ports defines the records module ports
type Ports struct {
	Loader domain.LoaderPort
}

// Module implements the records module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the records module from deps.Cfg
func New(deps modkit.Deps) *Module {
	return NewWithOptions(deps, FromConfig(deps.Cfg))
}

// NewWithOptions constructs the records module with explicit options
func NewWithOptions(deps modkit.Deps, o Options) *Module {
	if deps.PG == nil {
		panic("records: SERVICE_PGSQL must be enabled to load records")
	}

	if o.Chunk > repo.MaxChunk {
		deps.Log.Warn().Int("chunk", o.Chunk).Int("max", repo.MaxChunk).Msg("records: chunk above bind parameter limit; clamped")
		o.Chunk = repo.MaxChunk
	}

	var mirror domain.Mirror
	if o.MirrorCH && deps.CH != nil {
		mirror = repo.NewCH(deps.CH)
	}

	svc := service.New(deps.PG, repo.NewPG(), mirror, service.Config{
		Chunk:      o.Chunk,
		MaxRetries: o.Retries,
		RetryBase:  o.RetryBase,
		MaxErrors:  o.MaxErrors,
	})
	deps.Log.Info().Bool("mirror_ch", mirror != nil).Int("chunk", o.Chunk).Msg("records module ready")

	return &Module{deps: deps, ports: Ports{Loader: svc}}
}

// Name returns the module name
func (m *Module) Name() string { return "records" }

// Ports returns the module ports
func (m *Module) Ports() Ports { return m.ports }

// EnsureSchema creates the postgres tables when missing
func (m *Module) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema.Statements(schema.PG) {
		if _, err := m.deps.PG.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("records schema: %w", err)
		}
	}
	return nil
}
