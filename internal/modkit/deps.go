// Package modkit provides module wiring and core deps
package modkit

import (
	"context"

	"epimetrics/internal/modkit/repokit"
	"epimetrics/internal/platform/cache"
	"epimetrics/internal/platform/config"
	"epimetrics/internal/platform/logger"
	"epimetrics/internal/platform/store"
)

// Checker answers readiness per backend name; *store.Store implements it
type Checker interface {
	Check(ctx context.Context, name string) (configured bool, err error)
}

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log    logger.Logger
	Cfg    config.Conf
	PG     repokit.TxRunner
	CH     store.Clickhouse
	Cache  *cache.Cache
	Checks Checker
}
