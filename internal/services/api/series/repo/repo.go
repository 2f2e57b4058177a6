// Package repo provides the series aggregators over postgres and clickhouse
package repo

import (
	"context"

	"epimetrics/internal/core/timeseries"
	"epimetrics/internal/services/api/series/domain"
)

// Backend names used in config and metrics
const (
	BackendPG = "pg"
	BackendCH = "ch"
)

// Repo is the aggregator surface the series service reads from
type Repo interface {
	// Aggregate returns one row per (date, group) with summed totals, ascending by date
	Aggregate(ctx context.Context, q AggQuery) ([]timeseries.RawRow, error)
	// Sources returns the latest source date per source name among matching records
	Sources(ctx context.Context, f Filter) ([]timeseries.Source, error)
	// Survey loads a survey definition; a missing survey is perr.ErrNotFound
	Survey(ctx context.Context, id string) (domain.Survey, error)
	// Backend names the storage backend
	Backend() string
}

// AggQuery is a grouped count request. GroupBy is a whitelisted column or empty for totals only.
// Labels are non additive columns taken from the first matching record of each group.
type AggQuery struct {
	Filter  Filter
	GroupBy string
	Labels  []string
}
