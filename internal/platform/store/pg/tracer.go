package pg

import (
	"context"
	"strings"

	"epimetrics/internal/platform/logger"
)

// QueryEvent is one traced statement
type QueryEvent struct {
	SQL       string
	Args      any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives query events from the store adapter
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs every statement through the request logger so lines carry request_id and dataset
func Tracer() QueryTracer { return zlTracer{} }

type zlTracer struct{}

func (zlTracer) OnQuery(ctx context.Context, ev QueryEvent) {
	log := logger.C(ctx).With().Str("component", "pg").Logger()
	evt := log.Debug()
	switch {
	case ev.Err != nil:
		evt = log.Error().Err(ev.Err)
	case ev.Slow:
		evt = log.Warn()
	}
	evt.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000.0).
		Bool("slow", ev.Slow).
		Str("sql", compact(ev.SQL)).
		Interface("args", ev.Args).
		Msg("pg query")
}

// compact folds whitespace runs into single spaces for one-line logs
func compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
