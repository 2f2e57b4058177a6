// Package metrics holds the prometheus collectors for the series pipeline
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AggregationDuration times one aggregator call
	AggregationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "epimetrics_aggregation_duration_seconds",
			Help:    "Duration of aggregator queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "dataset", "tag"},
	)

	AggregationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "epimetrics_aggregation_errors_total",
			Help: "Total number of failed aggregator queries",
		},
		[]string{"backend", "dataset", "tag"},
	)

	AggregatedRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "epimetrics_aggregated_rows_total",
			Help: "Raw rows returned by the aggregator before calendar filling",
		},
		[]string{"backend", "dataset"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "epimetrics_cache_hits_total",
			Help: "Series cache hits",
		},
		[]string{"op"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "epimetrics_cache_misses_total",
			Help: "Series cache misses",
		},
		[]string{"op"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "epimetrics_cache_errors_total",
			Help: "Series cache failures that were bypassed",
		},
		[]string{"op"},
	)

	LoadedRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "epimetrics_loaded_records_total",
			Help: "Records written by the loader",
		},
		[]string{"dataset"},
	)
)

// ObserveAggregation records the duration and, on failure, the error of one aggregator call
func ObserveAggregation(backend, dataset, tag string, start time.Time, rows int, err error) {
	AggregationDuration.WithLabelValues(backend, dataset, tag).Observe(time.Since(start).Seconds())
	if err != nil {
		AggregationErrors.WithLabelValues(backend, dataset, tag).Inc()
		return
	}
	AggregatedRows.WithLabelValues(backend, dataset).Add(float64(rows))
}
