package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Query engine Prometheus metrics.
var (
	QueryCompileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booruq",
			Name:      "query_compile_total",
			Help:      "Total number of query compilations",
		},
		[]string{"status"}, // "ok" / "lexical" / "structural" / "semantic" / "rejected"
	)

	QueryCompileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "booruq",
			Name:      "query_compile_duration_seconds",
			Help:      "Query compilation duration in seconds",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
	)

	MatchEvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booruq",
			Name:      "match_evaluations_total",
			Help:      "Total number of per-image query evaluations",
		},
		[]string{"result"}, // "match" / "miss"
	)

	ClassifyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booruq",
			Name:      "classify_total",
			Help:      "Filter classifications by visibility",
		},
		[]string{"visibility"},
	)

	QueryCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booruq",
			Name:      "query_cache_total",
			Help:      "Compiled query cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var registerQueryOnce sync.Once

// RegisterQueryMetrics registers the query engine metrics with the default registry.
// Safe to call more than once.
func RegisterQueryMetrics() {
	registerQueryOnce.Do(func() {
		prometheus.MustRegister(QueryCompileTotal)
		prometheus.MustRegister(QueryCompileDuration)
		prometheus.MustRegister(MatchEvaluationsTotal)
		prometheus.MustRegister(ClassifyTotal)
		prometheus.MustRegister(QueryCacheTotal)
	})
}
