package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	CacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Cache operations",
		},
		[]string{"op"}, // hit|miss|error|set|set_error|evicted|expired
	)
	CacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_size",
			Help: "Number of items currently in the in-process cache",
		},
	)
	CachePruned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_pruned_total",
			Help: "Expired rows removed from the postgres cache table",
		},
	)
)

var (
	TMDBRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmdb_requests_total",
			Help: "Requests sent to the TMDB API",
		},
		[]string{"endpoint", "code"}, // code: HTTP status или "error"
	)
	TMDBRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tmdb_request_duration_seconds",
			Help:    "TMDB request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

var (
	// ObservationDuration — длительность наблюдаемых операций (telemetry.Observe).
	// В лейбл low_cardinality попадают только теги с ограниченным набором значений.
	ObservationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "observation_duration_seconds",
			Help:    "Duration of observed operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"name", "outcome", "low_cardinality"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Handled HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
)

var registerOnce sync.Once

// MustRegister — регистрирует коллекторы в глобальном реестре; повторный вызов безопасен.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			CacheOps, CacheSize, CachePruned,
			TMDBRequests, TMDBRequestDuration,
			ObservationDuration, HTTPRequests,
		)
	})
}
