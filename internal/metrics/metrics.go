package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localfeed_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "localfeed_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "localfeed_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Media index metrics
var (
	IndexRebuildsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "localfeed_index_rebuilds_total",
			Help: "Total number of index snapshot rebuilds",
		},
	)

	IndexRebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "localfeed_index_rebuild_duration_seconds",
			Help:    "Duration of index snapshot rebuilds in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	IndexItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "localfeed_index_items",
			Help: "Number of media items in the current index snapshot",
		},
	)

	IndexInvalidationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "localfeed_index_invalidations_total",
			Help: "Total number of explicit index invalidations",
		},
	)

	WatchedDirectories = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "localfeed_index_watched_directories",
			Help: "Number of directories registered with the filesystem watcher",
		},
	)
)

// Derivative store metrics
var (
	DerivativeCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localfeed_derivative_cache_hits_total",
			Help: "Total number of derivative cache hits",
		},
		[]string{"kind"}, // "thumbnail", "poster"
	)

	DerivativeCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localfeed_derivative_cache_misses_total",
			Help: "Total number of derivative cache misses",
		},
		[]string{"kind"},
	)

	DerivativeGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "localfeed_derivative_generation_duration_seconds",
			Help:    "Duration of derivative generation in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"kind"},
	)

	DerivativeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localfeed_derivative_failures_total",
			Help: "Total number of failed derivative generations",
		},
		[]string{"kind", "reason"}, // reason: "decode", "encode", "timeout", "exec"
	)
)

// Transport metrics
var (
	RangeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localfeed_range_requests_total",
			Help: "Total number of media transport responses by outcome",
		},
		[]string{"outcome"}, // "full", "partial", "not_modified", "unsatisfiable"
	)

	BytesServedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localfeed_bytes_served_total",
			Help: "Total media bytes written to clients",
		},
		[]string{"outcome"},
	)
)
