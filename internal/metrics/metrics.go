package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansTotal counts scans by cache outcome (hit, miss) and result (trips, empty, error).
	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightwatcher_scans_total",
			Help: "Total number of scans",
		},
		[]string{"cache", "result"},
	)

	ScanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flightwatcher_scan_duration_seconds",
			Help:    "Duration of scans in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"cache"},
	)

	// SourceQueriesTotal counts fare source queries; outcome is success or failure.
	SourceQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightwatcher_source_queries_total",
			Help: "Total number of fare source queries",
		},
		[]string{"source", "outcome"},
	)

	SourceQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flightwatcher_source_query_duration_seconds",
			Help:    "Duration of fare source queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// RateLimitWait observes how long a source query waited for a token.
	RateLimitWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flightwatcher_rate_limit_wait_seconds",
			Help:    "Time spent waiting on the source rate limiter",
			Buckets: []float64{0, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"source"},
	)

	TripsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flightwatcher_scan_trips",
			Help:    "Number of trips returned per scan",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightwatcher_cache_operations_total",
			Help: "Cache operations by kind (get, put, hit_count) and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// Circuit breaker

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "flightwatcher_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightwatcher_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightwatcher_circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker by result (success, failure, rejected)",
		},
		[]string{"name", "result"},
	)

	// Enrichment and analytics

	GoodDealsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flightwatcher_good_deals_total",
			Help: "Enriched trips flagged as good deals",
		},
	)

	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightwatcher_events_total",
			Help: "Analytics events recorded by type",
		},
		[]string{"type"},
	)
)
