// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Bookmarks
	BookmarkToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inframe_bookmark_toggles_total",
			Help: "Bookmark toggles by outcome",
		},
		[]string{"result"}, // "created", "removed", "error"
	)

	CounterCompensations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inframe_counter_compensations_total",
			Help: "Compensating counter increments issued after a failed commit",
		},
		[]string{"result"}, // "ok", "failed"
	)

	// Jobs
	JobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inframe_job_runs_total",
			Help: "Periodic job runs by job and status",
		},
		[]string{"job", "status"}, // status: "ok", "failed", "skipped"
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inframe_job_duration_seconds",
			Help:    "Duration of periodic job runs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)

	JobLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "inframe_job_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		},
		[]string{"job"},
	)

	HotSlots = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inframe_hot_slots_total",
			Help: "Hot snapshot slots handled by refresh runs",
		},
		[]string{"outcome"}, // "written", "skipped", "failed"
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "inframe_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inframe_circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	// HTTP
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inframe_rate_limited_requests_total",
			Help: "Requests rejected by the per-client rate limiter",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inframe_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
