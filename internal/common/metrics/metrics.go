// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BackendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_backend_requests_total",
			Help: "Total number of backend requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "onboarding_backend_request_duration_seconds",
			Help:    "Duration of backend requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_cache_lookups_total",
			Help: "Cache lookups for backend catalogue data",
		},
		[]string{"endpoint", "result"},
	)

	StaleResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "onboarding_stale_results_total",
			Help: "Backend results discarded because the conversation had moved on",
		},
	)

	ActiveConversations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "onboarding_active_conversations",
			Help: "Number of running conversation controllers",
		},
	)
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"

	CacheHit  = "hit"
	CacheMiss = "miss"
)
