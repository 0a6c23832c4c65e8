package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestCounter counts HTTP requests by status code, method, and route pattern
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "silomba_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"status", "method", "route"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "silomba_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// RequestInProgress counts HTTP requests currently being processed
	RequestInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "silomba_http_requests_in_progress",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// RateLimiterRejections counts requests rejected by the auth rate limiter
	RateLimiterRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "silomba_rate_limiter_rejections_total",
			Help: "Total number of requests rejected by rate limiter",
		},
	)

	CompetitionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "silomba_competitions_created_total",
			Help: "Competitions submitted, by initial status",
		},
		[]string{"status"},
	)

	ModerationDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "silomba_competition_moderations_total",
			Help: "Moderation decisions, by resulting status",
		},
		[]string{"status"},
	)

	PosterCleanupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "silomba_poster_cleanup_failures_total",
			Help: "Poster files that could not be removed after their competition changed",
		},
	)

	CleanupQueueDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "silomba_poster_cleanup_dropped_total",
			Help: "Poster cleanup jobs dropped because the queue was full",
		},
	)
)
