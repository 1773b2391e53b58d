package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReviewActionsTotal counts review actions by action and outcome
	// (applied, invalid_transition, not_found, error).
	ReviewActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_review_actions_total",
			Help: "Total number of review actions performed on access records",
		},
		[]string{"action", "outcome"},
	)

	RecordsGrantedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "access_review_records_granted_total",
			Help: "Total number of access records created",
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_review_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "access_review_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	EventSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "access_review_event_subscribers",
			Help: "Number of connected event stream subscribers",
		},
	)
)
