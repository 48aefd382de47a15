// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TimeLogsSubmitted counts submitted time logs by initial status (pending_approval|approved).
	TimeLogsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "choreclock_time_logs_submitted_total",
			Help: "Total number of submitted time logs",
		},
		[]string{"status"},
	)

	// TimeLogMinutes sums submitted minutes by initial status.
	TimeLogMinutes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "choreclock_time_log_minutes_total",
			Help: "Total minutes across submitted time logs",
		},
		[]string{"status"},
	)

	// TimeLogReviews counts review attempts by outcome (approved|rejected|conflict).
	TimeLogReviews = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "choreclock_time_log_reviews_total",
			Help: "Total number of time log review attempts",
		},
		[]string{"result"},
	)

	// TaskTransitions counts applied task status changes.
	TaskTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "choreclock_task_transitions_total",
			Help: "Total number of task status transitions",
		},
		[]string{"from", "to"},
	)

	// NotificationFailures counts notifications that could not be stored.
	NotificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "choreclock_notification_failures_total",
			Help: "Total number of notifications that failed to persist",
		},
	)

	// RealtimeClients tracks connected websocket clients.
	RealtimeClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "choreclock_realtime_clients",
			Help: "Number of connected websocket clients",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "choreclock_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
