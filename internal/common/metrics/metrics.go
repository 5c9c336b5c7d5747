// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_events_consumed_total",
			Help: "Total number of events read from the event log",
		},
		[]string{"topic"},
	)

	EventsDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_events_discarded_total",
			Help: "Total number of events discarded (unknown topic or invalid payload)",
		},
		[]string{"topic", "reason"},
	)

	HandlerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_handler_failures_total",
			Help: "Total number of handler errors and panics, isolated per event",
		},
		[]string{"topic"},
	)

	Dispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dispatches_total",
			Help: "Total number of dispatch outcomes by category and status",
		},
		[]string{"category", "status"},
	)

	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "notification_dispatch_duration_seconds",
			Help: "Duration of dispatch processing in seconds",
		},
		[]string{"category"},
	)

	Retries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_retries_total",
			Help: "Total number of manual retry attempts by outcome",
		},
		[]string{"status"},
	)
)
