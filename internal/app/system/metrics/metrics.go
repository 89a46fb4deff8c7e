// Package metrics exposes Prometheus counters for the workflow and
// notification subsystems plus the /metrics handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	workflowTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nibras_workflow_transitions_total",
			Help: "Internal-request actions applied, by action type and resulting status.",
		},
		[]string{"action", "status"},
	)

	workflowConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nibras_workflow_conflicts_total",
			Help: "Optimistic-concurrency conflicts detected on request updates.",
		},
	)

	notificationsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nibras_notifications_emitted_total",
			Help: "Notification records written, by kind.",
		},
		[]string{"kind"},
	)

	notificationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nibras_notification_failures_total",
			Help: "Notification writes or resolutions that failed (and were swallowed), by kind.",
		},
		[]string{"kind"},
	)
)

// Init registers the collectors with the default registry. Call once at
// startup.
func Init() {
	prometheus.MustRegister(
		workflowTransitions,
		workflowConflicts,
		notificationsEmitted,
		notificationFailures,
	)
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// WorkflowTransition records one applied request action.
func WorkflowTransition(action, status string) {
	workflowTransitions.WithLabelValues(action, status).Inc()
}

// WorkflowConflict records one detected lost-update conflict.
func WorkflowConflict() {
	workflowConflicts.Inc()
}

// NotificationEmitted records one written notification.
func NotificationEmitted(kind string) {
	notificationsEmitted.WithLabelValues(kind).Inc()
}

// NotificationFailure records one swallowed notification error.
func NotificationFailure(kind string) {
	notificationFailures.WithLabelValues(kind).Inc()
}
