// Package metrics expose les compteurs Prometheus de la console
// (appels REST, pollers, flux de logs, disjoncteur).
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Appels vers l'API /api/v1
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "strmsync_api_request_duration_seconds",
			Help:    "Duration of backend API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Pollers (statuts, stats dashboard)
	PollTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strmsync_poll_total",
			Help: "Total number of poll attempts by poller and outcome",
		},
		[]string{"poller", "outcome"}, // "applied", "error", "stale"
	)

	PollLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "strmsync_poll_last_success_timestamp_seconds",
			Help: "Unix time of the last applied poll result",
		},
		[]string{"poller"},
	)

	SyncJobs = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "strmsync_sync_jobs",
			Help: "Number of sync jobs per provider and state, as last observed",
		},
		[]string{"provider", "state"},
	)

	SyncTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strmsync_sync_transitions_total",
			Help: "Observed sync job state transitions",
		},
		[]string{"provider", "from", "to"},
	)

	JobCommands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strmsync_job_commands_total",
			Help: "Start/stop commands by outcome",
		},
		[]string{"provider", "command", "outcome"},
	)

	// Flux de logs
	LogLines = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "strmsync_log_lines_total",
			Help: "Log lines received from the backend stream",
		},
	)

	LogBufferSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "strmsync_log_buffer_lines",
			Help: "Lines currently held in the visible log buffer",
		},
	)

	LogPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "strmsync_log_pending_lines",
			Help: "Lines held while the viewer is paused",
		},
	)

	LogReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "strmsync_log_stream_reconnects_total",
			Help: "Log stream reconnection attempts",
		},
	)

	LogConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "strmsync_log_stream_connected",
			Help: "1 when the log stream is connected",
		},
	)

	AdminActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strmsync_admin_actions_total",
			Help: "Admin actions by final state",
		},
		[]string{"action", "state"},
	)

	// Disjoncteur du client REST
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "strmsync_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strmsync_circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strmsync_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	EventSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "strmsync_event_subscribers",
			Help: "Active SSE subscribers on the console",
		},
	)
)

func RecordAPIRequest(method, route string, status int, d time.Duration) {
	APIRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

func RecordPoll(poller, outcome string) {
	PollTotal.WithLabelValues(poller, outcome).Inc()
	if outcome == "applied" {
		PollLastSuccess.WithLabelValues(poller).SetToCurrentTime()
	}
}
