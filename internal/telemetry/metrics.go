// Package telemetry holds logging setup and the Prometheus metrics of the service.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)
)

var (
	// StatusTransitionsTotal counts resolution and membership status changes.
	StatusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "governance_status_transitions_total",
			Help: "Resolution and membership status transitions, by entity, from, to and outcome.",
		},
		[]string{"entity", "from", "to", "outcome"},
	)

	SnapshotWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "governance_snapshot_writes_total",
			Help: "Governance snapshot write attempts, by source and outcome.",
		},
		[]string{"source", "outcome"},
	)

	// SnapshotFallbackTotal must stay at zero; any increase means a published
	// meeting is missing its frozen snapshot.
	SnapshotFallbackTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "governance_snapshot_fallback_total",
			Help: "Reads of a published meeting that had no stored governance snapshot.",
		},
	)

	CompletionEvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "governance_completion_evaluations_total",
			Help: "Meeting completion readiness evaluations, by mode and verdict.",
		},
		[]string{"mode", "ready"},
	)

	RemoteBallotsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "governance_remote_ballots_total",
			Help: "Remote ballot submissions, by outcome.",
		},
		[]string{"outcome"},
	)
)
