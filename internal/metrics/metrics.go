// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Training run results used as the "result" label.
const (
	TrainingSuccess   = "success"
	TrainingFailed    = "failed"
	TrainingRejected  = "rejected"
	TrainingThrottled = "throttled"
)

var (
	// Training Metrics
	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "folio_training_duration_seconds",
			Help:    "Duration of recommendation model training runs in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
	)

	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_training_runs_total",
			Help: "Total number of training requests by result",
		},
		[]string{"result"}, // success, failed, rejected, throttled
	)

	// Model Metrics
	ModelState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "folio_model_state",
			Help: "Lifecycle state of the served model (0=absent, 1=training, 2=ready, 3=stale)",
		},
	)

	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "folio_model_version",
			Help: "Version of the currently served model",
		},
	)

	ModelCatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "folio_model_catalog_books",
			Help: "Number of books in the served model",
		},
	)

	ModelRatings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "folio_model_ratings",
			Help: "Number of distinct ratings in the served model",
		},
	)

	ModelStaleEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_model_stale_events_total",
			Help: "Total change notifications received by the lifecycle manager",
		},
		[]string{"topic"},
	)

	// Query Metrics
	Queries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_queries_total",
			Help: "Total recommendation queries by operation and result source",
		},
		[]string{"operation", "source"},
	)

	QueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_query_errors_total",
			Help: "Total recommendation queries that returned an error",
		},
		[]string{"operation", "error_type"},
	)

	ColdStarts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "folio_cold_start_users_total",
			Help: "Total personalized requests from users without ratings or bookmarks",
		},
	)

	PopularityFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_popularity_fallbacks_total",
			Help: "Total personalized requests served from the popularity ranking",
		},
		[]string{"reason"}, // cold_start, not_ready, empty, error
	)

	// Snapshot Source Metrics
	SnapshotLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_snapshot_loads_total",
			Help: "Total snapshot loads from the external store",
		},
		[]string{"status"}, // success, error, breaker_open
	)

	SnapshotBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "folio_snapshot_breaker_state",
			Help: "Circuit breaker state of the snapshot source (0=closed, 1=half-open, 2=open)",
		},
	)
)

// RecordTraining records the outcome of a training request. Duration is only
// observed for runs that actually built a model (success or failed).
func RecordTraining(result string, duration time.Duration) {
	TrainingRuns.WithLabelValues(result).Inc()
	if result == TrainingSuccess || result == TrainingFailed {
		TrainingDuration.Observe(duration.Seconds())
	}
}

// RecordModelPublished updates the gauges describing the served model.
func RecordModelPublished(version, books, ratings int) {
	ModelVersion.Set(float64(version))
	ModelCatalogSize.Set(float64(books))
	ModelRatings.Set(float64(ratings))
}

// SetModelState records the lifecycle state as its numeric value.
func SetModelState(state int) {
	ModelState.Set(float64(state))
}

// RecordStaleEvent counts a change notification.
func RecordStaleEvent(topic string) {
	ModelStaleEvents.WithLabelValues(topic).Inc()
}

// RecordQuery counts a served query.
func RecordQuery(operation, source string) {
	Queries.WithLabelValues(operation, source).Inc()
}

// RecordQueryError counts a failed query.
func RecordQueryError(operation, errorType string) {
	QueryErrors.WithLabelValues(operation, errorType).Inc()
}

// RecordPopularityFallback counts a personalized request degraded to popularity.
func RecordPopularityFallback(reason string) {
	PopularityFallbacks.WithLabelValues(reason).Inc()
	if reason == "cold_start" {
		ColdStarts.Inc()
	}
}

// RecordSnapshotLoad counts a snapshot load attempt.
func RecordSnapshotLoad(status string) {
	SnapshotLoads.WithLabelValues(status).Inc()
}

// SetSnapshotBreakerState records the breaker state (0=closed, 1=half-open, 2=open).
func SetSnapshotBreakerState(state int) {
	SnapshotBreakerState.Set(float64(state))
}
