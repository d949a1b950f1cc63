// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

/*
Package metrics provides Prometheus instrumentation for the recommendation engine.

All collectors are registered with the default registry through promauto, so an
embedding application exposes them with promhttp.Handler().

# Available Metrics

Training Metrics:
  - folio_training_duration_seconds: Training run duration (histogram)
  - folio_training_runs_total: Training requests (counter)
    Labels: result (success, failed, rejected, throttled)

Model Metrics:
  - folio_model_state: Lifecycle state (gauge, 0=absent 1=training 2=ready 3=stale)
  - folio_model_version: Served model version (gauge)
  - folio_model_catalog_books, folio_model_ratings: Snapshot sizes (gauges)
  - folio_model_stale_events_total: Change notifications (counter)
    Labels: topic

Query Metrics:
  - folio_queries_total: Served queries (counter)
    Labels: operation, source
  - folio_query_errors_total: Failed queries (counter)
    Labels: operation, error_type
  - folio_cold_start_users_total: Cold-start personalized requests (counter)
  - folio_popularity_fallbacks_total: Personalized requests served by popularity (counter)
    Labels: reason

Snapshot Source Metrics:
  - folio_snapshot_loads_total: Loads from the external store (counter)
    Labels: status
  - folio_snapshot_breaker_state: Circuit breaker state (gauge)
*/
package metrics
