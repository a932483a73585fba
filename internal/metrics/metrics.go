// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

// Package metrics registers Prometheus instrumentation for Judgarr:
// upstream API calls, size aggregation runs, punishment lifecycle events,
// and notification deliveries. Metrics are exposed by the status API at
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Upstream API metrics

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "judgarr_api_request_duration_seconds",
			Help:    "Duration of upstream API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "operation"},
	)

	APIRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "judgarr_api_request_errors_total",
			Help: "Total number of upstream API request errors",
		},
		[]string{"service", "operation", "error_type"},
	)

	// Status API metrics

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "judgarr_http_request_duration_seconds",
			Help:    "Duration of status API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "judgarr_http_request_errors_total",
			Help: "Total number of status API responses with 5xx status",
		},
		[]string{"method", "route"},
	)

	// Circuit breaker metrics

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "judgarr_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "judgarr_circuit_breaker_transitions_total",
			Help: "Total circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "judgarr_circuit_breaker_requests_total",
			Help: "Total requests through the circuit breaker by result",
		},
		[]string{"name", "result"}, // result: success, failure, rejected
	)

	// Correlation cache metrics

	CorrelationCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "judgarr_correlation_cache_hits_total",
			Help: "Total number of identifier correlation cache hits",
		},
	)

	CorrelationCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "judgarr_correlation_cache_misses_total",
			Help: "Total number of identifier correlation cache misses",
		},
	)

	// Aggregation metrics

	AggregationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "judgarr_aggregation_duration_seconds",
			Help:    "Duration of per-user size aggregation runs in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	AggregationRequestsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "judgarr_aggregation_requests_total",
			Help: "Total broker requests processed during aggregation",
		},
		[]string{"media_type", "outcome"}, // outcome: resolved, failed
	)

	// Punishment metrics

	PunishmentsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "judgarr_punishments_created_total",
			Help: "Total punishments created",
		},
		[]string{"level", "origin"}, // origin: usage, administrative
	)

	PunishmentsDeactivated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "judgarr_punishments_deactivated_total",
			Help: "Total punishments deactivated",
		},
		[]string{"cause"}, // cause: superseded, reset, override
	)

	// Notification metrics

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "judgarr_notifications_sent_total",
			Help: "Total notification delivery attempts",
		},
		[]string{"channel", "outcome"}, // outcome: success, failure
	)

	// Database metrics

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "judgarr_db_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)
)

// RecordAPIError classifies err into the error_type label used by
// APIRequestErrors. The classification mirrors the sync error taxonomy:
// authentication, rate_limited, not_found, upstream.
func RecordAPIError(service, operation, errorType string) {
	APIRequestErrors.WithLabelValues(service, operation, errorType).Inc()
}
