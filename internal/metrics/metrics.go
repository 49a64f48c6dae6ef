// Package metrics holds the Prometheus instruments of the service.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"conferencecentral/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conference_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "conference_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Registration ledger
	Registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conference_registrations_total",
			Help: "Registration and unregistration attempts by outcome",
		},
		[]string{"action", "outcome"},
	)

	TransactionRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conference_transaction_retries_total",
			Help: "Transactions re-run after a serialization conflict",
		},
	)

	// Queries
	FilterRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conference_filter_rejections_total",
			Help: "Conference queries rejected during filter compilation",
		},
		[]string{"reason"}, // "invalid_filter", "multiple_inequality", "invalid_value"
	)

	// Deferred work
	TasksProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conference_tasks_processed_total",
			Help: "Deferred task deliveries by task and outcome",
		},
		[]string{"task", "outcome"},
	)

	TaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "conference_task_duration_seconds",
			Help:    "Duration of deferred task deliveries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task"},
	)

	FeaturedSpeakerUpdates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conference_featured_speaker_updates_total",
			Help: "Featured speaker messages written to the cache",
		},
	)

	// Cache
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conference_cache_requests_total",
			Help: "Cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss"
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordRegistration records the outcome of a register or unregister call.
func RecordRegistration(action string, err error) {
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrAlreadyRegistered):
		outcome = "already_registered"
	case errors.Is(err, domain.ErrSoldOut):
		outcome = "sold_out"
	case errors.Is(err, domain.ErrNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	Registrations.WithLabelValues(action, outcome).Inc()
}

// RecordFilterRejection records why a conference query failed to compile.
func RecordFilterRejection(err error) {
	reason := "invalid_filter"
	switch {
	case errors.Is(err, domain.ErrMultipleInequalityFields):
		reason = "multiple_inequality"
	case errors.Is(err, domain.ErrInvalidValue):
		reason = "invalid_value"
	}
	FilterRejections.WithLabelValues(reason).Inc()
}

// RecordTask records one task delivery.
func RecordTask(task string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	TasksProcessed.WithLabelValues(task, outcome).Inc()
	TaskDuration.WithLabelValues(task).Observe(duration.Seconds())
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheRequests.WithLabelValues("hit").Inc()
		return
	}
	CacheRequests.WithLabelValues("miss").Inc()
}
