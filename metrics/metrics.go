// Package metrics exposes Prometheus counters for the practice core.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TenantMutations counts successful writes per resource and action
	TenantMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "legalcrm_tenant_mutations_total",
		Help: "Total number of tenant-scoped writes",
	}, []string{"resource", "action"})

	// InvariantBreaches counts rows that came back with a foreign firm id
	InvariantBreaches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "legalcrm_tenant_invariant_breaches_total",
		Help: "Rows loaded under one firm that belong to another",
	}, []string{"resource"})

	// ValidationFailures counts rejected inputs per field
	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "legalcrm_validation_failures_total",
		Help: "Total number of rejected inputs",
	}, []string{"field"})

	// DuplicateCaseNumbers counts case saves that reuse an existing number
	DuplicateCaseNumbers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "legalcrm_duplicate_case_numbers_total",
		Help: "Case saves whose number is already used in the firm",
	})

	// RemindersSent counts reminder emails per outcome
	RemindersSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "legalcrm_reminders_sent_total",
		Help: "Reminder emails processed by the scheduler",
	}, []string{"outcome"})

	// InvoiceTotals tracks invoice totals as they are issued
	InvoiceTotals = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "legalcrm_invoice_total_amount",
		Help:    "Invoice totals at creation",
		Buckets: []float64{100, 500, 1000, 2500, 5000, 10000, 25000, 50000, 100000},
	})

	// RateLimited counts requests rejected by a rate limit policy
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "legalcrm_rate_limited_total",
		Help: "Requests rejected with 429 per policy",
	}, []string{"policy"})

	// HTTPRequests counts API requests by route and status
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "legalcrm_http_requests_total",
		Help: "HTTP requests served",
	}, []string{"method", "route", "status"})

	// HTTPDuration tracks API latency by route
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "legalcrm_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// RecordMutation increments the mutation counter
func RecordMutation(resource, action string) {
	TenantMutations.WithLabelValues(resource, action).Inc()
}

// RecordInvariantBreach increments the breach counter
func RecordInvariantBreach(resource string) {
	InvariantBreaches.WithLabelValues(resource).Inc()
}

// RecordRequest observes one served request
func RecordRequest(method, route string, status int, seconds float64) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(seconds)
}

// RecordValidationFailure increments the validation counter
func RecordValidationFailure(field string) {
	ValidationFailures.WithLabelValues(field).Inc()
}

// RecordRateLimited increments the rejection counter of a policy
func RecordRateLimited(policy string) {
	RateLimited.WithLabelValues(policy).Inc()
}
