package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ContactSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Total number of contact submissions by pipeline outcome (count)",
		},
		[]string{"outcome"},
	)

	ContactPipelineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contact_pipeline_duration_ms",
			Help:    "Processing duration for the submission pipeline in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"outcome"},
	)

	RateLimitDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_rate_limit_decisions_total",
			Help: "Rate limiter decisions for the contact endpoint (count)",
		},
		[]string{"decision"},
	)

	SignatureChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_signature_checks_total",
			Help: "Signature verification results (count)",
		},
		[]string{"result"},
	)

	EmailDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_deliveries_total",
			Help: "Outbound email delivery attempts (count)",
		},
		[]string{"status"},
	)

	EmailDeliveryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "email_delivery_duration_ms",
			Help:    "Email delivery duration in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"status"},
	)

	SubmissionsStoredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submissions_stored_total",
			Help: "Submission persistence attempts (count)",
		},
		[]string{"status"},
	)

	WebhookDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_deliveries_total",
			Help: "Webhook delivery attempts after retries (count)",
		},
		[]string{"status"},
	)

	WebhookDeliveryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_delivery_duration_ms",
			Help:    "Webhook delivery duration including retries in milliseconds",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000, 30000, 60000},
		},
		[]string{"status"},
	)

	WebhookRetryAttemptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_retry_attempts_total",
			Help: "Total number of webhook retry attempts (count)",
		},
	)

	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submission_events_published_total",
			Help: "Submission events published to the broker (count)",
		},
		[]string{"status"},
	)

	AdminRateLimitTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_rate_limit_requests_total",
			Help: "Admin API rate limit decisions (count)",
		},
		[]string{"status"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Requests through circuit breakers (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Failed requests through circuit breakers (count)",
		},
		[]string{"name"},
	)
)

func RegisterContactMetrics() {
	prometheus.MustRegister(
		ContactSubmissionsTotal,
		ContactPipelineDuration,
		RateLimitDecisionsTotal,
		SignatureChecksTotal,
		EmailDeliveriesTotal,
		EmailDeliveryDuration,
		SubmissionsStoredTotal,
		WebhookDeliveriesTotal,
		WebhookDeliveryDuration,
		WebhookRetryAttemptsTotal,
		EventsPublishedTotal,
	)
}

func RegisterAdminMetrics() {
	prometheus.MustRegister(
		AdminRateLimitTotal,
		WebhookDeliveriesTotal,
		WebhookDeliveryDuration,
		WebhookRetryAttemptsTotal,
	)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerFailures,
	)
}

func ObservePipelineDuration(d time.Duration, outcome string) {
	ContactPipelineDuration.WithLabelValues(outcome).Observe(float64(d.Milliseconds()))
}

func ObserveEmailDelivery(d time.Duration, status string) {
	EmailDeliveriesTotal.WithLabelValues(status).Inc()
	EmailDeliveryDuration.WithLabelValues(status).Observe(float64(d.Milliseconds()))
}

func ObserveWebhookDelivery(d time.Duration, status string) {
	WebhookDeliveriesTotal.WithLabelValues(status).Inc()
	WebhookDeliveryDuration.WithLabelValues(status).Observe(float64(d.Milliseconds()))
}
