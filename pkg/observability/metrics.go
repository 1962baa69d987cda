// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the catalog server.
package observability

import "github.com/prometheus/client_golang/prometheus"

// HTTPBuckets defines histogram buckets suited for CRUD request latencies,
// ranging from 5ms to 10s.
var HTTPBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bgm_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bgm_request_duration_seconds",
			Help:    "Request duration",
			Buckets: HTTPBuckets,
		},
		[]string{"method"},
	)

	// AuthDecisionsTotal counts access gate outcomes (exempt, allowed, rejected).
	AuthDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bgm_auth_decisions_total",
			Help: "Access gate decisions",
		},
		[]string{"decision"},
	)

	// LoginAttemptsTotal counts admin logins by outcome (success, invalid, error).
	LoginAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bgm_login_attempts_total",
			Help: "Admin login attempts",
		},
		[]string{"outcome"},
	)

	// LoginThrottledTotal counts login attempts rejected by the rate limiter.
	LoginThrottledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bgm_login_throttled_total",
			Help: "Throttled login attempts",
		},
	)

	// MailSentTotal counts enquiry mails by kind and status.
	MailSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bgm_mail_sent_total",
			Help: "Enquiry mails",
		},
		[]string{"kind", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		AuthDecisionsTotal,
		LoginAttemptsTotal,
		LoginThrottledTotal,
		MailSentTotal,
	)
}
