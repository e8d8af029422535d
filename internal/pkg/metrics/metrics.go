package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymadmin_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymadmin_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gymadmin_http_active_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Auth metrics
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymadmin_login_attempts_total",
			Help: "Login attempts by outcome",
		},
		[]string{"outcome"}, // success, invalid, disabled, throttled
	)

	// Domain metrics
	EnrollmentTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymadmin_enrollment_transitions_total",
			Help: "Enrollment status changes by target status",
		},
		[]string{"status"},
	)
)

// RecordAPIRequest records one finished HTTP request
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}

// RecordLogin counts a login attempt outcome
func RecordLogin(outcome string) {
	LoginAttempts.WithLabelValues(outcome).Inc()
}

// RecordEnrollmentTransition counts an enrollment entering status
func RecordEnrollmentTransition(status string) {
	EnrollmentTransitions.WithLabelValues(status).Inc()
}
