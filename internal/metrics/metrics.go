package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GatewayRequestsTotal tracks the number of outbound calls to the gateway.
	GatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "braintree_api_requests_total",
			Help: "Total number of gateway API requests made (by method and status).",
		},
		[]string{"method", "status"},
	)

	// GatewayRequestDuration measures the duration of outbound gateway calls.
	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "braintree_api_request_duration_seconds",
			Help:    "Duration of gateway API requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"method"},
	)

	// SSLVerificationFailures counts rejected server certificate chains by verify code.
	SSLVerificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "braintree_ssl_verification_failures_total",
			Help: "Number of gateway certificate chains rejected (by verify result code).",
		},
		[]string{"code"},
	)
)

// IncGatewayRequest increments the gateway request counter.
// status is the HTTP status code, or "error" when no response was received.
func IncGatewayRequest(method, status string) {
	GatewayRequestsTotal.WithLabelValues(method, status).Inc()
}

// IncSSLVerificationFailure increments the certificate rejection counter.
func IncSSLVerificationFailure(code string) {
	SSLVerificationFailures.WithLabelValues(code).Inc()
}

// ObserveDuration records elapsed time since start into a HistogramVec or SummaryVec.
func ObserveDuration(v any, start time.Time, labels ...string) {
	duration := time.Since(start).Seconds()
	switch metric := v.(type) {
	case *prometheus.HistogramVec:
		metric.WithLabelValues(labels...).Observe(duration)
	case *prometheus.SummaryVec:
		metric.WithLabelValues(labels...).Observe(duration)
	}
}
