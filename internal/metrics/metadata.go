package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metadata outcome label values.
const (
	OutcomeSuccess     = "success"
	OutcomeNotFound    = "not_found"
	OutcomeDisabled    = "disabled"
	OutcomeRateLimited = "rate_limited"
	OutcomeCircuitOpen = "circuit_open"
	OutcomeTransport   = "transport_error"
	OutcomeHTTPStatus  = "http_status"
	OutcomeMalformed   = "malformed"
	OutcomeCanceled    = "canceled"
)

// Metadata provider Prometheus metrics.
var (
	MetadataRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinematch",
			Name:      "metadata_requests_total",
			Help:      "Metadata lookups by outcome",
		},
		[]string{"provider", "outcome"},
	)

	MetadataRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cinematch",
			Name:      "metadata_request_duration_seconds",
			Help:      "Upstream metadata request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "cinematch",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

var metadataMetricsRegistered bool

// RegisterMetadataMetrics registers metadata provider metrics. Must be called once from main.
func RegisterMetadataMetrics() {
	if metadataMetricsRegistered {
		return
	}
	prometheus.MustRegister(MetadataRequestsTotal)
	prometheus.MustRegister(MetadataRequestDuration)
	prometheus.MustRegister(CircuitBreakerState)
	metadataMetricsRegistered = true
}
