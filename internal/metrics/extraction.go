package metrics

import "github.com/prometheus/client_golang/prometheus"

// Face extraction Prometheus metrics.
var (
	ExtractionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facegate",
			Name:      "extraction_requests_total",
			Help:      "Total number of face extraction requests",
		},
		[]string{"model", "status"},
	)

	ExtractionRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "facegate",
			Name:      "extraction_request_duration_seconds",
			Help:      "Face extraction request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)

	ExtractionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facegate",
			Name:      "extraction_errors_total",
			Help:      "Total face extraction errors",
		},
		[]string{"model", "error_type"},
	)

	VerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facegate",
			Name:      "verifications_total",
			Help:      "Verification decisions by outcome",
		},
		[]string{"outcome", "confidence"},
	)

	EnrolledIdentities = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "facegate",
			Name:      "enrolled_identities",
			Help:      "Number of enrolled identities in the index",
		},
	)
)

var extMetricsRegistered bool

// RegisterExtractionMetrics registers Prometheus extraction metrics. Must be called once from main.
func RegisterExtractionMetrics() {
	if extMetricsRegistered {
		return
	}
	prometheus.MustRegister(ExtractionRequestsTotal)
	prometheus.MustRegister(ExtractionRequestDuration)
	prometheus.MustRegister(ExtractionErrorsTotal)
	prometheus.MustRegister(VerificationsTotal)
	prometheus.MustRegister(EnrolledIdentities)
	extMetricsRegistered = true
}
