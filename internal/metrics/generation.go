package metrics

import "github.com/prometheus/client_golang/prometheus"

// Text-generation Prometheus metrics.
var (
	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "answerdex",
			Name:      "generation_requests_total",
			Help:      "Total number of text generation requests",
		},
		[]string{"model", "purpose", "status"},
	)

	GenerationRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "answerdex",
			Name:      "generation_request_duration_seconds",
			Help:      "Text generation request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		},
		[]string{"model", "purpose"},
	)

	RetrievalBranchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "answerdex",
			Name:      "retrieval_branch_total",
			Help:      "Retrieval branch outcomes per source",
		},
		[]string{"source", "status"},
	)

	ReferenceRepairRounds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "answerdex",
			Name:      "reference_repair_rounds",
			Help:      "Repair rounds needed to complete the reference selection",
			Buckets:   []float64{0, 1, 2},
		},
	)
)

var genMetricsRegistered bool

// RegisterGenerationMetrics registers generation and retrieval metrics. Must be called once from main.
func RegisterGenerationMetrics() {
	if genMetricsRegistered {
		return
	}
	prometheus.MustRegister(GenerationRequestsTotal)
	prometheus.MustRegister(GenerationRequestDuration)
	prometheus.MustRegister(RetrievalBranchTotal)
	prometheus.MustRegister(ReferenceRepairRounds)
	genMetricsRegistered = true
}
