package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "vendorscout"

// Sourcing pipeline metrics.
var (
	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sourcing_stage_duration_seconds",
			Help:      "Duration of each sourcing pipeline stage in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"category", "stage"},
	)

	SourcingOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sourcing_outcomes_total",
			Help:      "Sourcing requests by terminal outcome (done, no_match, failed)",
		},
		[]string{"category", "outcome"},
	)

	DegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sourcing_degraded_total",
			Help:      "Sourcing requests ranked without a preference embedding",
		},
		[]string{"category", "reason"},
	)

	MissingEmbeddingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sourcing_missing_embeddings_total",
			Help:      "Candidates scored with the neutral preference score for lack of an embedding",
		},
		[]string{"category"},
	)

	CandidateSetSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sourcing_candidate_set_size",
			Help:      "Number of vendors passing hard constraints per request",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 200},
		},
		[]string{"category"},
	)
)

var sourcingMetricsRegistered bool

// RegisterSourcingMetrics registers sourcing metrics. Must be called once from main.
func RegisterSourcingMetrics() {
	if sourcingMetricsRegistered {
		return
	}
	prometheus.MustRegister(StageDuration)
	prometheus.MustRegister(SourcingOutcomesTotal)
	prometheus.MustRegister(DegradedTotal)
	prometheus.MustRegister(MissingEmbeddingsTotal)
	prometheus.MustRegister(CandidateSetSize)
	sourcingMetricsRegistered = true
}
