package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the recommendation pipeline collectors.
type Metrics struct {
	Recommendations     *prometheus.CounterVec
	GenerationDuration  prometheus.Histogram
	RetrievedCandidates prometheus.Histogram
	RankedCandidates    prometheus.Histogram
}

// NewMetrics registers the collectors on reg; pass prometheus.NewRegistry()
// in tests to avoid clashing with the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Recommendations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mealrec",
			Name:      "recommendations_total",
			Help:      "Recommendation requests by outcome.",
		}, []string{"outcome"}),

		GenerationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mealrec",
			Name:      "generation_duration_seconds",
			Help:      "Latency of the text generation call.",
			Buckets:   prometheus.DefBuckets,
		}),

		RetrievedCandidates: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mealrec",
			Name:      "retrieved_candidates",
			Help:      "Candidates returned by semantic retrieval.",
			Buckets:   []float64{0, 1, 5, 10, 20, 50},
		}),

		RankedCandidates: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mealrec",
			Name:      "ranked_candidates",
			Help:      "Candidates left after filtering and ranking.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 10},
		}),
	}
}

func (m *Metrics) outcome(o string) {
	if m == nil {
		return
	}
	m.Recommendations.WithLabelValues(o).Inc()
}
