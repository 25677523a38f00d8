package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	solveTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trigtutor_solve_total",
		Help: "Answered questions by method and source",
	}, []string{"method", "source"})

	solveLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trigtutor_solve_latency_ms",
		Help:    "Latency of Solve calls in milliseconds",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 200, 400, 800, 1600},
	}, []string{"source"})

	templateConfidence = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trigtutor_template_confidence",
		Help:    "Confidence of the selected template candidate",
		Buckets: []float64{0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95},
	}, []string{"category"})

	retrievalCandidates = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "trigtutor_retrieval_candidates",
		Help:    "Number of candidates returned by a retrieval search",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})

	retrievalTop1 = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "trigtutor_retrieval_top1",
		Help:    "Top1 similarity score distribution",
		Buckets: []float64{0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.85, 0.9, 0.95, 0.99, 1.0},
	})

	renderLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trigtutor_graph_render_latency_ms",
		Help:    "Latency of graph rendering in milliseconds",
		Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800},
	}, []string{"kind"})

	knowledgeEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "trigtutor_knowledge_entries",
		Help: "Entries in the active knowledge base",
	})
)

func ensureRegistered() {
	once.Do(func() {
		prometheus.MustRegister(Collectors()...)
	})
}

// ObserveSolve records one answered question.
func ObserveSolve(method, source string, start time.Time) {
	ensureRegistered()
	solveTotal.WithLabelValues(method, source).Inc()
	solveLatency.WithLabelValues(source).Observe(float64(time.Since(start).Milliseconds()))
}

// ObserveTemplate records the confidence of the template that answered.
func ObserveTemplate(category string, confidence float64) {
	ensureRegistered()
	templateConfidence.WithLabelValues(category).Observe(confidence)
}

// ObserveRetrieval records the candidate count and the best score of a search.
func ObserveRetrieval(results int, top1 float64) {
	ensureRegistered()
	retrievalCandidates.Observe(float64(results))
	if results > 0 && top1 >= 0 {
		retrievalTop1.Observe(top1)
	}
}

// ObserveRender records graph rendering latency.
func ObserveRender(kind string, start time.Time) {
	ensureRegistered()
	renderLatency.WithLabelValues(kind).Observe(float64(time.Since(start).Milliseconds()))
}

// SetKnowledgeEntries publishes the size of the active knowledge base.
func SetKnowledgeEntries(n int) {
	ensureRegistered()
	knowledgeEntries.Set(float64(n))
}

// Collectors exposes all collectors for registration with a custom registry.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		solveTotal, solveLatency, templateConfidence, retrievalCandidates,
		retrievalTop1, renderLatency, knowledgeEntries,
	}
}
