package observability

import (
	"context"

	"github.com/aretw0/mln/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mln"

// Metrics collects compilation and inference metrics.
// It implements prometheus.Collector.
type Metrics struct {
	compilations  *prometheus.CounterVec
	inferences    *prometheus.CounterVec
	inferDuration *prometheus.HistogramVec
	resultAtoms   *prometheus.GaugeVec
	methodChanges prometheus.Counter
}

// NewMetrics creates unregistered metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		compilations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compilations_total",
				Help:      "Artifact rebuilds by artifact kind and outcome.",
			},
			[]string{"artifact", "outcome"},
		),
		inferences: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "inferences_total",
				Help:      "Inference runs by method and outcome.",
			},
			[]string{"method", "outcome"},
		),
		inferDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "inference_duration_seconds",
				Help:      "Duration of inference runs, compilation excluded.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"method"},
		),
		resultAtoms: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "result_atoms",
				Help:      "Number of ground atoms in the last successful result.",
			},
			[]string{"session_id"},
		),
		methodChanges: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "method_instantiations_total",
				Help:      "Engine-side method objects created.",
			},
		),
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.compilations.Describe(ch)
	m.inferences.Describe(ch)
	m.inferDuration.Describe(ch)
	m.resultAtoms.Describe(ch)
	m.methodChanges.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.compilations.Collect(ch)
	m.inferences.Collect(ch)
	m.inferDuration.Collect(ch)
	m.resultAtoms.Collect(ch)
	m.methodChanges.Collect(ch)
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCompile: func(_ context.Context, e *domain.CompileEvent) {
			m.compilations.WithLabelValues(string(e.Artifact), outcome(e.Err)).Inc()
		},
		OnInfer: func(_ context.Context, e *domain.InferEvent) {
			m.inferences.WithLabelValues(e.Method, outcome(e.Err)).Inc()
			m.inferDuration.WithLabelValues(e.Method).Observe(e.Duration.Seconds())
			if e.Err == nil {
				m.resultAtoms.WithLabelValues(e.SessionID).Set(float64(e.Atoms))
			}
		},
		OnMethodChange: func(_ context.Context, _ *domain.MethodEvent) {
			m.methodChanges.Inc()
		},
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
