// Package metrics exposes Prometheus collectors for the reply pipeline.
package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing,
// which keeps wiring optional in tests and CLI commands.
type Metrics struct {
	registry           *prometheus.Registry
	generationOutcomes *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	degradedSections   *prometheus.CounterVec
	chunksIngested     prometheus.Counter
	sideEffectFailures *prometheus.CounterVec
}

// New registers every collector on a fresh registry.
func New(namespace string) *Metrics {
	ns := fmtFixer(namespace)
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		generationOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "generation_outcomes_total",
			Help:      "Replies produced, by outcome (primary, fallback, apology, failed, disabled).",
		}, []string{"outcome"}),
		generationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "generation_duration_seconds",
			Help:      "Latency of chat completion calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		}, []string{"model"}),
		degradedSections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "degraded_sections_total",
			Help:      "Prompt sections omitted because their source failed.",
		}, []string{"section"}),
		chunksIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "knowledge_chunks_ingested_total",
			Help:      "Knowledge chunks embedded and stored.",
		}),
		sideEffectFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "side_effect_failures_total",
			Help:      "Background reply side effects that failed.",
		}, []string{"effect"}),
	}
	registry.MustRegister(m.generationOutcomes, m.generationDuration, m.degradedSections, m.chunksIngested, m.sideEffectFailures)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.InstrumentMetricHandler(m.registry, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

func (m *Metrics) GenerationOutcome(outcome string) {
	if m == nil {
		return
	}
	m.generationOutcomes.WithLabelValues(outcome).Inc()
}

// GenerationTimer starts a timer for one completion call on model.
func (m *Metrics) GenerationTimer(model string) func() {
	if m == nil {
		return func() {}
	}
	timer := prometheus.NewTimer(m.generationDuration.WithLabelValues(model))
	return func() { timer.ObserveDuration() }
}

func (m *Metrics) SectionDegraded(section string) {
	if m == nil {
		return
	}
	m.degradedSections.WithLabelValues(section).Inc()
}

func (m *Metrics) ChunksIngested(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.chunksIngested.Add(float64(n))
}

func (m *Metrics) SideEffectFailed(effect string) {
	if m == nil {
		return
	}
	m.sideEffectFailures.WithLabelValues(effect).Inc()
}

func fmtFixer(in string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(in)
}
