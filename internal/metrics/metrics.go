// Package metrics exposes Prometheus instrumentation for generation runs.
//
// Metrics owns a private registry so tests and multiple servers never collide
// on the global default. A nil *Metrics is valid and records nothing, so
// callers never need to guard instrumentation calls.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "reelsmith"

// Run outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics groups the collectors recorded by the pipeline and API.
type Metrics struct {
	registry      *prometheus.Registry
	stageDuration *prometheus.HistogramVec
	stageFailures *prometheus.CounterVec
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	pollAttempts  prometheus.Histogram
	runsInFlight  prometheus.Gauge
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each pipeline stage.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"stage", "outcome"}),
		stageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Stage failures by error kind.",
		}, []string{"stage", "kind"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed generation runs by outcome.",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of complete generation runs.",
			Buckets:   []float64{10, 30, 60, 120, 180, 300, 600},
		}),
		pollAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "video_poll_attempts",
			Help:      "Status checks issued per video job.",
			Buckets:   prometheus.LinearBuckets(1, 5, 7),
		}),
		runsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runs_in_flight",
			Help:      "Generation runs currently executing.",
		}),
	}
	m.registry.MustRegister(
		m.stageDuration,
		m.stageFailures,
		m.runs,
		m.runDuration,
		m.pollAttempts,
		m.runsInFlight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveStage records one stage execution. kind is empty on success.
func (m *Metrics) ObserveStage(stage string, elapsed time.Duration, kind string) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if kind != "" {
		outcome = OutcomeFailure
		m.stageFailures.WithLabelValues(stage, kind).Inc()
	}
	m.stageDuration.WithLabelValues(stage, outcome).Observe(elapsed.Seconds())
}

// RunStarted marks a run as in flight.
func (m *Metrics) RunStarted() {
	if m == nil {
		return
	}
	m.runsInFlight.Inc()
}

// RunFinished records a run outcome and clears it from the in-flight gauge.
func (m *Metrics) RunFinished(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runsInFlight.Dec()
	m.runs.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(elapsed.Seconds())
}

// ObservePollAttempts records how many status checks a video job needed.
func (m *Metrics) ObservePollAttempts(attempts int) {
	if m == nil {
		return
	}
	m.pollAttempts.Observe(float64(attempts))
}
