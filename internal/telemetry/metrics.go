package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the Prometheus collectors this module emits. Unlike the
// teacher's monitoring.MetricsCollector, which registers every collector
// against the package-global prometheus.DefaultRegisterer via bare
// promauto.NewXxx calls, Metrics registers against a private
// *prometheus.Registry (promauto.With(registry).NewXxx) so constructing a
// second Metrics in the same process — a second Engine, or the next test
// in the same test binary — never panics on duplicate registration.
//
// A nil *Metrics is valid: every method is nil-safe and becomes a no-op,
// the same contract Logger offers.
type Metrics struct {
	Registry *prometheus.Registry

	systemRuns   *prometheus.CounterVec
	systemErrors *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
}

// NewMetrics builds a Metrics bound to a fresh, private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,
		systemRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ecs_system_runs_total",
			Help: "Number of times a system's Process method was invoked.",
		}, []string{"engine", "system"}),
		systemErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ecs_system_errors_total",
			Help: "Number of errors a system's Process method returned, by engine mode.",
		}, []string{"engine", "system", "mode"}),
		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ecs_engine_run_duration_seconds",
			Help:    "Duration of Engine.Run calls, by mode.",
			Buckets: prometheus.DefBuckets,
		}, []string{"engine", "mode"}),
	}
}

// CountSystemRun records one invocation of a system's Process method.
func (m *Metrics) CountSystemRun(engine, system string) {
	if m == nil {
		return
	}
	m.systemRuns.WithLabelValues(engine, system).Inc()
}

// CountSystemError records one error returned from a system's Process
// method under the given engine mode.
func (m *Metrics) CountSystemError(engine, system, mode string) {
	if m == nil {
		return
	}
	m.systemErrors.WithLabelValues(engine, system, mode).Inc()
}

// ObserveRunDuration records how long one Engine.Run call took, in
// seconds, under the given mode.
func (m *Metrics) ObserveRunDuration(engine, mode string, seconds float64) {
	if m == nil {
		return
	}
	m.runDuration.WithLabelValues(engine, mode).Observe(seconds)
}
