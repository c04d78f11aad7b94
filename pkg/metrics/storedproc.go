package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stored routine call paths.
const (
	PathPrimary  = "primary"
	PathFallback = "fallback"
)

// Call outcomes. Unavailable means the routine itself could not serve the call
// and the fallback took over; skipped means an open breaker bypassed it.
const (
	OutcomeSuccess     = "success"
	OutcomeError       = "error"
	OutcomeUnavailable = "unavailable"
	OutcomeSkipped     = "skipped"
)

// StoredProcMetrics records how report queries were served.
type StoredProcMetrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	breaker  *prometheus.GaugeVec
}

// NewStoredProcMetrics registers the stored routine metrics on reg. A nil
// registerer yields a no-op recorder.
func NewStoredProcMetrics(reg prometheus.Registerer) *StoredProcMetrics {
	if reg == nil {
		return &StoredProcMetrics{}
	}
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storedproc_calls_total",
		Help: "Report query executions by routine, path and outcome.",
	}, []string{"routine", "path", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storedproc_duration_seconds",
		Help:    "Duration of report query executions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"routine", "path"})
	breaker := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "storedproc_breaker_state",
		Help: "Breaker state per routine (0 closed, 1 half-open, 2 open).",
	}, []string{"routine"})
	reg.MustRegister(calls, duration, breaker)
	return &StoredProcMetrics{calls: calls, duration: duration, breaker: breaker}
}

// Observe records one execution of a path.
func (m *StoredProcMetrics) Observe(routine, path, outcome string, took time.Duration) {
	if m == nil || m.calls == nil {
		return
	}
	routine = normalizeLabel(routine)
	m.calls.WithLabelValues(routine, path, outcome).Inc()
	if outcome != OutcomeSkipped {
		m.duration.WithLabelValues(routine, path).Observe(took.Seconds())
	}
}

// SetBreakerState publishes the numeric breaker state for routine.
func (m *StoredProcMetrics) SetBreakerState(routine string, state int) {
	if m == nil || m.breaker == nil {
		return
	}
	m.breaker.WithLabelValues(normalizeLabel(routine)).Set(float64(state))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
