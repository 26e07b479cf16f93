package observability

import (
	"context"

	"github.com/aretw0/sortvis/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects step and run statistics of every session that uses its Hooks.
type Metrics struct {
	Steps       *prometheus.CounterVec
	Runs        *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec
	ActiveRuns  prometheus.Gauge
	Transitions *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg (skipped when reg is nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sortvis_steps_total",
				Help: "Total number of step primitives executed",
			},
			[]string{"algorithm", "kind"},
		),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sortvis_runs_total",
				Help: "Total number of finished runs",
			},
			[]string{"algorithm", "outcome"},
		),
		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sortvis_run_duration_seconds",
				Help:    "Wall-clock duration of finished runs, pauses excluded",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"algorithm"},
		),
		ActiveRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sortvis_active_runs",
			Help: "Number of runs started and not yet finished",
		}),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sortvis_status_transitions_total",
				Help: "Lifecycle transitions by target status",
			},
			[]string{"to"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Steps, m.Runs, m.RunDuration, m.ActiveRuns, m.Transitions)
	}
	return m
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(_ context.Context, e *domain.RunEvent) {
			m.ActiveRuns.Inc()
		},
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			m.Steps.WithLabelValues(string(e.Algorithm), string(e.Kind)).Inc()
		},
		OnStatusChange: func(_ context.Context, e *domain.StatusEvent) {
			m.Transitions.WithLabelValues(string(e.To)).Inc()
		},
		OnRunComplete: func(_ context.Context, e *domain.RunEvent) {
			m.ActiveRuns.Dec()
			outcome := "completed"
			if e.Cancelled {
				outcome = "cancelled"
			}
			m.Runs.WithLabelValues(string(e.Algorithm), outcome).Inc()
			if !e.Cancelled {
				m.RunDuration.WithLabelValues(string(e.Algorithm)).Observe(e.Elapsed.Seconds())
			}
		},
	}
}
