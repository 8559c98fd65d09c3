package observability

import (
	"context"
	"errors"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Plan outcome label values.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics holds the planner collectors.
type Metrics struct {
	plans      *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	nodes      *prometheus.HistogramVec
	backtracks *prometheus.CounterVec
	rejections *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		plans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_plans_total",
				Help: "Total number of planning calls by goal and outcome",
			},
			[]string{"goal", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "arbor_plan_duration_seconds",
				Help:    "Duration of successful searches",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"goal"},
		),
		nodes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "arbor_search_nodes",
				Help:    "Search nodes visited per planning call",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"goal"},
		),
		backtracks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_backtracks_total",
				Help: "Methods abandoned after their subtree failed",
			},
			[]string{"task"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_operator_rejections_total",
				Help: "Operators whose precondition did not hold",
			},
			[]string{"operator"},
		),
	}
	if reg != nil {
		for _, c := range m.Collectors() {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Collectors lists every collector, e.g. for a custom registry.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.plans, m.duration, m.nodes, m.backtracks, m.rejections}
}

// Hooks returns lifecycle hooks that count backtracks and rejections.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnOperator: func(_ context.Context, e *domain.OperatorEvent) {
			if !e.Applied {
				m.rejections.WithLabelValues(e.Operator).Inc()
			}
		},
		OnBacktrack: func(_ context.Context, e *domain.BacktrackEvent) {
			m.backtracks.WithLabelValues(e.Task).Inc()
		},
	}
}

// Observe records the outcome of one planning call.
func Observe[S any](m *Metrics, goal string, res *domain.Result[S], err error) {
	switch {
	case err != nil || res == nil:
		m.plans.WithLabelValues(goal, errorOutcome(err)).Inc()
		return
	case res.Found:
		m.plans.WithLabelValues(goal, OutcomeFound).Inc()
	default:
		m.plans.WithLabelValues(goal, OutcomeNotFound).Inc()
	}
	m.duration.WithLabelValues(goal).Observe(res.Stats.Duration.Seconds())
	m.nodes.WithLabelValues(goal).Observe(float64(res.Stats.Nodes))
}

// errorOutcome refines the error label so that limits and cancellations
// can be told apart from defects.
func errorOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrCancelled):
		return "cancelled"
	case errors.Is(err, domain.ErrDepthExceeded), errors.Is(err, domain.ErrBudgetExceeded):
		return "limit"
	case errors.Is(err, domain.ErrUnknownTask):
		return "unknown_task"
	case errors.Is(err, domain.ErrSignature):
		return "signature"
	default:
		return OutcomeError
	}
}
