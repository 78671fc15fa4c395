// Package observability exports execution metrics through the node
// execution hook, keeping the engine core free of metric types.
package observability

import (
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects per-node execution counters and durations.
type Metrics struct {
	executions *prometheus.CounterVec
	durations  *prometheus.HistogramVec
}

// NewMetrics registers the collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		executions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "canopy",
			Name:      "node_executions_total",
			Help:      "Node executions by node name and returned status.",
		}, []string{"node", "status"}),
		durations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "canopy",
			Name:      "node_execution_seconds",
			Help:      "Node execution duration by node name.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"node"}),
	}
}

// Hooks returns execution hooks feeding these collectors. Pass them to
// the tree via canopy.WithHooks.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnNodeExecute: func(ev *domain.NodeEvent) {
			m.executions.WithLabelValues(ev.Node, ev.Status.String()).Inc()
			m.durations.WithLabelValues(ev.Node).Observe(ev.Elapsed.Seconds())
		},
	}
}
