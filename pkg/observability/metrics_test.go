package observability

import (
	"testing"
	"time"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountsExecutions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	hooks := m.Hooks()
	require.NotNil(t, hooks.OnNodeExecute)

	hooks.OnNodeExecute(&domain.NodeEvent{
		Position: "0.1", Node: "check-x", Status: domain.StatusSuccess, Elapsed: 3 * time.Millisecond,
	})
	hooks.OnNodeExecute(&domain.NodeEvent{
		Position: "0.1", Node: "check-x", Status: domain.StatusSuccess, Elapsed: 2 * time.Millisecond,
	})
	hooks.OnNodeExecute(&domain.NodeEvent{
		Position: "0.2", Node: "wait", Status: domain.StatusRunning, Elapsed: time.Millisecond,
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.executions.WithLabelValues("check-x", "SUCCESS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.executions.WithLabelValues("wait", "RUNNING")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "canopy_node_executions_total")
	assert.Contains(t, names, "canopy_node_execution_seconds")
}
