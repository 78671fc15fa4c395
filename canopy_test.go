package canopy_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/pkg/build"
	"github.com/aretw0/canopy/pkg/config"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T, defs ...*domain.Definition) *config.Registry {
	t.Helper()
	r := config.NewRegistry()
	for _, def := range defs {
		require.NoError(t, r.Add(def, "test", config.AddOptions{}))
	}
	return r
}

func TestTree_SequenceEndToEnd(t *testing.T) {
	r := newRegistry(t,
		&domain.Definition{Name: "root", Impl: "sequence", Children: []string{"set-x", "check-x"}},
		&domain.Definition{Name: "set-x", Impl: "assign", Params: map[string]any{
			"assignments": map[string]any{"x": 5},
		}},
		&domain.Definition{Name: "check-x", Impl: "condition", Params: map[string]any{
			"conditions": map[string]any{
				"x": []any{map[string]any{"op": "gt", "value": 3}},
			},
		}},
	)

	tree, err := canopy.New(r)
	require.NoError(t, err)
	require.NoError(t, tree.Init("root"))

	state := domain.NewState()
	status, err := tree.Execute(state)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusSuccess, status)
	assert.Equal(t, 5, state.Vars()["x"])
	assert.Empty(t, state.Positions(), "non-persistent tree stores no statuses")
}

// stepLeaf returns RUNNING a fixed number of times before SUCCESS.
type stepLeaf struct {
	node.Leaf
	remaining int
}

func (n *stepLeaf) Execute(*domain.State) (domain.Status, error) {
	if n.remaining > 0 {
		n.remaining--
		return domain.StatusRunning, nil
	}
	return domain.StatusSuccess, nil
}

func stepCatalog(t *testing.T, passes int) *build.Catalog {
	t.Helper()
	c := build.Default()
	require.NoError(t, c.Register("step", func(def *domain.Definition, _ []*node.Wrapper) (node.Node, error) {
		return &stepLeaf{Leaf: node.NewAdaptableLeaf(def.Name), remaining: passes}, nil
	}))
	return c
}

func TestTree_PersistentSequenceEndToEnd(t *testing.T) {
	r := newRegistry(t,
		&domain.Definition{Name: "root", Impl: "persistent_sequence", Children: []string{"step", "done"}},
		&domain.Definition{Name: "step", Impl: "step"},
		&domain.Definition{Name: "done", Impl: "assign", Params: map[string]any{
			"assignments": map[string]any{"done": true},
		}},
	)

	tree, err := canopy.New(r, canopy.WithCatalog(stepCatalog(t, 1)))
	require.NoError(t, err)
	require.NoError(t, tree.Init("root"))

	state := domain.NewState()

	status, err := tree.Execute(state)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, status)
	assert.Equal(t, domain.StatusRunning, state.GetStatus("0.0"), "progress persisted at the first child")
	assert.Nil(t, state.Vars()["done"], "second child not reached yet")

	status, err = tree.Execute(state)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, status)
	assert.Equal(t, true, state.Vars()["done"])
	assert.Empty(t, state.Positions(), "terminal status resets every descendant")
}

// gateLeaf suspends until its gate channel is closed.
type gateLeaf struct {
	node.Leaf
	gate <-chan struct{}
}

func (n *gateLeaf) ExecuteContext(ctx context.Context, _ *domain.State) (domain.Status, error) {
	select {
	case <-n.gate:
		return domain.StatusSuccess, nil
	case <-ctx.Done():
		return domain.StatusFailed, ctx.Err()
	}
}

func TestTree_CooperativeEndToEnd(t *testing.T) {
	gate := make(chan struct{})
	catalog := build.Default()
	require.NoError(t, catalog.Register("gate", func(def *domain.Definition, _ []*node.Wrapper) (node.Node, error) {
		return &gateLeaf{Leaf: node.NewLeaf(def.Name), gate: gate}, nil
	}))

	r := newRegistry(t,
		&domain.Definition{Name: "root", Impl: "sequence", Children: []string{"wait", "done"}},
		&domain.Definition{Name: "wait", Impl: "gate"},
		&domain.Definition{Name: "done", Impl: "assign", Params: map[string]any{
			"assignments": map[string]any{"done": true},
		}},
	)

	tree, err := canopy.New(r, canopy.WithCooperative(), canopy.WithCatalog(catalog))
	require.NoError(t, err)
	require.NoError(t, tree.Init("root"))

	_, err = tree.Execute(domain.NewState())
	require.Error(t, err, "direct execution is rejected on a cooperative tree")

	state := domain.NewState()
	done := make(chan struct{})
	var status domain.Status
	go func() {
		defer close(done)
		status, err = tree.ExecuteContext(context.Background(), state)
	}()

	select {
	case <-done:
		t.Fatal("pass finished before the gate opened")
	case <-time.After(20 * time.Millisecond):
	}

	close(gate)
	<-done
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, status)
	assert.Equal(t, true, state.Vars()["done"], "the pass resumed past the suspended leaf")
}

func TestTree_CooperativeRejectsPlainLeafAtInit(t *testing.T) {
	catalog := build.Default()
	require.NoError(t, catalog.Register("plain", func(def *domain.Definition, _ []*node.Wrapper) (node.Node, error) {
		return &stepLeaf{Leaf: node.NewLeaf(def.Name)}, nil
	}))

	r := newRegistry(t, &domain.Definition{Name: "root", Impl: "plain"})

	tree, err := canopy.New(r, canopy.WithCooperative(), canopy.WithCatalog(catalog))
	require.NoError(t, err)

	err = tree.Init("root")
	require.Error(t, err)
	assert.ErrorIs(t, err, node.ErrModeUnsupported)
}

func TestTree_ExecuteBeforeInit(t *testing.T) {
	tree, err := canopy.New(config.NewRegistry())
	require.NoError(t, err)

	_, err = tree.Execute(domain.NewState())
	assert.Error(t, err)
	_, err = tree.ExecuteContext(context.Background(), domain.NewState())
	assert.Error(t, err)
}

func TestRunner(t *testing.T) {
	r := newRegistry(t, &domain.Definition{Name: "root", Impl: "step"})

	tree, err := canopy.New(r, canopy.WithCatalog(stepCatalog(t, 2)))
	require.NoError(t, err)
	require.NoError(t, tree.Init("root"))

	runner := &canopy.Runner{MaxPasses: 10}
	status, passes, err := runner.Run(context.Background(), tree, domain.NewState())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, status)
	assert.Equal(t, 3, passes)
}

func TestRunner_MaxPasses(t *testing.T) {
	r := newRegistry(t, &domain.Definition{Name: "root", Impl: "step"})

	tree, err := canopy.New(r, canopy.WithCatalog(stepCatalog(t, 100)))
	require.NoError(t, err)
	require.NoError(t, tree.Init("root"))

	runner := &canopy.Runner{MaxPasses: 3}
	status, passes, err := runner.Run(context.Background(), tree, domain.NewState())
	require.Error(t, err)
	assert.Equal(t, domain.StatusRunning, status)
	assert.Equal(t, 3, passes)
}
