package build_test

import (
	"testing"

	"github.com/aretw0/canopy/pkg/build"
	"github.com/aretw0/canopy/pkg/config"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addAll(t *testing.T, r *config.Registry, defs ...*domain.Definition) {
	t.Helper()
	for _, def := range defs {
		require.NoError(t, r.Add(def, "test", config.AddOptions{}))
	}
	require.NoError(t, r.Resolve())
}

func children(t *testing.T, w *node.Wrapper) []*node.Wrapper {
	t.Helper()
	c, ok := w.Node().(interface{ Children() []*node.Wrapper })
	require.True(t, ok, "%s is not a controller", w.Node().Name())
	return c.Children()
}

func TestBuild_PositionIDs(t *testing.T) {
	r := config.NewRegistry()
	addAll(t, r,
		&domain.Definition{Name: "root", Impl: "sequence", Children: []string{"set", "branch"}},
		&domain.Definition{Name: "set", Impl: "assign", Params: map[string]any{
			"assignments": map[string]any{"x": 1},
		}},
		&domain.Definition{Name: "branch", Impl: "selector", Children: []string{"check"}},
		&domain.Definition{Name: "check", Impl: "defined", Params: map[string]any{
			"variables": []any{"x"},
		}},
	)

	root, err := build.NewBuilder(build.Default(), node.WrapOptions{}).Build(r, "root")
	require.NoError(t, err)

	assert.Equal(t, "0", root.ID())
	kids := children(t, root)
	require.Len(t, kids, 2)
	assert.Equal(t, "0.0", kids[0].ID())
	assert.Equal(t, "0.1", kids[1].ID())
	assert.Equal(t, "0.1.0", children(t, kids[1])[0].ID())
}

func TestBuild_SharedLeafInstance(t *testing.T) {
	// The same name referenced twice yields one node instance wrapped at
	// two distinct positions.
	r := config.NewRegistry()
	addAll(t, r,
		&domain.Definition{Name: "root", Impl: "sequence", Children: []string{"set", "set"}},
		&domain.Definition{Name: "set", Impl: "assign", Params: map[string]any{
			"assignments": map[string]any{"x": 1},
		}},
	)

	root, err := build.NewBuilder(build.Default(), node.WrapOptions{}).Build(r, "root")
	require.NoError(t, err)

	kids := children(t, root)
	require.Len(t, kids, 2)
	assert.Same(t, kids[0].Node(), kids[1].Node())
	assert.NotEqual(t, kids[0].ID(), kids[1].ID())
}

func TestBuild_SharedControllerRejected(t *testing.T) {
	r := config.NewRegistry()
	addAll(t, r,
		&domain.Definition{Name: "root", Impl: "sequence", Children: []string{"sub", "sub"}},
		&domain.Definition{Name: "sub", Impl: "selector", Children: []string{"set"}},
		&domain.Definition{Name: "set", Impl: "assign", Params: map[string]any{
			"assignments": map[string]any{"x": 1},
		}},
	)

	_, err := build.NewBuilder(build.Default(), node.WrapOptions{}).Build(r, "root")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shared across tree positions")
	assert.Contains(t, err.Error(), "sub")
}

func TestBuild_UnknownDefinition(t *testing.T) {
	r := config.NewRegistry()
	addAll(t, r,
		&domain.Definition{Name: "root", Impl: "sequence", Children: []string{"ghost"}},
	)

	_, err := build.NewBuilder(build.Default(), node.WrapOptions{}).Build(r, "root")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestBuild_UnknownImplementationType(t *testing.T) {
	r := config.NewRegistry()
	addAll(t, r, &domain.Definition{Name: "root", Impl: "teleport"})

	_, err := build.NewBuilder(build.Default(), node.WrapOptions{}).Build(r, "root")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "teleport")
}

func TestBuild_UnresolvedReference(t *testing.T) {
	r := config.NewRegistry()
	require.NoError(t, r.Add(&domain.Definition{Name: "root", Ref: "base"}, "t", config.AddOptions{}))
	require.NoError(t, r.Add(&domain.Definition{Name: "base", Impl: "assign"}, "t", config.AddOptions{}))

	// Build without Resolve: the root still carries its reference.
	_, err := build.NewBuilder(build.Default(), node.WrapOptions{}).Build(r, "root")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not resolved")
}

// plainLeaf only implements the synchronous execution interface and does
// not declare itself adaptable.
type plainLeaf struct {
	node.Leaf
}

func (plainLeaf) Execute(*domain.State) (domain.Status, error) {
	return domain.StatusSuccess, nil
}

func TestBuild_CooperativeRejectsPlainLeaf(t *testing.T) {
	catalog := build.Default()
	require.NoError(t, catalog.Register("plain", func(def *domain.Definition, _ []*node.Wrapper) (node.Node, error) {
		return plainLeaf{Leaf: node.NewLeaf(def.Name)}, nil
	}))

	r := config.NewRegistry()
	addAll(t, r, &domain.Definition{Name: "root", Impl: "plain"})

	_, err := build.NewBuilder(catalog, node.WrapOptions{Mode: node.ModeCooperative}).Build(r, "root")
	require.Error(t, err)
	assert.ErrorIs(t, err, node.ErrModeUnsupported)

	// The same definition builds fine in direct mode.
	_, err = build.NewBuilder(catalog, node.WrapOptions{}).Build(r, "root")
	assert.NoError(t, err)
}
