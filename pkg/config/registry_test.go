package config_test

import (
	"testing"

	"github.com/aretw0/canopy/pkg/config"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AddValidation(t *testing.T) {
	r := config.NewRegistry()

	err := r.Add(&domain.Definition{Name: "both", Impl: "assign", Ref: "base"}, "t1", config.AddOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both")

	err = r.Add(&domain.Definition{Name: "neither"}, "t1", config.AddOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither")

	err = r.Add(&domain.Definition{Impl: "assign"}, "t1", config.AddOptions{})
	assert.Error(t, err, "empty name must be rejected")
}

func TestRegistry_DuplicateNames(t *testing.T) {
	r := config.NewRegistry()
	require.NoError(t, r.Add(&domain.Definition{Name: "a", Impl: "assign"}, "first.yaml", config.AddOptions{}))

	err := r.Add(&domain.Definition{Name: "a", Impl: "assign"}, "second.yaml", config.AddOptions{})
	require.Error(t, err)
	// The error names both sources.
	assert.Contains(t, err.Error(), "first.yaml")
	assert.Contains(t, err.Error(), "second.yaml")

	// Explicit update replaces.
	require.NoError(t, r.Add(&domain.Definition{Name: "a", Impl: "clear"}, "second.yaml", config.AddOptions{Update: true}))
	assert.Equal(t, "clear", r.Get("a").Impl)
	assert.Equal(t, "second.yaml", r.Get("a").Source)
}

func TestRegistry_ResolveChain(t *testing.T) {
	// A -> B -> C, the referencing definition's fields win.
	r := config.NewRegistry()
	require.NoError(t, r.Add(&domain.Definition{
		Name: "c", Impl: "condition",
		Params: map[string]any{"x": 1, "y": 2, "z": 3},
	}, "base.yaml", config.AddOptions{}))
	require.NoError(t, r.Add(&domain.Definition{
		Name: "b", Ref: "c",
		Params: map[string]any{"y": 20},
	}, "mid.yaml", config.AddOptions{}))
	require.NoError(t, r.Add(&domain.Definition{
		Name: "a", Ref: "b",
		Params: map[string]any{"x": 100},
	}, "top.yaml", config.AddOptions{}))

	require.NoError(t, r.Resolve())

	a := r.Get("a")
	assert.Equal(t, "condition", a.Impl)
	assert.Empty(t, a.Ref, "no residual reference after resolution")
	assert.Equal(t, 100, a.Params["x"], "a's own field wins")
	assert.Equal(t, 20, a.Params["y"], "b's field wins over c's")
	assert.Equal(t, 3, a.Params["z"], "c's field survives")

	b := r.Get("b")
	assert.Equal(t, "condition", b.Impl)
	assert.Equal(t, 20, b.Params["y"])
	assert.Equal(t, 1, b.Params["x"])
}

func TestRegistry_ResolveChildrenAndInfo(t *testing.T) {
	r := config.NewRegistry()
	require.NoError(t, r.Add(&domain.Definition{
		Name: "base-seq", Impl: "sequence",
		Children: []string{"x", "y"},
		Info:     "base sequence",
	}, "base.yaml", config.AddOptions{}))
	require.NoError(t, r.Add(&domain.Definition{
		Name: "special-seq", Ref: "base-seq",
	}, "top.yaml", config.AddOptions{}))

	require.NoError(t, r.Resolve())

	s := r.Get("special-seq")
	assert.Equal(t, []string{"x", "y"}, s.Children, "children inherited from base")
	assert.Equal(t, "base sequence", s.Info)
}

func TestRegistry_ResolveAbsentReference(t *testing.T) {
	r := config.NewRegistry()
	require.NoError(t, r.Add(&domain.Definition{Name: "a", Ref: "ghost"}, "a.yaml", config.AddOptions{}))

	err := r.Resolve()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
	assert.Contains(t, err.Error(), "a.yaml")
}

func TestRegistry_ResolveCycle(t *testing.T) {
	r := config.NewRegistry()
	require.NoError(t, r.Add(&domain.Definition{Name: "a", Ref: "b"}, "a.yaml", config.AddOptions{}))
	require.NoError(t, r.Add(&domain.Definition{Name: "b", Ref: "a"}, "b.yaml", config.AddOptions{}))

	err := r.Resolve()
	require.Error(t, err)
	// The diagnostic enumerates every link: both names with their targets.
	assert.Contains(t, err.Error(), "refers to: b")
	assert.Contains(t, err.Error(), "refers to: a")
	assert.Contains(t, err.Error(), "a.yaml")
	assert.Contains(t, err.Error(), "b.yaml")
}

func TestRegistry_ResolveIdempotent(t *testing.T) {
	r := config.NewRegistry()
	require.NoError(t, r.Add(&domain.Definition{
		Name: "c", Impl: "assign", Params: map[string]any{"x": 1},
	}, "s", config.AddOptions{}))
	require.NoError(t, r.Add(&domain.Definition{Name: "a", Ref: "c"}, "s", config.AddOptions{}))

	require.NoError(t, r.Resolve())
	first := r.Get("a").Clone()

	require.NoError(t, r.Resolve())
	assert.Equal(t, first, r.Get("a"))
}

func TestRegistry_DeleteAndNames(t *testing.T) {
	r := config.NewRegistry()
	require.NoError(t, r.Add(&domain.Definition{Name: "b", Impl: "assign"}, "s", config.AddOptions{}))
	require.NoError(t, r.Add(&domain.Definition{Name: "a", Impl: "assign"}, "s", config.AddOptions{}))

	assert.Equal(t, []string{"a", "b"}, r.Names())

	r.Delete("a")
	assert.Nil(t, r.Get("a"))
	assert.Equal(t, []string{"b"}, r.Names())
}
