package build

import (
	"fmt"

	"github.com/aretw0/canopy/pkg/config"
	"github.com/aretw0/canopy/pkg/node"
)

// Builder assembles a node graph from a resolved registry.
type Builder struct {
	catalog *Catalog
	opts    node.WrapOptions
}

// NewBuilder creates a builder. The wrap options (scheduling mode,
// trace flag, logger, hooks) are fixed per build and applied to every
// wrapper in the produced tree.
func NewBuilder(catalog *Catalog, opts node.WrapOptions) *Builder {
	return &Builder{catalog: catalog, opts: opts}
}

// Build instantiates the graph rooted at the named definition, wraps
// the root at position "0" and propagates dotted position ids.
//
// A per-build memo keyed by definition name guarantees that a name
// referenced from multiple parents yields one shared node instance,
// wrapped separately at each position.
func (b *Builder) Build(reg *config.Registry, rootName string) (*node.Wrapper, error) {
	memo := make(map[string]node.Node)

	root, err := b.build(reg, rootName, memo)
	if err != nil {
		return nil, err
	}

	wrapper, err := node.Wrap(root, b.opts)
	if err != nil {
		return nil, fmt.Errorf("definition %s: %w", rootName, err)
	}
	wrapper.Prepare("0")

	if err := verifyPositions(wrapper); err != nil {
		return nil, err
	}
	return wrapper, nil
}

func (b *Builder) build(reg *config.Registry, name string, memo map[string]node.Node) (node.Node, error) {
	if n, ok := memo[name]; ok {
		return n, nil
	}

	def := reg.Get(name)
	if def == nil {
		return nil, fmt.Errorf("unknown definition: %s", name)
	}
	if def.Ref != "" {
		return nil, fmt.Errorf("definition %s (source: %s) still references %s: registry not resolved",
			name, def.Source, def.Ref)
	}

	factory, ok := b.catalog.Lookup(def.Impl)
	if !ok {
		return nil, fmt.Errorf("definition %s (source: %s): unknown implementation type %q",
			name, def.Source, def.Impl)
	}

	children := make([]*node.Wrapper, len(def.Children))
	for i, childName := range def.Children {
		childNode, err := b.build(reg, childName, memo)
		if err != nil {
			return nil, err
		}
		w, err := node.Wrap(childNode, b.opts)
		if err != nil {
			return nil, fmt.Errorf("definition %s, child %s: %w", name, childName, err)
		}
		children[i] = w
	}

	built, err := factory(def, children)
	if err != nil {
		return nil, err
	}
	if _, ok := any(built).(*node.Wrapper); ok {
		return nil, fmt.Errorf("definition %s: the wrapper type is not a declarable implementation", name)
	}

	memo[name] = built
	return built, nil
}

// verifyPositions walks the wrapper tree and asserts that every position
// id is unique. Position ids derive purely from tree shape, so under
// normal construction they cannot collide; the one graph shape that
// breaks the invariant is a controller instance shared across positions,
// whose inner wrappers would be re-prepared by each parent and end up
// keyed identically. That shape loses per-position status independence,
// so the build is rejected. Leaf sharing, the common reuse pattern, has
// no inner wrappers and is unaffected.
func verifyPositions(root *node.Wrapper) error {
	visited := make(map[*node.Wrapper]bool)
	ids := make(map[string]string)

	var walk func(w *node.Wrapper) error
	walk = func(w *node.Wrapper) error {
		if visited[w] {
			return fmt.Errorf("controller %s is shared across tree positions; per-position statuses would collide", w.Node().Name())
		}
		visited[w] = true

		if owner, ok := ids[w.ID()]; ok {
			return fmt.Errorf("duplicate position id %s (nodes %s and %s)", w.ID(), owner, w.Node().Name())
		}
		ids[w.ID()] = w.Node().Name()

		if c, ok := w.Node().(interface{ Children() []*node.Wrapper }); ok {
			for _, child := range c.Children() {
				if err := walk(child); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return walk(root)
}
