package build

import (
	"fmt"
	"slices"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
	"github.com/mitchellh/mapstructure"
)

// Factory constructs a node from its resolved definition. Controllers
// receive their ordered, already-wrapped children; leaf factories must
// reject children.
type Factory func(def *domain.Definition, children []*node.Wrapper) (node.Node, error)

// Catalog maps implementation type names (the "class_name" of a
// definition) to factories. It replaces runtime import-path resolution
// with an explicit registration step.
type Catalog struct {
	factories map[string]Factory
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{factories: make(map[string]Factory)}
}

// Register adds a factory under a type name. Registering an existing
// name fails; embedders extending the builtin set should pick their own
// namespace (e.g. "myapp.fetch").
func (c *Catalog) Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("empty implementation type name")
	}
	if _, ok := c.factories[name]; ok {
		return fmt.Errorf("implementation type %s already registered", name)
	}
	c.factories[name] = factory
	return nil
}

// Lookup returns the factory for a type name.
func (c *Catalog) Lookup(name string) (Factory, bool) {
	f, ok := c.factories[name]
	return f, ok
}

// Names returns all registered type names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.factories))
	for name := range c.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Default returns a catalog with the builtin controllers and task
// leaves registered.
func Default() *Catalog {
	c := NewCatalog()

	must := func(name string, f Factory) {
		if err := c.Register(name, f); err != nil {
			panic(err)
		}
	}

	must("selector", func(def *domain.Definition, children []*node.Wrapper) (node.Node, error) {
		return node.NewSelector(def.Name, children), nil
	})
	must("persistent_selector", func(def *domain.Definition, children []*node.Wrapper) (node.Node, error) {
		return node.NewPersistentSelector(def.Name, children), nil
	})
	must("sequence", func(def *domain.Definition, children []*node.Wrapper) (node.Node, error) {
		return node.NewSequence(def.Name, children), nil
	})
	must("persistent_sequence", func(def *domain.Definition, children []*node.Wrapper) (node.Node, error) {
		return node.NewPersistentSequence(def.Name, children), nil
	})

	must("assign", LeafFactory(func(def *domain.Definition, cfg node.AssignConfig) (node.Node, error) {
		return node.NewAssign(def.Name, cfg), nil
	}))
	must("condition", LeafFactory(func(def *domain.Definition, cfg node.ConditionConfig) (node.Node, error) {
		return node.NewCondition(def.Name, cfg)
	}))
	must("defined", LeafFactory(func(def *domain.Definition, cfg node.DefinedConfig) (node.Node, error) {
		return node.NewDefined(def.Name, cfg)
	}))
	must("clear", LeafFactory(func(def *domain.Definition, cfg node.ClearConfig) (node.Node, error) {
		return node.NewClear(def.Name, cfg), nil
	}))

	return c
}

// LeafFactory adapts a typed constructor into a Factory: it rejects
// children and decodes the definition's params into the config type.
func LeafFactory[T any](construct func(def *domain.Definition, cfg T) (node.Node, error)) Factory {
	return func(def *domain.Definition, children []*node.Wrapper) (node.Node, error) {
		if len(children) > 0 {
			return nil, fmt.Errorf("definition %s: implementation %s is a leaf and takes no children", def.Name, def.Impl)
		}
		cfg, err := DecodeParams[T](def)
		if err != nil {
			return nil, err
		}
		return construct(def, cfg)
	}
}

// DecodeParams decodes a definition's implementation-specific params
// into a typed config struct using mapstructure tags.
func DecodeParams[T any](def *domain.Definition) (T, error) {
	var cfg T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		TagName:          "mapstructure",
		WeaklyTypedInput: false,
	})
	if err != nil {
		return cfg, err
	}
	if err := dec.Decode(def.Params); err != nil {
		return cfg, fmt.Errorf("definition %s (source: %s): %w", def.Name, def.Source, err)
	}
	return cfg, nil
}
