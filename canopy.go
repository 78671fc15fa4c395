package canopy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/canopy/pkg/build"
	"github.com/aretw0/canopy/pkg/config"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/node"
)

// Tree is the high-level entry point for the canopy library. It owns a
// resolved registry and, after Init, an executable node graph.
//
// A Tree instance is stateless across executions: everything a pass
// reads or writes lives in the ExecutionState passed in, so one Tree
// serves any number of concurrent states as long as each individual
// state has at most one activation at a time.
type Tree struct {
	registry *config.Registry
	catalog  *build.Catalog
	mode     node.Mode
	trace    bool
	logger   *slog.Logger
	hooks    domain.Hooks

	rootName string
	root     *node.Wrapper
}

// Option defines a functional option for configuring a Tree.
type Option func(*Tree)

// WithCooperative builds the tree for the cooperative scheduling model:
// leaves may block awaiting external resources and are driven through
// ExecuteContext. Every leaf must either implement ContextExecutor or
// declare itself adaptable; violations surface as Init errors.
func WithCooperative() Option {
	return func(t *Tree) {
		t.mode = node.ModeCooperative
	}
}

// WithTrace enables a structured log line after every node execution
// (position, node, status, state snapshot). The flag is resolved once
// at build time.
func WithTrace(enabled bool) Option {
	return func(t *Tree) {
		t.trace = enabled
	}
}

// WithLogger sets the structured logger used for tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tree) {
		t.logger = logger
	}
}

// WithHooks registers observability hooks fired after each node
// execution.
func WithHooks(hooks domain.Hooks) Option {
	return func(t *Tree) {
		t.hooks = hooks
	}
}

// WithCatalog replaces the default implementation-type catalog, letting
// embedders register their own leaves and controllers.
func WithCatalog(catalog *build.Catalog) Option {
	return func(t *Tree) {
		t.catalog = catalog
	}
}

// New creates a Tree over the given registry and resolves it. Reference
// chains are flattened in place; resolution errors (absent references,
// cycles) are returned as is.
func New(registry *config.Registry, opts ...Option) (*Tree, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}

	t := &Tree{registry: registry}
	for _, opt := range opts {
		opt(t)
	}
	if t.catalog == nil {
		t.catalog = build.Default()
	}

	if err := registry.Resolve(); err != nil {
		return nil, err
	}
	return t, nil
}

// Load creates a Tree from a config file or directory of config files.
func Load(path string, opts ...Option) (*Tree, error) {
	registry := config.NewRegistry()
	if err := config.LoadInto(registry, path); err != nil {
		return nil, err
	}
	return New(registry, opts...)
}

// Init builds the executable graph rooted at the named definition. The
// root is wrapped at position "0" and position ids are propagated.
// Calling Init again rebuilds the graph, so definitions added to the
// registry after construction can be picked up.
func (t *Tree) Init(rootName string) error {
	builder := build.NewBuilder(t.catalog, node.WrapOptions{
		Mode:   t.mode,
		Trace:  t.trace,
		Logger: t.logger,
		Hooks:  t.hooks,
	})

	root, err := builder.Build(t.registry, rootName)
	if err != nil {
		return err
	}

	t.rootName = rootName
	t.root = root
	return nil
}

// Execute runs one pass from the root under the direct model and
// returns the root status. The pass runs to its RUNNING/SUCCESS/FAILED
// boundary atomically; RUNNING means the caller should execute again
// later with the same state.
func (t *Tree) Execute(state *domain.State) (domain.Status, error) {
	if t.root == nil {
		return domain.StatusReady, fmt.Errorf("tree not initialized: call Init first")
	}
	if t.mode == node.ModeCooperative {
		return domain.StatusReady, fmt.Errorf("tree is built for cooperative scheduling: use ExecuteContext")
	}
	return t.root.Execute(state)
}

// ExecuteContext runs one pass from the root. On a cooperative tree the
// pass may block inside a leaf until the context is canceled; on a
// direct tree it degrades to the plain call.
func (t *Tree) ExecuteContext(ctx context.Context, state *domain.State) (domain.Status, error) {
	if t.root == nil {
		return domain.StatusReady, fmt.Errorf("tree not initialized: call Init first")
	}
	return t.root.ExecuteContext(ctx, state)
}

// Root returns the root wrapper, or nil before Init. Exposed for
// introspection tools.
func (t *Tree) Root() *node.Wrapper { return t.root }

// RootName returns the definition name the graph was built from.
func (t *Tree) RootName() string { return t.rootName }

// Registry returns the underlying component registry.
func (t *Tree) Registry() *config.Registry { return t.registry }

// Mode returns the scheduling model the tree was built for.
func (t *Tree) Mode() node.Mode { return t.mode }
