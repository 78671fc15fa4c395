package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/canopy/pkg/domain"
)

// ErrModeUnsupported is returned when a node cannot be used under the
// scheduling model the tree is being built for.
var ErrModeUnsupported = errors.New("node cannot be used in this scheduling mode")

// WrapOptions carries the build-time settings every wrapper in a tree
// shares. Trace is resolved once here, at construction, and never
// consulted dynamically during execution.
type WrapOptions struct {
	Mode   Mode
	Trace  bool
	Logger *slog.Logger
	Hooks  domain.Hooks
}

// Wrapper allocates a node instance to a position in the tree.
//
// Each wrapper is identified by its dotted position id ("0", "0.1.2")
// assigned once via Prepare. Several wrappers may execute the same node
// instance; each tracks status independently through its own position
// key in the execution state. The wrapper forwards Execute, Prepare and
// Reset to the node, optionally emitting a trace line and firing hooks
// after execution without ever altering the returned status.
type Wrapper struct {
	id   string
	node Node

	exec    func(*domain.State) (domain.Status, error)
	execCtx func(context.Context, *domain.State) (domain.Status, error)

	trace  bool
	logger *slog.Logger
	hooks  domain.Hooks
}

// Wrap places a node behind a new wrapper.
//
// Under ModeDirect the node must be an Executor. Under ModeCooperative
// it must be a ContextExecutor, or an Executor that declared itself
// adaptable; adaptable leaves are invoked through the cooperative path
// as if they were suspending, so synchronous logic composes into a
// cooperative tree without a rewrite. Anything else is a construction
// error.
func Wrap(n Node, opts WrapOptions) (*Wrapper, error) {
	w := &Wrapper{
		node:   n,
		trace:  opts.Trace,
		logger: opts.Logger,
		hooks:  opts.Hooks,
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}

	if e, ok := n.(Executor); ok {
		w.exec = e.Execute
	}
	if c, ok := n.(ContextExecutor); ok {
		w.execCtx = c.ExecuteContext
	}

	switch opts.Mode {
	case ModeDirect:
		if w.exec == nil {
			return nil, fmt.Errorf("%w: %s is suspending-only, tree is direct", ErrModeUnsupported, n.Name())
		}
	case ModeCooperative:
		if w.execCtx == nil {
			a, ok := n.(adaptable)
			if !ok || !a.Adaptable() || w.exec == nil {
				return nil, fmt.Errorf("%w: %s is neither suspending nor adaptable, tree is cooperative", ErrModeUnsupported, n.Name())
			}
			exec := w.exec
			w.execCtx = func(_ context.Context, s *domain.State) (domain.Status, error) {
				return exec(s)
			}
		}
	default:
		return nil, fmt.Errorf("unknown scheduling mode %d", opts.Mode)
	}

	return w, nil
}

// ID returns the tree-position id assigned by Prepare.
func (w *Wrapper) ID() string { return w.id }

// Node returns the wrapped node instance.
func (w *Wrapper) Node() Node { return w.node }

// Prepare assigns the position id and forwards to the node so that
// controllers can number their children.
func (w *Wrapper) Prepare(positionID string) {
	w.id = positionID
	w.node.Prepare(positionID)
}

// Reset removes this position's stored status and forwards to the node,
// which recurses into children if it is a controller.
func (w *Wrapper) Reset(state *domain.State) {
	state.ResetStatus(w.id)
	w.node.Reset(state)
}

// Execute runs the node under the direct model.
func (w *Wrapper) Execute(state *domain.State) (domain.Status, error) {
	start := time.Now()
	status, err := w.exec(state)
	if err != nil {
		return status, fmt.Errorf("node %s at position %s: %w", w.node.Name(), w.id, err)
	}
	w.observe(status, state, time.Since(start))
	return status, nil
}

// ExecuteContext runs the node under the cooperative model. On a tree
// built for the direct model it degrades to the plain call.
func (w *Wrapper) ExecuteContext(ctx context.Context, state *domain.State) (domain.Status, error) {
	if w.execCtx == nil {
		return w.Execute(state)
	}
	start := time.Now()
	status, err := w.execCtx(ctx, state)
	if err != nil {
		return status, fmt.Errorf("node %s at position %s: %w", w.node.Name(), w.id, err)
	}
	w.observe(status, state, time.Since(start))
	return status, nil
}

func (w *Wrapper) observe(status domain.Status, state *domain.State, elapsed time.Duration) {
	if w.trace {
		w.logger.Info("node executed",
			"position", w.id,
			"node", w.node.Name(),
			"status", status.String(),
			"state", state.Snapshot(true),
		)
	}
	if w.hooks.OnNodeExecute != nil {
		w.hooks.OnNodeExecute(&domain.NodeEvent{
			Position: w.id,
			Node:     w.node.Name(),
			Status:   status,
			Elapsed:  elapsed,
		})
	}
}
