package node

import (
	"context"
	"strconv"

	"github.com/aretw0/canopy/pkg/domain"
)

// Controller is the embeddable base for control-flow nodes. It owns the
// ordered child wrappers and implements the identity and reset halves of
// the Node contract; the four composition algorithms below supply the
// execution half.
//
// A controller never reads the execution state directly. It decides what
// to run next purely from the statuses its children returned (or have
// stored at their positions), which is what keeps behaviors encapsulated
// in leaves.
type Controller struct {
	name     string
	children []*Wrapper
}

// NewController creates a controller base with ordered children.
func NewController(name string, children []*Wrapper) Controller {
	return Controller{name: name, children: children}
}

// Name returns the definition name the controller was built from.
func (c *Controller) Name() string { return c.name }

// Children returns the ordered child wrappers.
func (c *Controller) Children() []*Wrapper { return c.children }

// Prepare numbers each child position "{id}.{index}", recursively.
func (c *Controller) Prepare(positionID string) {
	for i, child := range c.children {
		child.Prepare(positionID + "." + strconv.Itoa(i))
	}
}

// Reset resets every child position, recursively.
func (c *Controller) Reset(state *domain.State) {
	for _, child := range c.children {
		child.Reset(state)
	}
}

// childExec invokes one child under the scheduling model of the current
// pass. The four algorithms are written once against this seam, so the
// direct and cooperative models share a single body per algorithm.
type childExec func(*Wrapper) (domain.Status, error)

func direct(state *domain.State) childExec {
	return func(w *Wrapper) (domain.Status, error) { return w.Execute(state) }
}

func cooperative(ctx context.Context, state *domain.State) childExec {
	return func(w *Wrapper) (domain.Status, error) { return w.ExecuteContext(ctx, state) }
}

// Selector executes children in order until one returns SUCCESS or
// RUNNING and immediately returns that status; FAILED only when every
// child failed. Non-persistent: nothing is remembered between calls, the
// next invocation restarts the scan at child 0.
//
// A selector resembles an OR gate and is typically used to pick one of
// several alternative behaviors, ordered by priority.
type Selector struct {
	Controller
}

// NewSelector creates a non-persistent selector.
func NewSelector(name string, children []*Wrapper) *Selector {
	return &Selector{NewController(name, children)}
}

func (n *Selector) Execute(state *domain.State) (domain.Status, error) {
	return n.scan(direct(state))
}

func (n *Selector) ExecuteContext(ctx context.Context, state *domain.State) (domain.Status, error) {
	return n.scan(cooperative(ctx, state))
}

func (n *Selector) scan(exec childExec) (domain.Status, error) {
	status := domain.StatusFailed

	for _, child := range n.children {
		var err error
		status, err = exec(child)
		if err != nil {
			return status, err
		}
		if status != domain.StatusFailed {
			break
		}
	}

	return status, nil
}

// PersistentSelector is a selector that remembers scan progress across
// invocations. A child whose stored status is FAILED is not re-executed;
// a RUNNING child is resumed. On terminal SUCCESS or FAILED every
// descendant status is reset so the next activation starts fresh.
//
// Persistence exists so a long-RUNNING child does not force siblings
// that already resolved to be re-evaluated on every tick.
type PersistentSelector struct {
	Controller
}

// NewPersistentSelector creates a persistent selector.
func NewPersistentSelector(name string, children []*Wrapper) *PersistentSelector {
	return &PersistentSelector{NewController(name, children)}
}

func (n *PersistentSelector) Execute(state *domain.State) (domain.Status, error) {
	return n.scan(state, direct(state))
}

func (n *PersistentSelector) ExecuteContext(ctx context.Context, state *domain.State) (domain.Status, error) {
	return n.scan(state, cooperative(ctx, state))
}

func (n *PersistentSelector) scan(state *domain.State, exec childExec) (domain.Status, error) {
	status := domain.StatusFailed

	for _, child := range n.children {
		stored := state.GetStatus(child.ID())

		if stored == domain.StatusReady || stored == domain.StatusRunning {
			var err error
			status, err = exec(child)
			if err != nil {
				return status, err
			}
		}

		if status == domain.StatusFailed || status == domain.StatusRunning {
			state.SetStatus(child.ID(), status)
		}

		if status == domain.StatusRunning || status == domain.StatusSuccess {
			break
		}
	}

	if status.Terminal() {
		n.Reset(state)
	}

	return status, nil
}

// Sequence executes children in order until one returns FAILED or
// RUNNING and immediately returns that status; SUCCESS only when every
// child succeeded. Non-persistent: the next invocation restarts the scan
// at child 0.
//
// A sequence resembles an AND gate and is typically used to encapsulate
// the steps of one task.
type Sequence struct {
	Controller
}

// NewSequence creates a non-persistent sequence.
func NewSequence(name string, children []*Wrapper) *Sequence {
	return &Sequence{NewController(name, children)}
}

func (n *Sequence) Execute(state *domain.State) (domain.Status, error) {
	return n.scan(direct(state))
}

func (n *Sequence) ExecuteContext(ctx context.Context, state *domain.State) (domain.Status, error) {
	return n.scan(cooperative(ctx, state))
}

func (n *Sequence) scan(exec childExec) (domain.Status, error) {
	status := domain.StatusSuccess

	for _, child := range n.children {
		var err error
		status, err = exec(child)
		if err != nil {
			return status, err
		}
		if status != domain.StatusSuccess {
			break
		}
	}

	return status, nil
}

// PersistentSequence is a sequence that remembers scan progress across
// invocations. A child whose stored status is SUCCESS is not re-executed;
// a RUNNING child is resumed. On terminal SUCCESS or FAILED every
// descendant status is reset.
type PersistentSequence struct {
	Controller
}

// NewPersistentSequence creates a persistent sequence.
func NewPersistentSequence(name string, children []*Wrapper) *PersistentSequence {
	return &PersistentSequence{NewController(name, children)}
}

func (n *PersistentSequence) Execute(state *domain.State) (domain.Status, error) {
	return n.scan(state, direct(state))
}

func (n *PersistentSequence) ExecuteContext(ctx context.Context, state *domain.State) (domain.Status, error) {
	return n.scan(state, cooperative(ctx, state))
}

func (n *PersistentSequence) scan(state *domain.State, exec childExec) (domain.Status, error) {
	status := domain.StatusSuccess

	for _, child := range n.children {
		stored := state.GetStatus(child.ID())

		if stored == domain.StatusReady || stored == domain.StatusRunning {
			var err error
			status, err = exec(child)
			if err != nil {
				return status, err
			}
		}

		if status == domain.StatusSuccess || status == domain.StatusRunning {
			state.SetStatus(child.ID(), status)
		}

		if status == domain.StatusRunning || status == domain.StatusFailed {
			break
		}
	}

	if status.Terminal() {
		n.Reset(state)
	}

	return status, nil
}
