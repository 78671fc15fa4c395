package node

import (
	"context"

	"github.com/aretw0/canopy/pkg/domain"
)

// Mode selects the scheduling model a tree is built for.
type Mode int

const (
	// ModeDirect executes the tree as ordinary nested calls: a pass runs
	// to its next RUNNING/SUCCESS/FAILED boundary atomically.
	ModeDirect Mode = iota
	// ModeCooperative executes the tree through context-aware calls that
	// may block inside a leaf while it waits on an external resource.
	// Controllers still run children strictly one at a time, in declared
	// order, so the decision sequence is identical to ModeDirect.
	ModeCooperative
)

func (m Mode) String() string {
	if m == ModeCooperative {
		return "cooperative"
	}
	return "direct"
}

// Node is the capability shared by every tree unit. Execution itself is
// declared by Executor and ContextExecutor; a type must implement at
// least one of the two to be placeable in a tree.
type Node interface {
	// Name returns the definition name the node was built from.
	Name() string
	// Prepare assigns the tree-position identity. Controllers propagate
	// "{id}.{childIndex}" to each child wrapper, recursively.
	Prepare(positionID string)
	// Reset asks the node to reset descendant statuses. Controllers
	// recurse into children; leaves have nothing to do.
	Reset(state *domain.State)
}

// Executor is a node that executes synchronously (direct model).
type Executor interface {
	Node
	Execute(state *domain.State) (domain.Status, error)
}

// ContextExecutor is a node that executes under the cooperative model.
// The call may block while the leaf waits on an external resource; the
// context is the hosting process's handle for abandoning that wait.
type ContextExecutor interface {
	Node
	ExecuteContext(ctx context.Context, state *domain.State) (domain.Status, error)
}

// adaptable is implemented by plain Executor leaves that declare their
// Execute safe to call from a cooperative tree (non-blocking, cheap).
// Leaves that do not opt in are rejected at construction time when used
// in a cooperative tree.
type adaptable interface {
	Adaptable() bool
}

// Leaf is an embeddable base for leaf nodes. It supplies the name and
// the no-op Prepare/Reset halves of the Node contract.
type Leaf struct {
	name      string
	adaptable bool
}

// NewLeaf creates a leaf base for a node that only supports the direct
// model.
func NewLeaf(name string) Leaf {
	return Leaf{name: name}
}

// NewAdaptableLeaf creates a leaf base whose synchronous Execute may
// also be called from cooperative trees. Only mark leaves adaptable when
// Execute is not CPU- or IO-bound; a blocking Execute would stall the
// whole cooperative pass.
func NewAdaptableLeaf(name string) Leaf {
	return Leaf{name: name, adaptable: true}
}

// Name returns the definition name the leaf was built from.
func (l Leaf) Name() string { return l.name }

// Adaptable reports whether the leaf opted into cooperative trees.
func (l Leaf) Adaptable() bool { return l.adaptable }

// Prepare is a no-op: a leaf's identity lives in its Wrapper.
func (l Leaf) Prepare(string) {}

// Reset is a no-op: a leaf stores no descendant statuses.
func (l Leaf) Reset(*domain.State) {}
