package domain

import "time"

// NodeEvent describes one node execution, observed after the node
// returned. It is informational only: hooks never influence control flow.
type NodeEvent struct {
	// Position is the dotted tree-position id of the executed wrapper.
	Position string
	// Node is the definition name of the underlying node instance.
	Node string
	// Status is the outcome the node returned.
	Status Status
	// Elapsed is the wall time the execution took.
	Elapsed time.Duration
}

// Hooks defines optional observability callbacks for tree execution.
// A nil callback is skipped.
type Hooks struct {
	OnNodeExecute func(*NodeEvent)
}
