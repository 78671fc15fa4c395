package domain

import "fmt"

// Status is the outcome of a node execution. It is the only channel by
// which controller nodes learn about their children: controllers never
// inspect the execution state directly.
type Status int

const (
	// StatusReady marks a node that has not been executed yet (or has
	// been reset). It is never returned by Execute; it only appears as
	// a stored per-position status.
	StatusReady Status = 0
	// StatusRunning means the node is still working (or waiting) and
	// wants to be executed again on a later tick.
	StatusRunning Status = 1
	// StatusSuccess means the node performed its task.
	StatusSuccess Status = 2
	// StatusFailed means the node could not perform its task.
	StatusFailed Status = 3
)

// The integer codes above are persisted in serialized states and must
// remain stable across versions.

// StatusFromCode converts a persisted integer code back into a Status.
func StatusFromCode(code int) (Status, error) {
	switch Status(code) {
	case StatusReady, StatusRunning, StatusSuccess, StatusFailed:
		return Status(code), nil
	}
	return StatusReady, fmt.Errorf("%w: %d", ErrUnknownStatusCode, code)
}

// Terminal reports whether the status ends a tree pass (SUCCESS or FAILED).
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "READY"
	case StatusRunning:
		return "RUNNING"
	case StatusSuccess:
		return "SUCCESS"
	case StatusFailed:
		return "FAILED"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}
