package domain

import "encoding/json"

// State is the mutable session a behavior tree is evaluated against.
//
// It carries two things: arbitrary named variables that leaf nodes read
// and write, and the per-position statuses that persistent controllers
// remember between ticks. Metaphorically it is a snapshot of the agent's
// working memory: inputs from the outside world plus the results of
// processing them.
//
// Project-wide convention: a nil variable value always represents an
// uninitialized variable. Variable values are presumed JSON-serializable;
// no type checking is enforced.
//
// A State must be driven by exactly one tree activation at a time.
// Concurrent activations require distinct State instances (see
// pkg/session for coordination).
type State struct {
	uid      string
	vars     map[string]any
	statuses map[string]Status
}

// NewState creates a blank state.
func NewState() *State {
	return &State{
		vars:     make(map[string]any),
		statuses: make(map[string]Status),
	}
}

// NewStateWithUID creates a blank state carrying a session identifier.
func NewStateWithUID(uid string) *State {
	s := NewState()
	s.uid = uid
	return s
}

// UID returns the optional session identifier.
func (s *State) UID() string { return s.uid }

// Vars exposes the variables map for direct read/write access.
func (s *State) Vars() map[string]any { return s.vars }

// GetStatus returns the stored status for a tree position. Absence of an
// entry means READY.
func (s *State) GetStatus(positionID string) Status {
	return s.statuses[positionID]
}

// SetStatus stores the status for a tree position. Setting READY removes
// the entry instead, which keeps serialized states sparse and makes
// SetStatus(id, StatusReady) observationally equal to ResetStatus(id).
func (s *State) SetStatus(positionID string, status Status) {
	if status == StatusReady {
		delete(s.statuses, positionID)
		return
	}
	s.statuses[positionID] = status
}

// ResetStatus removes the stored status for a single position.
func (s *State) ResetStatus(positionID string) {
	delete(s.statuses, positionID)
}

// ResetAll removes every stored position status.
func (s *State) ResetAll() {
	s.statuses = make(map[string]Status)
}

// Positions returns a copy of the non-READY position statuses.
func (s *State) Positions() map[string]Status {
	out := make(map[string]Status, len(s.statuses))
	for id, st := range s.statuses {
		out[id] = st
	}
	return out
}

// stateDoc is the serialized shape of a State. Only non-READY positions
// appear under "nodes", each as its stable integer code.
type stateDoc struct {
	UID       string         `json:"uid,omitempty"`
	Variables map[string]any `json:"variables"`
	Nodes     map[string]int `json:"nodes,omitempty"`
}

// Snapshot converts the state to its serializable map representation.
// Position statuses are included only when nodes is true; converting
// them is the more expensive half, and most call sites (tracing, debug
// output) only want the variables.
func (s *State) Snapshot(nodes bool) map[string]any {
	out := map[string]any{
		"uid":       s.uid,
		"variables": s.vars,
	}
	if nodes {
		codes := make(map[string]int, len(s.statuses))
		for id, st := range s.statuses {
			codes[id] = int(st)
		}
		out["nodes"] = codes
	}
	return out
}

// MarshalJSON serializes the state including position statuses.
func (s *State) MarshalJSON() ([]byte, error) {
	doc := stateDoc{
		UID:       s.uid,
		Variables: s.vars,
		Nodes:     make(map[string]int, len(s.statuses)),
	}
	for id, st := range s.statuses {
		doc.Nodes[id] = int(st)
	}
	return json.Marshal(doc)
}

// UnmarshalJSON restores a state from its serialized shape. Unknown
// status codes are rejected.
func (s *State) UnmarshalJSON(data []byte) error {
	var doc stateDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	s.uid = doc.UID
	s.vars = doc.Variables
	if s.vars == nil {
		s.vars = make(map[string]any)
	}
	s.statuses = make(map[string]Status, len(doc.Nodes))
	for id, code := range doc.Nodes {
		status, err := StatusFromCode(code)
		if err != nil {
			return err
		}
		if status != StatusReady {
			s.statuses[id] = status
		}
	}
	return nil
}
