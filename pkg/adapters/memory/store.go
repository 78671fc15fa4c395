// Package memory implements ports.StateStore in process memory. It is
// the default for tests and single-process hosts.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/aretw0/canopy/pkg/domain"
)

// Store keeps serialized states in a map. Safe for concurrent use.
//
// States are stored in their JSON form, which both isolates callers
// from the stored copy and keeps behavior identical to the durable
// adapters (numbers round through float64 here too).
type Store struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Save persists the state under the session uid.
func (s *Store) Save(_ context.Context, uid string, state *domain.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[uid] = raw
	return nil
}

// Load retrieves the state for a session uid.
func (s *Store) Load(_ context.Context, uid string) (*domain.State, error) {
	s.mu.RLock()
	raw, ok := s.data[uid]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	state := domain.NewState()
	if err := json.Unmarshal(raw, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Delete removes the state for a session uid.
func (s *Store) Delete(_ context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, uid)
	return nil
}

// List returns the uids of all stored sessions.
func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uids := make([]string, 0, len(s.data))
	for uid := range s.data {
		uids = append(uids, uid)
	}
	return uids, nil
}
