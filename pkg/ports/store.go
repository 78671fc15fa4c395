package ports

import (
	"context"

	"github.com/aretw0/canopy/pkg/domain"
)

// StateStore persists execution states between tree passes. This is
// what makes stop-and-resume workflows durable: a host can save after
// every RUNNING pass and pick the session up later, on any replica.
type StateStore interface {
	// Save persists the state under the given session uid.
	Save(ctx context.Context, uid string, state *domain.State) error

	// Load retrieves the state for a session uid.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, uid string) (*domain.State, error)

	// Delete removes the state for a session uid. Deleting an absent
	// session is not an error.
	Delete(ctx context.Context, uid string) error

	// List returns the uids of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
