package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
)

// lockEntry pairs the per-session mutex with its reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes access to persisted states. Unused lock entries
// are garbage collected by reference counting, so the map stays
// proportional to in-flight sessions rather than all sessions ever
// touched.
type Manager struct {
	store ports.StateStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL bounds how long a crashed holder keeps a distributed
// lock. Default 30s.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for deferred errors.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a session manager over a state store.
func NewManager(store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) acquire(uid string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[uid]
	if !ok {
		entry = &lockEntry{}
		m.locks[uid] = entry
	}
	entry.refs++
	return entry
}

func (m *Manager) release(uid string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[uid]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, uid)
	}
}

// WithLock runs fn while holding the session's lock (and the
// distributed lock, when configured).
func (m *Manager) WithLock(ctx context.Context, uid string, fn func(context.Context) error) error {
	entry := m.acquire(uid)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(uid)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, uid, m.lockTTL)
		if err != nil {
			return fmt.Errorf("acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock, will expire via TTL",
					"uid", uid,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Load retrieves an existing session.
func (m *Manager) Load(ctx context.Context, uid string) (*domain.State, error) {
	var state *domain.State
	err := m.WithLock(ctx, uid, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, uid)
		return err
	})
	return state, err
}

// LoadOrStart loads a session, creating and persisting a blank state
// when none exists.
func (m *Manager) LoadOrStart(ctx context.Context, uid string) (*domain.State, error) {
	var state *domain.State
	err := m.WithLock(ctx, uid, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, uid)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("check session existence: %w", err)
		}

		state = domain.NewStateWithUID(uid)
		if err := m.store.Save(ctx, uid, state); err != nil {
			return fmt.Errorf("initialize session: %w", err)
		}
		return nil
	})
	return state, err
}

// Save persists the session state.
func (m *Manager) Save(ctx context.Context, uid string, state *domain.State) error {
	return m.WithLock(ctx, uid, func(ctx context.Context) error {
		return m.store.Save(ctx, uid, state)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, uid string) error {
	return m.WithLock(ctx, uid, func(ctx context.Context) error {
		return m.store.Delete(ctx, uid)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}
