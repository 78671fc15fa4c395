// Package redis implements the persistence ports on Redis: a
// ports.StateStore for durable sessions and a ports.DistributedLocker
// for cross-replica coordination.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/aretw0/canopy/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "canopy:state:"

// Store implements ports.StateStore on a Redis client. States are
// stored as JSON under "{prefix}{uid}" and indexed in a sorted set
// "{prefix}index" scored by expiry time, so List stays O(sessions)
// without a KEYS scan.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL sets a time-to-live on stored sessions. Zero (the default)
// keeps sessions until deleted.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix overrides the key prefix, for several applications sharing
// one Redis.
func WithPrefix(prefix string) StoreOption {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// NewFromClient creates a Store over an existing Redis client.
func NewFromClient(client *backend.Client, opts ...StoreOption) *Store {
	s := &Store{client: client, prefix: defaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(uid string) string {
	return s.prefix + uid
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the state under the session uid.
func (s *Store) Save(ctx context.Context, uid string, state *domain.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("serialize state %s: %w", uid, err)
	}

	score := math.MaxFloat64
	if s.ttl > 0 {
		score = float64(time.Now().Add(s.ttl).Unix())
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(uid), raw, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: uid})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save state %s: %w", uid, err)
	}
	return nil
}

// Load retrieves the state for a session uid.
func (s *Store) Load(ctx context.Context, uid string) (*domain.State, error) {
	raw, err := s.client.Get(ctx, s.key(uid)).Bytes()
	if err == backend.Nil {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load state %s: %w", uid, err)
	}

	state := domain.NewState()
	if err := json.Unmarshal(raw, state); err != nil {
		return nil, fmt.Errorf("deserialize state %s: %w", uid, err)
	}
	return state, nil
}

// Delete removes the state for a session uid.
func (s *Store) Delete(ctx context.Context, uid string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(uid))
	pipe.ZRem(ctx, s.indexKey(), uid)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete state %s: %w", uid, err)
	}
	return nil
}

// List returns the uids of all live sessions. Index entries whose TTL
// has passed are removed lazily here; Redis expires the state keys on
// its own.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", now).Err(); err != nil {
		return nil, fmt.Errorf("prune session index: %w", err)
	}

	uids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return uids, nil
}
