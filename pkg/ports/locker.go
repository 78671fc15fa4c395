package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates session access across replicas. The
// session manager serializes activations within one process; the
// locker extends that discipline cluster-wide.
type DistributedLocker interface {
	// Lock acquires a lock for the given key (typically a session uid),
	// blocking until acquired or the context is canceled. The returned
	// UnlockFunc MUST be called to release the lock; the TTL bounds how
	// long a crashed holder can keep the key.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
