package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a held lock.
type UnlockFunc func(ctx context.Context) error

// Locker provides exclusive locks per session key across process replicas.
// The manager already serializes same-key dispatches in-process; a Locker
// extends that guarantee to multi-instance deployments.
//
// Lock blocks until the lock is acquired or the context is canceled. The
// returned UnlockFunc must be called to release it; the TTL bounds how long a
// crashed holder can keep the key locked.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
