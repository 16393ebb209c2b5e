package manager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/arbor/pkg/ports"
)

const distributedLockTTL = 30 * time.Second

// lockEntry pairs a mutex with a reference count so idle entries are garbage
// collected instead of accumulating one mutex per subject ever seen.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// keyLocks serializes dispatches per session key: two concurrent dispatches
// for the same key would race on the persisted token, so one waits. Unrelated
// keys never block each other. An optional distributed locker extends the
// guarantee across replicas.
type keyLocks struct {
	mu     sync.Mutex
	locks  map[string]*lockEntry
	locker ports.Locker
}

func newKeyLocks(locker ports.Locker) *keyLocks {
	return &keyLocks{
		locks:  make(map[string]*lockEntry),
		locker: locker,
	}
}

func (k *keyLocks) acquire(key string) *lockEntry {
	k.mu.Lock()
	defer k.mu.Unlock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	return entry
}

func (k *keyLocks) release(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	entry, ok := k.locks[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(k.locks, key)
	}
}

// withLock runs fn while holding the lock for every key, acquired in the
// given order. Callers pass keys in a fixed scope order to avoid deadlocks.
func (k *keyLocks) withLock(ctx context.Context, keys []string, fn func(context.Context) error) error {
	if len(keys) == 0 {
		return fn(ctx)
	}
	key := keys[0]

	entry := k.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		k.release(key)
	}()

	if k.locker != nil {
		unlock, err := k.locker.Lock(ctx, key, distributedLockTTL)
		if err != nil {
			return fmt.Errorf("acquire distributed lock for %s: %w", key, err)
		}
		// Release errors are ignored here; the TTL reclaims the lock.
		defer unlock(ctx) //nolint:errcheck
	}

	return k.withLock(ctx, keys[1:], fn)
}
