package moderation

import (
	"log/slog"
	"sync"
)

const defaultCleanupThreshold = 100

// LockRegistry serializes moderation actions per target user. Entries are
// created lazily and reaped once the table grows past the threshold, but only
// while nobody holds or waits on them: an entry is pinned from the moment
// Acquire hands it out, so two in-flight actions against the same user always
// contend on the same lock.
type LockRegistry struct {
	mu        sync.Mutex
	locks     map[string]*userLock
	threshold int
}

type userLock struct {
	mu sync.Mutex
	// refs counts holders plus waiters, guarded by the registry mutex.
	refs int
}

func NewLockRegistry() *LockRegistry {
	return &LockRegistry{
		locks:     make(map[string]*userLock),
		threshold: defaultCleanupThreshold,
	}
}

// Acquire blocks until the caller holds the lock for a user id and returns
// the release func. Calling the release func more than once is a no-op.
func (r *LockRegistry) Acquire(userID string) func() {
	r.mu.Lock()
	entry, ok := r.locks[userID]
	if !ok {
		entry = &userLock{}
		r.locks[userID] = entry
	}
	entry.refs++
	if len(r.locks) > r.threshold {
		r.reapLocked()
	}
	r.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()
			r.mu.Lock()
			entry.refs--
			r.mu.Unlock()
		})
	}
}

// Cleanup removes entries with no holders or waiters and returns how many
// were removed.
func (r *LockRegistry) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reapLocked()
}

func (r *LockRegistry) reapLocked() int {
	removed := 0
	for id, entry := range r.locks {
		if entry.refs == 0 {
			delete(r.locks, id)
			removed++
		}
	}
	if removed > 0 {
		slog.Debug("Reaped idle moderation locks",
			slog.String("type", "mod"),
			slog.Int("removed", removed),
			slog.Int("remaining", len(r.locks)))
	}
	return removed
}

// Len reports the current number of tracked locks.
func (r *LockRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}
