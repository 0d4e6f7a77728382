package moderation

import (
	"fmt"
	"testing"
	"time"
)

func TestLockRegistry_SerializesSameUser(t *testing.T) {
	registry := NewLockRegistry()

	release := registry.Acquire("user-1")

	acquired := make(chan struct{})
	go func() {
		rel := registry.Acquire("user-1")
		close(acquired)
		rel()
	}()

	select {
	case <-acquired:
		t.Fatal("second Acquire for the same user succeeded while the lock was held")
	case <-time.After(50 * time.Millisecond):
	}

	release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Acquire never proceeded after release")
	}
}

func TestLockRegistry_ReapKeepsHandedOutLock(t *testing.T) {
	registry := NewLockRegistry()
	registry.threshold = 10

	release := registry.Acquire("target")

	// Churn enough other users through the registry to trip the threshold
	// reap repeatedly while the target lock is held out.
	for i := 0; i < 50; i++ {
		rel := registry.Acquire(fmt.Sprintf("user-%d", i))
		rel()
	}

	acquired := make(chan struct{})
	go func() {
		rel := registry.Acquire("target")
		close(acquired)
		rel()
	}()

	select {
	case <-acquired:
		t.Fatal("Acquire for a held user id succeeded; the reap replaced the lock")
	case <-time.After(50 * time.Millisecond):
	}

	release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("Acquire never proceeded after release")
	}
}

func TestLockRegistry_CleanupRemovesOnlyIdle(t *testing.T) {
	registry := NewLockRegistry()

	release := registry.Acquire("1001")
	registry.Acquire("1002")()
	registry.Acquire("1003")()

	removed := registry.Cleanup()
	if removed != 2 {
		t.Errorf("Cleanup() removed = %d, want 2", removed)
	}
	if got := registry.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}

	release()
	if removed := registry.Cleanup(); removed != 1 {
		t.Errorf("Cleanup() removed = %d after release, want 1", removed)
	}
}

func TestLockRegistry_ThresholdBoundsTable(t *testing.T) {
	registry := NewLockRegistry()
	registry.threshold = 10

	for i := 0; i < 25; i++ {
		registry.Acquire(fmt.Sprintf("user-%d", i))()
	}

	// Every lock is idle, so the table never grows far past the threshold.
	if got := registry.Len(); got > registry.threshold+1 {
		t.Errorf("Len() = %d, want <= %d after threshold reap", got, registry.threshold+1)
	}
}

func TestLockRegistry_ReleaseIsIdempotent(t *testing.T) {
	registry := NewLockRegistry()

	release := registry.Acquire("user-1")
	release()
	release()

	// The entry must be acquirable again after the double release.
	rel := registry.Acquire("user-1")
	rel()
}
