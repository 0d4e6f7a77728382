package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestSweeper_SkipsOverlappingTick(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	ticks := 0

	s := NewSweeper("test", time.Hour, func(context.Context) (int, int) {
		mu.Lock()
		ticks++
		mu.Unlock()
		close(started)
		<-release
		return 1, 0
	})

	done := make(chan bool)
	go func() {
		done <- s.RunOnce(context.Background())
	}()
	<-started

	// Second tick fires while the first is still running: skipped.
	if ran := s.RunOnce(context.Background()); ran {
		t.Error("RunOnce() = true while a tick was in flight, want skip")
	}

	close(release)
	if ran := <-done; !ran {
		t.Error("first RunOnce() = false, want true")
	}

	mu.Lock()
	defer mu.Unlock()
	if ticks != 1 {
		t.Errorf("tick executions = %d, want 1", ticks)
	}
}

func TestSweeper_RunsAgainAfterCompletion(t *testing.T) {
	ticks := 0
	s := NewSweeper("test", time.Hour, func(context.Context) (int, int) {
		ticks++
		return 0, 0
	})

	s.RunOnce(context.Background())
	s.RunOnce(context.Background())
	if ticks != 2 {
		t.Errorf("tick executions = %d, want 2", ticks)
	}
}
