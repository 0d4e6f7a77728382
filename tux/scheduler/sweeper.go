package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/allthingslinux/tux/tux/logger"
)

// TickFunc processes one sweep pass and reports how many rows it handled and
// how many of those failed. Per-row failures must not abort the pass.
type TickFunc func(ctx context.Context) (processed, failed int)

// Sweeper runs a tick on a fixed interval. If a tick is still running when
// the next one fires, the new tick is skipped, not queued.
type Sweeper struct {
	name     string
	interval time.Duration
	tick     TickFunc

	mu      sync.Mutex
	running bool
}

func NewSweeper(name string, interval time.Duration, tick TickFunc) *Sweeper {
	return &Sweeper{
		name:     name,
		interval: interval,
		tick:     tick,
	}
}

// Start launches the loop; it stops when ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		logger.LogSystem("Sweep loop started",
			slog.String("name", s.name),
			slog.Duration("interval", s.interval))

		for {
			select {
			case <-ticker.C:
				s.RunOnce(ctx)
			case <-ctx.Done():
				logger.LogSystem("Sweep loop stopped", slog.String("name", s.name))
				return
			}
		}
	}()
}

// RunOnce runs a single tick unless one is already in flight.
func (s *Sweeper) RunOnce(ctx context.Context) bool {
	if !s.tryBegin() {
		slog.Debug("Sweep tick skipped, previous tick still running",
			slog.String("type", "sweep"),
			slog.String("name", s.name))
		return false
	}
	defer s.end()

	start := time.Now()
	processed, failed := s.tick(ctx)
	if processed > 0 || failed > 0 {
		logger.LogSweep(s.name, processed, failed, time.Since(start))
	}
	return true
}

func (s *Sweeper) tryBegin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Sweeper) end() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}
