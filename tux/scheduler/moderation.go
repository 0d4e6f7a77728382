package scheduler

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/allthingslinux/tux/tux/database/models"
)

const sweepConcurrency = 4

// ExpiringCaseStore is the slice of the case repository the sweep needs.
type ExpiringCaseStore interface {
	ExpiredActive(ctx context.Context, now time.Time, types ...models.CaseType) ([]*models.Case, error)
	SetStatus(ctx context.Context, id int64, status bool) error
}

// BanGateway is the Discord-side surface the tempban sweep needs.
type BanGateway interface {
	IsBanned(ctx context.Context, guildID, userID string) (bool, error)
	Unban(ctx context.Context, guildID, userID string) error
}

// JailGateway reverses a jail: restores the saved role snapshot and removes
// the jail role.
type JailGateway interface {
	RestoreRoles(ctx context.Context, guildID, userID string, roles []string) error
}

// ModerationSweep expires tempbans and jails. Each tick fetches active cases
// whose expiry has passed, reverses them on Discord, and marks the case
// inactive. Marking is idempotent: a case already expired (or a user already
// unbanned out of band) is settled without error.
type ModerationSweep struct {
	cases ExpiringCaseStore
	bans  BanGateway
	jails JailGateway
}

func NewModerationSweep(cases ExpiringCaseStore, bans BanGateway, jails JailGateway) *ModerationSweep {
	return &ModerationSweep{cases: cases, bans: bans, jails: jails}
}

// Sweeper wraps the tick in a 60s loop.
func (s *ModerationSweep) Sweeper() *Sweeper {
	return NewSweeper("moderation-expiry", time.Minute, s.Tick)
}

func (s *ModerationSweep) Tick(ctx context.Context) (int, int) {
	expired, err := s.cases.ExpiredActive(ctx, time.Now(), models.CaseTypeTempBan, models.CaseTypeJail)
	if err != nil {
		slog.Error("Failed to fetch expired cases",
			slog.String("type", "sweep"),
			slog.Any("error", err))
		return 0, 0
	}
	if len(expired) == 0 {
		return 0, 0
	}

	var failed atomic.Int64
	sem := semaphore.NewWeighted(sweepConcurrency)
	g, gctx := errgroup.WithContext(ctx)

	for _, c := range expired {
		c := c
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			if err := s.expireOne(gctx, c); err != nil {
				failed.Add(1)
				slog.Error("Failed to expire case",
					slog.String("type", "sweep"),
					slog.String("case_type", string(c.Type)),
					slog.Int("case_number", c.CaseNumber),
					slog.String("guild_id", c.GuildID),
					slog.Any("error", err))
			}
			return nil
		})
	}
	_ = g.Wait()

	return len(expired), int(failed.Load())
}

func (s *ModerationSweep) expireOne(ctx context.Context, c *models.Case) error {
	switch c.Type {
	case models.CaseTypeTempBan:
		banned, err := s.bans.IsBanned(ctx, c.GuildID, c.TargetID)
		if err != nil {
			return err
		}
		// Unban only while the ban is still in place; a target unbanned out
		// of band skips straight to settling the case.
		if banned {
			if err := s.bans.Unban(ctx, c.GuildID, c.TargetID); err != nil {
				return err
			}
		}
	case models.CaseTypeJail:
		if err := s.jails.RestoreRoles(ctx, c.GuildID, c.TargetID, c.RoleSnapshot); err != nil {
			return err
		}
	}
	return s.cases.SetStatus(ctx, c.ID, false)
}
