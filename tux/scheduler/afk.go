package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/allthingslinux/tux/tux/database/repositories"
)

// NicknameRestorer puts a member's saved nickname back.
type NicknameRestorer interface {
	SetNickname(ctx context.Context, guildID, memberID, nickname string) error
}

// AFKSweep clears AFK entries whose timer has run out: restore the saved
// nickname, then delete the row. Permanent entries are never touched.
type AFKSweep struct {
	afk   repositories.AFKRepository
	nicks NicknameRestorer
}

func NewAFKSweep(afk repositories.AFKRepository, nicks NicknameRestorer) *AFKSweep {
	return &AFKSweep{afk: afk, nicks: nicks}
}

// Sweeper wraps the tick in a 120s loop.
func (s *AFKSweep) Sweeper() *Sweeper {
	return NewSweeper("afk-expiry", 2*time.Minute, s.Tick)
}

func (s *AFKSweep) Tick(ctx context.Context) (int, int) {
	expired, err := s.afk.ListExpired(ctx, time.Now())
	if err != nil {
		slog.Error("Failed to fetch expired AFK entries",
			slog.String("type", "sweep"),
			slog.Any("error", err))
		return 0, 0
	}

	failed := 0
	for _, entry := range expired {
		if err := s.expireOne(ctx, entry); err != nil {
			failed++
			slog.Error("Failed to clear AFK entry",
				slog.String("type", "sweep"),
				slog.String("guild_id", entry.GuildID),
				slog.String("member_id", entry.MemberID),
				slog.Any("error", err))
		}
	}
	return len(expired), failed
}

func (s *AFKSweep) expireOne(ctx context.Context, entry *models.AFKEntry) error {
	// The AFK tag is applied even to members with no prior nickname, so the
	// update always goes out (an empty nickname clears the tag). Best effort:
	// the member may have left, or the bot may lack permission over them.
	if err := s.nicks.SetNickname(ctx, entry.GuildID, entry.MemberID, entry.Nickname); err != nil {
		slog.Warn("Failed to restore nickname",
			slog.String("type", "sweep"),
			slog.String("guild_id", entry.GuildID),
			slog.String("member_id", entry.MemberID),
			slog.Any("error", err))
	}
	return s.afk.Delete(ctx, entry.GuildID, entry.MemberID)
}
