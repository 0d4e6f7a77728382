package leveling

import (
	"context"
	"errors"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/allthingslinux/tux/tux/database/repositories"
)

const cooldownCacheSize = 10000

// RoleSyncer applies level-tier roles to a member.
type RoleSyncer interface {
	AddRole(ctx context.Context, guildID, memberID, roleID string) error
	RemoveRole(ctx context.Context, guildID, memberID, roleID string) error
}

// RoleTier binds a role to the level that unlocks it.
type RoleTier struct {
	Level  int
	RoleID string
}

type Config struct {
	Exponent     float64
	XPPerMessage float64
	Cooldown     time.Duration
	MaxLevel     int
	Tiers        []RoleTier
}

// LevelUp is returned when a message pushed a member over a level boundary.
type LevelUp struct {
	OldLevel int
	NewLevel int
	XP       float64
}

// Service awards message XP, cooldown-gated per (guild, member) through an
// in-process LRU so a hot channel does not hit the database on every message.
type Service struct {
	levels repositories.LevelsRepository
	roles  RoleSyncer
	calc   *Calculator
	cfg    Config
	recent *lru.Cache
}

func NewService(levels repositories.LevelsRepository, roles RoleSyncer, cfg Config) *Service {
	if cfg.XPPerMessage <= 0 {
		cfg.XPPerMessage = 15
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = time.Minute
	}
	if cfg.MaxLevel <= 0 {
		cfg.MaxLevel = 1000
	}

	cache, _ := lru.New(cooldownCacheSize)
	return &Service{
		levels: levels,
		roles:  roles,
		calc:   NewCalculator(cfg.Exponent),
		cfg:    cfg,
		recent: cache,
	}
}

func (s *Service) Calculator() *Calculator {
	return s.calc
}

// HandleMessage awards XP for one qualifying message. It returns a non-nil
// LevelUp when the member crossed a level boundary, and (nil, nil) when the
// message was ignored (cooldown, blacklist).
func (s *Service) HandleMessage(ctx context.Context, guildID, memberID string) (*LevelUp, error) {
	key := guildID + ":" + memberID
	now := time.Now()

	if v, ok := s.recent.Get(key); ok {
		if last, ok := v.(time.Time); ok && now.Sub(last) < s.cfg.Cooldown {
			return nil, nil
		}
	}

	record, err := s.levels.GetOrCreate(ctx, guildID, memberID)
	if err != nil {
		return nil, err
	}
	if record.Blacklisted {
		return nil, nil
	}

	s.recent.Add(key, now)

	oldLevel := record.Level
	record.XP += s.cfg.XPPerMessage
	newLevel := s.calc.LevelForXP(record.XP)
	if newLevel > s.cfg.MaxLevel {
		newLevel = s.cfg.MaxLevel
	}
	record.Level = newLevel
	record.LastMessageAt = now

	if err := s.levels.Update(ctx, record); err != nil {
		return nil, err
	}

	if newLevel <= oldLevel {
		return nil, nil
	}

	if err := s.SyncRoles(ctx, guildID, memberID, newLevel); err != nil {
		// Role sync is best effort; the XP award already happened.
		slog.Warn("Level role sync failed",
			slog.String("guild_id", guildID),
			slog.String("member_id", memberID),
			slog.Any("error", err))
	}

	return &LevelUp{OldLevel: oldLevel, NewLevel: newLevel, XP: record.XP}, nil
}

// SetXP overwrites a member's XP total, creating the record when the member
// has never earned XP, and returns the resulting level. Tier roles are synced
// best effort.
func (s *Service) SetXP(ctx context.Context, guildID, memberID string, xp float64) (int, error) {
	record, err := s.levels.GetOrCreate(ctx, guildID, memberID)
	if err != nil {
		return 0, err
	}

	level := s.calc.LevelForXP(xp)
	if level > s.cfg.MaxLevel {
		level = s.cfg.MaxLevel
	}
	record.XP = xp
	record.Level = level

	if err := s.levels.Update(ctx, record); err != nil {
		return 0, err
	}

	if err := s.SyncRoles(ctx, guildID, memberID, level); err != nil {
		slog.Warn("Level role sync failed",
			slog.String("guild_id", guildID),
			slog.String("member_id", memberID),
			slog.Any("error", err))
	}
	return level, nil
}

// ResetXP zeroes a member's XP and level, creating the record when the member
// has never earned XP. Tier roles are synced best effort.
func (s *Service) ResetXP(ctx context.Context, guildID, memberID string) error {
	record, err := s.levels.GetOrCreate(ctx, guildID, memberID)
	if err != nil {
		return err
	}

	record.XP = 0
	record.Level = 0
	if err := s.levels.Update(ctx, record); err != nil {
		return err
	}

	if err := s.SyncRoles(ctx, guildID, memberID, 0); err != nil {
		slog.Warn("Level role sync failed",
			slog.String("guild_id", guildID),
			slog.String("member_id", memberID),
			slog.Any("error", err))
	}
	return nil
}

// SetBlacklisted flips a member's XP exclusion, creating the record when the
// member has never earned XP.
func (s *Service) SetBlacklisted(ctx context.Context, guildID, memberID string, blacklisted bool) error {
	if _, err := s.levels.GetOrCreate(ctx, guildID, memberID); err != nil {
		return err
	}
	return s.levels.SetBlacklisted(ctx, guildID, memberID, blacklisted)
}

// SyncRoles makes the member's tier roles match a level: every tier at or
// below the level is added, every tier above it removed.
func (s *Service) SyncRoles(ctx context.Context, guildID, memberID string, level int) error {
	if s.roles == nil {
		return nil
	}

	var errs []error
	for _, tier := range s.cfg.Tiers {
		var err error
		if tier.Level <= level {
			err = s.roles.AddRole(ctx, guildID, memberID, tier.RoleID)
		} else {
			err = s.roles.RemoveRole(ctx, guildID, memberID, tier.RoleID)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
