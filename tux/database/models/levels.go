package models

import (
	"time"

	"github.com/uptrace/bun"
)

// LevelsRecord tracks a member's XP within one guild. Level is derived from
// XP by leveling.Calculator but stored alongside it so leaderboard queries
// and role sync need no recomputation.
type LevelsRecord struct {
	bun.BaseModel `bun:"table:levels,alias:lv"`

	ID            int64     `bun:"id,pk,autoincrement"`
	MemberID      string    `bun:"member_id,notnull"`
	GuildID       string    `bun:"guild_id,notnull"`
	XP            float64   `bun:"xp,notnull,default:0"`
	Level         int       `bun:"level,notnull,default:0"`
	LastMessageAt time.Time `bun:"last_message_at"`
	Blacklisted   bool      `bun:"blacklisted,notnull,default:false"`
}
