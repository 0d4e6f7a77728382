package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Reminder is delivered by the reminder sweep once ExpiresAt passes, then
// deleted. ChannelID is the fallback delivery target when the DM fails.
type Reminder struct {
	bun.BaseModel `bun:"table:reminders,alias:rm"`

	ID        int64     `bun:"id,pk,autoincrement"`
	UserID    string    `bun:"user_id,notnull"`
	GuildID   string    `bun:"guild_id"`
	ChannelID string    `bun:"channel_id,notnull"`
	Content   string    `bun:"content,notnull"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
