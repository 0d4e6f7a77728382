package models

import (
	"time"

	"github.com/uptrace/bun"
)

// StarboardEntry links an original message to its posted starboard message.
type StarboardEntry struct {
	bun.BaseModel `bun:"table:starboard_entries,alias:sb"`

	ID                 int64     `bun:"id,pk,autoincrement"`
	GuildID            string    `bun:"guild_id,notnull"`
	ChannelID          string    `bun:"channel_id,notnull"`
	MessageID          string    `bun:"message_id,notnull"`
	AuthorID           string    `bun:"author_id,notnull"`
	StarboardMessageID string    `bun:"starboard_message_id,notnull"`
	StarCount          int       `bun:"star_count,notnull"`
	CreatedAt          time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
