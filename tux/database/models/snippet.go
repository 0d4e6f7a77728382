package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Snippet is a named canned response, unique by (guild, name).
type Snippet struct {
	bun.BaseModel `bun:"table:snippets,alias:sn"`

	ID        int64     `bun:"id,pk,autoincrement"`
	GuildID   string    `bun:"guild_id,notnull"`
	Name      string    `bun:"name,notnull"`
	Content   string    `bun:"content,notnull"`
	AuthorID  string    `bun:"author_id,notnull"`
	Uses      int       `bun:"uses,notnull,default:0"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
