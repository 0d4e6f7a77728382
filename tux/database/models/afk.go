package models

import (
	"time"

	"github.com/uptrace/bun"
)

// AFKEntry marks a member as away. Nickname holds the name to restore when
// the entry clears. Permanent entries survive messages and the expiry sweep
// and only clear on an explicit request.
type AFKEntry struct {
	bun.BaseModel `bun:"table:afk_entries,alias:afk"`

	ID        int64      `bun:"id,pk,autoincrement"`
	MemberID  string     `bun:"member_id,notnull"`
	GuildID   string     `bun:"guild_id,notnull"`
	Reason    string     `bun:"reason"`
	Since     time.Time  `bun:"since,notnull"`
	Until     *time.Time `bun:"until"`
	Permanent bool       `bun:"permanent,notnull,default:false"`
	Nickname  string     `bun:"nickname"`
}
