package models

import (
	"time"

	"github.com/uptrace/bun"
)

type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "open"
	TicketStatusClosed TicketStatus = "closed"
)

// Ticket tracks a support channel. ArchiveURL points at the transcript
// uploaded to object storage when the ticket closes.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets,alias:tk"`

	ID         int64        `bun:"id,pk,autoincrement"`
	GuildID    string       `bun:"guild_id,notnull"`
	ChannelID  string       `bun:"channel_id,notnull"`
	OwnerID    string       `bun:"owner_id,notnull"`
	Status     TicketStatus `bun:"status,notnull,default:'open'"`
	ArchiveURL string       `bun:"archive_url"`
	CreatedAt  time.Time    `bun:"created_at,notnull,default:current_timestamp"`
	ClosedAt   *time.Time   `bun:"closed_at"`
}
