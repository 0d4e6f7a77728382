package models

import (
	"time"

	"github.com/uptrace/bun"
)

// CaseType names one moderation action. Every action and its reversal get
// their own type; the restriction checker derives on/off state from the
// latest case of either kind.
type CaseType string

const (
	CaseTypeBan          CaseType = "ban"
	CaseTypeUnban        CaseType = "unban"
	CaseTypeTempBan      CaseType = "tempban"
	CaseTypeKick         CaseType = "kick"
	CaseTypeTimeout      CaseType = "timeout"
	CaseTypeUntimeout    CaseType = "untimeout"
	CaseTypeWarn         CaseType = "warn"
	CaseTypeJail         CaseType = "jail"
	CaseTypeUnjail       CaseType = "unjail"
	CaseTypePollBan      CaseType = "pollban"
	CaseTypeUnpollBan    CaseType = "unpollban"
	CaseTypeSnippetBan   CaseType = "snippetban"
	CaseTypeUnsnippetBan CaseType = "unsnippetban"
)

// IsRemoval reports whether the action removes the target from the guild.
// Removal actions attempt the DM before executing, since the target can no
// longer be reached through the guild afterwards.
func (t CaseType) IsRemoval() bool {
	switch t {
	case CaseTypeBan, CaseTypeTempBan, CaseTypeKick:
		return true
	}
	return false
}

// Verb returns the past-tense verb used in DM and response wording.
func (t CaseType) Verb() string {
	switch t {
	case CaseTypeBan:
		return "banned"
	case CaseTypeUnban:
		return "unbanned"
	case CaseTypeTempBan:
		return "temporarily banned"
	case CaseTypeKick:
		return "kicked"
	case CaseTypeTimeout:
		return "timed out"
	case CaseTypeUntimeout:
		return "released from timeout"
	case CaseTypeWarn:
		return "warned"
	case CaseTypeJail:
		return "jailed"
	case CaseTypeUnjail:
		return "released from jail"
	case CaseTypePollBan:
		return "poll banned"
	case CaseTypeUnpollBan:
		return "poll unbanned"
	case CaseTypeSnippetBan:
		return "snippet banned"
	case CaseTypeUnsnippetBan:
		return "snippet unbanned"
	}
	return string(t)
}

// Case is the persistent record of one moderation action. Case numbers are
// unique and increasing within a guild; rows are never deleted, only their
// status and reason change.
type Case struct {
	bun.BaseModel `bun:"table:cases,alias:c"`

	ID           int64      `bun:"id,pk,autoincrement"`
	GuildID      string     `bun:"guild_id,notnull"`
	CaseNumber   int        `bun:"case_number,notnull"`
	Type         CaseType   `bun:"type,notnull"`
	TargetID     string     `bun:"target_id,notnull"`
	ModeratorID  string     `bun:"moderator_id,notnull"`
	Reason       string     `bun:"reason"`
	Status       bool       `bun:"status,notnull,default:true"`
	ExpiresAt    *time.Time `bun:"expires_at"`
	RoleSnapshot []string   `bun:"role_snapshot,array"`
	LogMessageID string     `bun:"log_message_id"`
	CreatedAt    time.Time  `bun:"created_at,notnull,default:current_timestamp"`
}
