package models

import (
	"github.com/uptrace/bun"
)

// GuildConfig holds per-guild settings, one row per guild, upserted by the
// /config command.
type GuildConfig struct {
	bun.BaseModel `bun:"table:guild_configs,alias:gc"`

	GuildID            string `bun:"guild_id,pk"`
	ModLogChannelID    string `bun:"mod_log_channel_id"`
	JailRoleID         string `bun:"jail_role_id"`
	JailChannelID      string `bun:"jail_channel_id"`
	StarboardChannelID string `bun:"starboard_channel_id"`
	StarboardEmoji     string `bun:"starboard_emoji,default:'⭐'"`
	StarboardThreshold int    `bun:"starboard_threshold,notnull,default:3"`
	StarboardSelfStar  bool   `bun:"starboard_self_star,notnull,default:false"`
	XPBlockedChannels  []string `bun:"xp_blocked_channels,array"`
}
