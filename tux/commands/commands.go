package commands

import (
	"github.com/disgoorg/disgo/discord"
)

var Commands = []discord.ApplicationCommandCreate{
	// moderation
	Ban,
	TempBan,
	Unban,
	Kick,
	Timeout,
	Untimeout,
	Warn,
	Jail,
	Unjail,
	PollBan,
	PollUnban,
	SnippetBan,
	SnippetUnban,
	Cases,

	// community
	AFK,
	Rank,
	Leaderboard,
	XP,
	Snippet,
	RemindMe,
	Reminders,
	Ticket,

	// admin
	ConfigCmd,
}
