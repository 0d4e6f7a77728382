package commands

import (
	"testing"

	"github.com/disgoorg/disgo/discord"
)

// Every command except the reminder pair operates on guild state, so the
// definitions must refuse DM invocation up front.
func TestCommands_GuildOnly(t *testing.T) {
	dmAllowed := map[string]bool{
		"remindme":  true,
		"reminders": true,
	}

	for _, cmd := range Commands {
		slash, ok := cmd.(discord.SlashCommandCreate)
		if !ok {
			t.Fatalf("command %q is not a slash command", cmd.CommandName())
		}
		if dmAllowed[slash.Name] {
			if slash.DMPermission != nil && !*slash.DMPermission {
				t.Errorf("%s should be usable in DMs", slash.Name)
			}
			continue
		}
		if slash.DMPermission == nil || *slash.DMPermission {
			t.Errorf("%s is invocable from DMs but requires a guild", slash.Name)
		}
	}
}
