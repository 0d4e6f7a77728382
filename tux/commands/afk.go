package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/disgo/rest"

	"github.com/allthingslinux/tux/tux"
	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/allthingslinux/tux/tux/utils"
)

const afkNickPrefix = "[AFK] "

// Discord nickname hard limit.
const maxNickLength = 32

var AFK = discord.SlashCommandCreate{
	Name:         "afk",
	Description:  "Mark yourself away",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "reason",
			Description: "Why you are away",
		},
		discord.ApplicationCommandOptionString{
			Name:        "duration",
			Description: "Auto-clear after this long (e.g. 2h, 1d)",
		},
		discord.ApplicationCommandOptionBool{
			Name:        "permanent",
			Description: "Stay AFK until you run the command again",
		},
	},
}

func AFKHandler(b *tux.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		if e.GuildID() == nil {
			return respondError(e, "This command can only be used in a server.")
		}

		ctx, cancel := commandCtx()
		defer cancel()

		guildID := e.GuildID().String()
		memberID := e.User().ID.String()

		// Running the command while permanently AFK clears it.
		if existing, err := b.AFKRepository.Get(ctx, guildID, memberID); err == nil && existing.Permanent {
			if err := b.AFKRepository.Delete(ctx, guildID, memberID); err != nil {
				return respondError(e, "Failed to clear your AFK status.")
			}
			restoreNick(e, existing.Nickname)
			return respondSuccess(e, "Welcome back", "Your AFK status has been cleared.")
		}

		reason := orDefault(data.String("reason"), "AFK")
		permanent := data.Bool("permanent")

		var until *time.Time
		if raw, ok := data.OptString("duration"); ok && !permanent {
			d, err := utils.ParseDuration(raw)
			if err != nil {
				return respondError(e, fmt.Sprintf("Invalid duration %q.", raw))
			}
			t := time.Now().Add(d)
			until = &t
		}

		currentNick := ""
		if member := e.Member(); member != nil && member.Nick != nil {
			currentNick = *member.Nick
		}

		entry := &models.AFKEntry{
			MemberID:  memberID,
			GuildID:   guildID,
			Reason:    reason,
			Since:     time.Now(),
			Until:     until,
			Permanent: permanent,
			Nickname:  currentNick,
		}
		if err := b.AFKRepository.Set(ctx, entry); err != nil {
			return respondError(e, "Failed to set your AFK status.")
		}

		// Tag the nickname so others see the state without pinging. Best
		// effort: the bot cannot rename the server owner.
		display := currentNick
		if display == "" {
			display = e.User().Username
		}
		tagged := afkNickPrefix + display
		if len(tagged) > maxNickLength {
			tagged = tagged[:maxNickLength]
		}
		if _, err := e.Client().Rest().UpdateMember(*e.GuildID(), e.User().ID, discord.MemberUpdate{
			Nick: &tagged,
		}, rest.WithCtx(ctx)); err != nil {
			slog.Warn("Failed to tag AFK nickname", slog.Any("error", err))
		}

		msg := fmt.Sprintf("You are now AFK: %s", reason)
		if until != nil {
			msg += fmt.Sprintf(" (clears <t:%d:R>)", until.Unix())
		}
		if permanent {
			msg += " (until you run /afk again)"
		}
		return respondSuccess(e, "AFK set", msg)
	}
}

func restoreNick(e *handler.CommandEvent, nickname string) {
	if e.GuildID() == nil {
		return
	}
	if _, err := e.Client().Rest().UpdateMember(*e.GuildID(), e.User().ID, discord.MemberUpdate{
		Nick: &nickname,
	}); err != nil {
		slog.Warn("Failed to restore nickname", slog.Any("error", err))
	}
}
