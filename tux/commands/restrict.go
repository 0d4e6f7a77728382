package commands

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/allthingslinux/tux/tux"
	"github.com/allthingslinux/tux/tux/database/models"
)

// Poll and snippet bans are pure ledger restrictions: no Discord-side action,
// just a case whose presence other commands consult.

var PollBan = restrictionCommand("pollban", "Ban a member from creating polls")
var PollUnban = restrictionCommand("pollunban", "Allow a member to create polls again")
var SnippetBan = restrictionCommand("snippetban", "Ban a member from using snippets")
var SnippetUnban = restrictionCommand("snippetunban", "Allow a member to use snippets again")

func restrictionCommand(name, description string) discord.SlashCommandCreate {
	return discord.SlashCommandCreate{
		Name:         name,
		Description:  description,
		DMPermission: boolPtr(false),
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionUser{
				Name:        "user",
				Description: "The member",
				Required:    true,
			},
			discord.ApplicationCommandOptionString{
				Name:        "reason",
				Description: "Reason",
			},
			discord.ApplicationCommandOptionBool{
				Name:        "silent",
				Description: "Skip the DM notification",
			},
		},
	}
}

func PollBanHandler(b *tux.Bot) handler.CommandHandler {
	return restrictionHandler(b, models.CaseTypePollBan, true, b.Restrictions.IsPollBanned)
}

func PollUnbanHandler(b *tux.Bot) handler.CommandHandler {
	return restrictionHandler(b, models.CaseTypeUnpollBan, false, b.Restrictions.IsPollBanned)
}

func SnippetBanHandler(b *tux.Bot) handler.CommandHandler {
	return restrictionHandler(b, models.CaseTypeSnippetBan, true, b.Restrictions.IsSnippetBanned)
}

func SnippetUnbanHandler(b *tux.Bot) handler.CommandHandler {
	return restrictionHandler(b, models.CaseTypeUnsnippetBan, false, b.Restrictions.IsSnippetBanned)
}

// restrictionHandler applies or lifts a ledger restriction. wantRestricted is
// the state the command would be redundant in: pollban on an already
// poll-banned member is rejected, and likewise for the inverse.
func restrictionHandler(b *tux.Bot, caseType models.CaseType, wantRestricted bool, check func(context.Context, string, string) (bool, error)) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if e.GuildID() == nil {
			return respondError(e, "This command can only be used in a server.")
		}
		data := e.SlashCommandInteractionData()
		target := data.User("user")

		ctx, cancel := commandCtx()
		defer cancel()

		restricted, err := check(ctx, e.GuildID().String(), target.ID.String())
		if err != nil {
			return respondError(e, "Failed to check the member's restriction status.")
		}
		if restricted == wantRestricted {
			if wantRestricted {
				return respondError(e, fmt.Sprintf("%s is already under that restriction.", target.Username))
			}
			return respondError(e, fmt.Sprintf("%s is not under that restriction.", target.Username))
		}

		return runModeration(b, e, modRequest{
			caseType: caseType,
			target:   target,
			reason:   data.String("reason"),
			silent:   data.Bool("silent"),
		})
	}
}
