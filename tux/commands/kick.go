package commands

import (
	"context"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/disgo/rest"

	"github.com/allthingslinux/tux/tux"
	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/allthingslinux/tux/tux/moderation"
)

var Kick = discord.SlashCommandCreate{
	Name:         "kick",
	Description:  "Kick a member from the server",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The member to kick",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "reason",
			Description: "Reason for the kick",
		},
		discord.ApplicationCommandOptionBool{
			Name:        "silent",
			Description: "Skip the DM notification",
		},
	},
}

func KickHandler(b *tux.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		target := data.User("user")

		return runModeration(b, e, modRequest{
			caseType: models.CaseTypeKick,
			target:   target,
			reason:   data.String("reason"),
			silent:   data.Bool("silent"),
			actions: []moderation.Action{{
				Name: "kick",
				Run: func(ctx context.Context) error {
					return e.Client().Rest().RemoveMember(*e.GuildID(), target.ID, rest.WithCtx(ctx))
				},
			}},
		})
	}
}
