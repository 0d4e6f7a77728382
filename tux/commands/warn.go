package commands

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/allthingslinux/tux/tux"
	"github.com/allthingslinux/tux/tux/database/models"
)

var Warn = discord.SlashCommandCreate{
	Name:         "warn",
	Description:  "Warn a member",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The member to warn",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "reason",
			Description: "Reason for the warning",
			Required:    true,
		},
		discord.ApplicationCommandOptionBool{
			Name:        "silent",
			Description: "Skip the DM notification",
		},
	},
}

// Warnings have no Discord-side action; the case record and DM are the whole
// effect.
func WarnHandler(b *tux.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()

		return runModeration(b, e, modRequest{
			caseType: models.CaseTypeWarn,
			target:   data.User("user"),
			reason:   data.String("reason"),
			silent:   data.Bool("silent"),
		})
	}
}
