package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/disgo/rest"

	"github.com/allthingslinux/tux/tux"
	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/allthingslinux/tux/tux/moderation"
	"github.com/allthingslinux/tux/tux/utils"
)

var Ban = discord.SlashCommandCreate{
	Name:         "ban",
	Description:  "Ban a member from the server",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The member to ban",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "reason",
			Description: "Reason for the ban",
		},
		discord.ApplicationCommandOptionInt{
			Name:        "purge_days",
			Description: "Days of messages to delete (0-7)",
			MinValue:    intPtr(0),
			MaxValue:    intPtr(7),
		},
		discord.ApplicationCommandOptionBool{
			Name:        "silent",
			Description: "Skip the DM notification",
		},
	},
}

func BanHandler(b *tux.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		target := data.User("user")
		purgeDays, _ := data.OptInt("purge_days")

		return runModeration(b, e, modRequest{
			caseType: models.CaseTypeBan,
			target:   target,
			reason:   data.String("reason"),
			silent:   data.Bool("silent"),
			actions: []moderation.Action{{
				Name: "ban",
				Run: func(ctx context.Context) error {
					return e.Client().Rest().AddBan(*e.GuildID(), target.ID,
						time.Duration(purgeDays)*24*time.Hour, rest.WithCtx(ctx))
				},
			}},
		})
	}
}

var TempBan = discord.SlashCommandCreate{
	Name:         "tempban",
	Description:  "Ban a member for a limited time",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The member to ban",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "duration",
			Description: "How long the ban lasts (e.g. 1d, 2w, 1d12h)",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "reason",
			Description: "Reason for the ban",
		},
		discord.ApplicationCommandOptionBool{
			Name:        "silent",
			Description: "Skip the DM notification",
		},
	},
}

func TempBanHandler(b *tux.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		target := data.User("user")

		duration, err := utils.ParseDuration(data.String("duration"))
		if err != nil {
			return respondError(e, fmt.Sprintf("Invalid duration %q. Use forms like 30m, 1d or 1d12h.", data.String("duration")))
		}

		return runModeration(b, e, modRequest{
			caseType: models.CaseTypeTempBan,
			target:   target,
			reason:   data.String("reason"),
			duration: duration,
			silent:   data.Bool("silent"),
			actions: []moderation.Action{{
				Name: "ban",
				Run: func(ctx context.Context) error {
					return e.Client().Rest().AddBan(*e.GuildID(), target.ID, 0, rest.WithCtx(ctx))
				},
			}},
		})
	}
}

var Unban = discord.SlashCommandCreate{
	Name:         "unban",
	Description:  "Lift a ban",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The banned user",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "reason",
			Description: "Reason for the unban",
		},
	},
}

func UnbanHandler(b *tux.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		target := data.User("user")

		return runModeration(b, e, modRequest{
			caseType: models.CaseTypeUnban,
			target:   target,
			reason:   data.String("reason"),
			actions: []moderation.Action{{
				Name: "unban",
				Run: func(ctx context.Context) error {
					return e.Client().Rest().DeleteBan(*e.GuildID(), target.ID, rest.WithCtx(ctx))
				},
			}},
		})
	}
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }
