package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/json"

	"github.com/allthingslinux/tux/tux"
	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/allthingslinux/tux/tux/moderation"
	"github.com/allthingslinux/tux/tux/utils"
)

// Discord caps timeouts at 28 days.
const maxTimeout = 28 * 24 * time.Hour

var Timeout = discord.SlashCommandCreate{
	Name:         "timeout",
	Description:  "Time a member out",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The member to time out",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "duration",
			Description: "How long (e.g. 10m, 1h, 1d; max 28d)",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "reason",
			Description: "Reason for the timeout",
		},
		discord.ApplicationCommandOptionBool{
			Name:        "silent",
			Description: "Skip the DM notification",
		},
	},
}

func TimeoutHandler(b *tux.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		target := data.User("user")

		duration, err := utils.ParseDuration(data.String("duration"))
		if err != nil {
			return respondError(e, fmt.Sprintf("Invalid duration %q. Use forms like 10m, 1h or 1d.", data.String("duration")))
		}
		if duration > maxTimeout {
			return respondError(e, "Timeouts cannot exceed 28 days.")
		}

		return runModeration(b, e, modRequest{
			caseType: models.CaseTypeTimeout,
			target:   target,
			reason:   data.String("reason"),
			duration: duration,
			silent:   data.Bool("silent"),
			actions: []moderation.Action{{
				Name: "timeout",
				Run: func(ctx context.Context) error {
					until := json.NewNullable(time.Now().Add(duration))
					_, err := e.Client().Rest().UpdateMember(*e.GuildID(), target.ID, discord.MemberUpdate{
						CommunicationDisabledUntil: &until,
					}, rest.WithCtx(ctx))
					return err
				},
			}},
		})
	}
}

var Untimeout = discord.SlashCommandCreate{
	Name:         "untimeout",
	Description:  "Lift a member's timeout",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The member to release",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "reason",
			Description: "Reason for lifting the timeout",
		},
	},
}

func UntimeoutHandler(b *tux.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		target := data.User("user")

		return runModeration(b, e, modRequest{
			caseType: models.CaseTypeUntimeout,
			target:   target,
			reason:   data.String("reason"),
			actions: []moderation.Action{{
				Name: "untimeout",
				Run: func(ctx context.Context) error {
					cleared := json.Null[time.Time]()
					_, err := e.Client().Rest().UpdateMember(*e.GuildID(), target.ID, discord.MemberUpdate{
						CommunicationDisabledUntil: &cleared,
					}, rest.WithCtx(ctx))
					return err
				},
			}},
		})
	}
}
