package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/allthingslinux/tux/tux"
	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/allthingslinux/tux/tux/utils"
)

var RemindMe = discord.SlashCommandCreate{
	Name:        "remindme",
	Description: "Get a reminder later",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "in",
			Description: "When (e.g. 20m, 3h, 2d)",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "about",
			Description: "What to remind you of",
			Required:    true,
		},
	},
}

func RemindMeHandler(b *tux.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()

		delay, err := utils.ParseDuration(data.String("in"))
		if err != nil {
			return respondError(e, fmt.Sprintf("Invalid delay %q. Use forms like 20m, 3h or 2d.", data.String("in")))
		}

		ctx, cancel := commandCtx()
		defer cancel()

		reminder := &models.Reminder{
			UserID:    e.User().ID.String(),
			ChannelID: e.ChannelID().String(),
			Content:   data.String("about"),
			ExpiresAt: time.Now().Add(delay),
			CreatedAt: time.Now(),
		}
		if e.GuildID() != nil {
			reminder.GuildID = e.GuildID().String()
		}
		if err := b.ReminderRepository.Create(ctx, reminder); err != nil {
			return respondError(e, "Failed to save the reminder.")
		}

		return respondSuccess(e, "Reminder set",
			fmt.Sprintf("I will remind you <t:%d:R>: %s", reminder.ExpiresAt.Unix(), reminder.Content))
	}
}

var Reminders = discord.SlashCommandCreate{
	Name:        "reminders",
	Description: "List or cancel your reminders",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "list",
			Description: "Show your pending reminders",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "cancel",
			Description: "Cancel a reminder",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "id",
					Description: "The reminder id from /reminders list",
					Required:    true,
					MinValue:    intPtr(1),
				},
			},
		},
	},
}

func RemindersHandler(b *tux.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		if data.SubCommandName == nil {
			return respondError(e, "Unknown subcommand.")
		}

		ctx, cancel := commandCtx()
		defer cancel()

		userID := e.User().ID.String()

		switch *data.SubCommandName {
		case "list":
			reminders, err := b.ReminderRepository.ListByUser(ctx, userID)
			if err != nil {
				return respondError(e, "Failed to load your reminders.")
			}
			if len(reminders) == 0 {
				return e.CreateMessage(discord.MessageCreate{
					Embeds: []discord.Embed{utils.InfoEmbed("Reminders", "You have no pending reminders.")},
					Flags:  discord.MessageFlagEphemeral,
				})
			}
			var description strings.Builder
			for _, r := range reminders {
				fmt.Fprintf(&description, "`%d` <t:%d:R> — %s\n", r.ID, r.ExpiresAt.Unix(), r.Content)
			}
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{utils.InfoEmbed("Reminders", description.String())},
				Flags:  discord.MessageFlagEphemeral,
			})

		case "cancel":
			id := int64(data.Int("id"))
			reminders, err := b.ReminderRepository.ListByUser(ctx, userID)
			if err != nil {
				return respondError(e, "Failed to load your reminders.")
			}
			owned := false
			for _, r := range reminders {
				if r.ID == id {
					owned = true
					break
				}
			}
			if !owned {
				return respondError(e, "That reminder does not exist or is not yours.")
			}
			if err := b.ReminderRepository.Delete(ctx, id); err != nil {
				return respondError(e, "Failed to cancel the reminder.")
			}
			return respondSuccess(e, "Reminder cancelled", fmt.Sprintf("Reminder `%d` is gone.", id))

		default:
			return respondError(e, "Unknown subcommand.")
		}
	}
}
