package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"

	"github.com/allthingslinux/tux/tux"
	"github.com/allthingslinux/tux/tux/database/repositories"
	"github.com/allthingslinux/tux/tux/utils"
)

var Ticket = discord.SlashCommandCreate{
	Name:         "ticket",
	Description:  "Support tickets",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "open",
			Description: "Track this channel as a ticket",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "close",
			Description: "Close this ticket and archive its transcript",
		},
	},
}

func TicketHandler(b *tux.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		if data.SubCommandName == nil || e.GuildID() == nil {
			return respondError(e, "Unknown subcommand.")
		}

		guildID := e.GuildID().String()
		channelID := e.ChannelID().String()

		switch *data.SubCommandName {
		case "open":
			ctx, cancel := commandCtx()
			defer cancel()

			if _, err := b.Tickets.Open(ctx, guildID, channelID, e.User().ID.String()); err != nil {
				return respondError(e, "Failed to open a ticket for this channel.")
			}
			return respondSuccess(e, "Ticket opened",
				"This channel is now tracked. Close it with `/ticket close`.")

		case "close":
			// Archiving walks the whole channel history; acknowledge first.
			if err := e.DeferCreateMessage(false); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			ticket, err := b.Tickets.Close(ctx, guildID, channelID)
			if errors.Is(err, repositories.ErrTicketNotFound) {
				_, err = e.CreateFollowupMessage(discord.MessageCreate{
					Embeds: []discord.Embed{utils.ErrorEmbed("This channel has no open ticket.")},
				})
				return err
			}
			if err != nil {
				_, err = e.CreateFollowupMessage(discord.MessageCreate{
					Embeds: []discord.Embed{utils.ErrorEmbed("Failed to close the ticket.")},
				})
				return err
			}

			embed := utils.SuccessEmbed("Ticket closed",
				fmt.Sprintf("Opened by <@%s>.\n[Transcript](%s)", ticket.OwnerID, ticket.ArchiveURL))
			if _, err = e.CreateFollowupMessage(discord.MessageCreate{
				Embeds: []discord.Embed{embed},
			}); err != nil {
				return err
			}

			postToModLogTicket(ctx, b, guildID, embed)
			return nil

		default:
			return respondError(e, "Unknown subcommand.")
		}
	}
}

func postToModLogTicket(ctx context.Context, b *tux.Bot, guildID string, embed discord.Embed) {
	cfg, err := b.GuildConfigRepository.Get(ctx, guildID)
	if err != nil || cfg.ModLogChannelID == "" {
		return
	}
	if channelID, parseErr := snowflake.Parse(cfg.ModLogChannelID); parseErr == nil {
		_, _ = b.Client.Rest().CreateMessage(channelID, discord.MessageCreate{
			Embeds: []discord.Embed{embed},
		})
	}
}
