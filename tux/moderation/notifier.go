package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/allthingslinux/tux/tux/utils"
)

// Notification describes what the target is told about an action taken
// against them.
type Notification struct {
	GuildName string
	Verb      string
	Reason    string
	ExpiresAt *time.Time
}

// Notifier delivers a best-effort DM. Implementations must never propagate a
// delivery failure; the boolean only feeds the response wording.
type Notifier interface {
	Notify(ctx context.Context, userID string, n Notification, silent bool) bool
}

// DMNotifier sends the notification over a DM channel via the Discord REST
// API.
type DMNotifier struct {
	client bot.Client
}

func NewDMNotifier(client bot.Client) *DMNotifier {
	return &DMNotifier{client: client}
}

func (d *DMNotifier) Notify(ctx context.Context, userID string, n Notification, silent bool) bool {
	if silent {
		return false
	}

	id, err := snowflake.Parse(userID)
	if err != nil {
		slog.Warn("Invalid user id for DM notification",
			slog.String("type", "mod"),
			slog.String("user_id", userID))
		return false
	}

	channel, err := d.client.Rest().CreateDMChannel(id, rest.WithCtx(ctx))
	if err != nil {
		slog.Warn("Failed to open DM channel",
			slog.String("type", "mod"),
			slog.String("user_id", userID),
			slog.Any("error", err))
		return false
	}

	description := fmt.Sprintf("You have been **%s** in **%s**.", n.Verb, n.GuildName)
	if n.Reason != "" {
		description += fmt.Sprintf("\n\n**Reason:** %s", n.Reason)
	}
	if n.ExpiresAt != nil {
		description += fmt.Sprintf("\n**Expires:** <t:%d:R>", n.ExpiresAt.Unix())
	}

	_, err = d.client.Rest().CreateMessage(channel.ID(), discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       "Moderation Notice",
			Description: description,
			Color:       utils.WarningColor,
		}},
	}, rest.WithCtx(ctx))
	if err != nil {
		slog.Warn("Failed to deliver DM notification",
			slog.String("type", "mod"),
			slog.String("user_id", userID),
			slog.Any("error", err))
		return false
	}
	return true
}
