package handlers

import (
	"context"
	"log/slog"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"

	"github.com/allthingslinux/tux/tux/starboard"
	"github.com/allthingslinux/tux/tux/utils"
)

// ReactionListener feeds star reaction changes into the starboard service.
type ReactionListener struct {
	starboard *starboard.Service
}

func NewReactionListener(sb *starboard.Service) *ReactionListener {
	return &ReactionListener{starboard: sb}
}

func (l *ReactionListener) Listeners() []bot.EventListener {
	return []bot.EventListener{
		bot.NewListenerFunc(l.OnReactionAdd),
		bot.NewListenerFunc(l.OnReactionRemove),
	}
}

func (l *ReactionListener) OnReactionAdd(e *events.GuildMessageReactionAdd) {
	emoji := ""
	if e.Emoji.Name != nil {
		emoji = *e.Emoji.Name
	}
	l.handle(e.GuildID, e.ChannelID, e.MessageID, emoji)
}

func (l *ReactionListener) OnReactionRemove(e *events.GuildMessageReactionRemove) {
	emoji := ""
	if e.Emoji.Name != nil {
		emoji = *e.Emoji.Name
	}
	l.handle(e.GuildID, e.ChannelID, e.MessageID, emoji)
}

func (l *ReactionListener) handle(guildID, channelID, messageID snowflake.ID, emoji string) {
	ctx, cancel := context.WithTimeout(context.Background(), utils.DefaultQueryTimeout)
	defer cancel()

	if err := l.starboard.HandleReaction(ctx, guildID, channelID, messageID, emoji); err != nil {
		slog.Error("Starboard update failed",
			slog.String("message_id", messageID.String()),
			slog.Any("error", err))
	}
}
