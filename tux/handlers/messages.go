package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"

	"github.com/allthingslinux/tux/tux/database/repositories"
	"github.com/allthingslinux/tux/tux/leveling"
	"github.com/allthingslinux/tux/tux/moderation"
	"github.com/allthingslinux/tux/tux/utils"
)

// MessageListener reacts to guild messages: removes polls from poll-banned
// members, clears the author's AFK status, answers mentions of AFK members,
// and awards message XP.
type MessageListener struct {
	afk          repositories.AFKRepository
	configs      repositories.GuildConfigRepository
	levels       *leveling.Service
	restrictions *moderation.RestrictionChecker
}

func NewMessageListener(afk repositories.AFKRepository, configs repositories.GuildConfigRepository, levels *leveling.Service, restrictions *moderation.RestrictionChecker) *MessageListener {
	return &MessageListener{afk: afk, configs: configs, levels: levels, restrictions: restrictions}
}

// Listener adapts the handler to a disgo event listener.
func (l *MessageListener) Listener() bot.EventListener {
	return bot.NewListenerFunc(l.OnMessageCreate)
}

func (l *MessageListener) OnMessageCreate(e *events.MessageCreate) {
	if e.Message.Author.Bot || e.GuildID == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), utils.DefaultQueryTimeout)
	defer cancel()

	guildID := e.GuildID.String()
	authorID := e.Message.Author.ID.String()

	if l.removeBannedPoll(ctx, e, guildID, authorID) {
		return
	}

	l.clearAFKReturn(ctx, e, guildID, authorID)
	l.noticeAFKMentions(ctx, e, guildID)
	l.awardXP(ctx, e, guildID, authorID)
}

// clearAFKReturn removes a non-permanent AFK entry when its owner speaks
// again and restores their previous nickname.
func (l *MessageListener) clearAFKReturn(ctx context.Context, e *events.MessageCreate, guildID, authorID string) {
	entry, err := l.afk.Get(ctx, guildID, authorID)
	if errors.Is(err, repositories.ErrAFKNotFound) {
		return
	}
	if err != nil {
		slog.Error("Failed to look up AFK entry", slog.Any("error", err))
		return
	}
	if entry.Permanent {
		return
	}

	// The tag is applied even to members with no prior nickname, so the
	// update always goes out; an empty Nick clears it.
	if _, err := e.Client().Rest().UpdateMember(*e.GuildID, e.Message.Author.ID, discord.MemberUpdate{
		Nick: &entry.Nickname,
	}, rest.WithCtx(ctx)); err != nil {
		slog.Warn("Failed to restore nickname after AFK",
			slog.String("member_id", authorID),
			slog.Any("error", err))
	}

	if err := l.afk.Delete(ctx, guildID, authorID); err != nil {
		slog.Error("Failed to clear AFK entry", slog.Any("error", err))
		return
	}

	gone := utils.FormatDuration(time.Since(entry.Since))
	l.reply(ctx, e, fmt.Sprintf("Welcome back <@%s>! You were AFK for %s.", authorID, gone))
}

// removeBannedPoll deletes polls posted by poll-banned members. Reports
// whether the message was removed.
func (l *MessageListener) removeBannedPoll(ctx context.Context, e *events.MessageCreate, guildID, authorID string) bool {
	if e.Message.Poll == nil {
		return false
	}

	banned, err := l.restrictions.IsPollBanned(ctx, guildID, authorID)
	if err != nil {
		slog.Error("Failed to check poll restriction",
			slog.String("member_id", authorID),
			slog.Any("error", err))
		return false
	}
	if !banned {
		return false
	}

	if err := e.Client().Rest().DeleteMessage(e.Message.ChannelID, e.Message.ID, rest.WithCtx(ctx)); err != nil {
		slog.Warn("Failed to remove poll from poll-banned member",
			slog.String("member_id", authorID),
			slog.Any("error", err))
		return true
	}

	// The original message is gone, so this cannot be a reply.
	if _, err := e.Client().Rest().CreateMessage(e.Message.ChannelID, discord.MessageCreate{
		Content: fmt.Sprintf("<@%s> you are banned from creating polls.", authorID),
	}, rest.WithCtx(ctx)); err != nil {
		slog.Warn("Failed to send poll removal notice", slog.Any("error", err))
	}
	return true
}

// noticeAFKMentions tells the author when someone they mentioned is AFK.
func (l *MessageListener) noticeAFKMentions(ctx context.Context, e *events.MessageCreate, guildID string) {
	for _, mentioned := range e.Message.Mentions {
		if mentioned.Bot || mentioned.ID == e.Message.Author.ID {
			continue
		}
		entry, err := l.afk.Get(ctx, guildID, mentioned.ID.String())
		if errors.Is(err, repositories.ErrAFKNotFound) {
			continue
		}
		if err != nil {
			slog.Error("Failed to look up mentioned AFK entry", slog.Any("error", err))
			continue
		}

		notice := fmt.Sprintf("%s is AFK: %s (since <t:%d:R>)",
			mentioned.Username, entry.Reason, entry.Since.Unix())
		l.reply(ctx, e, notice)
	}
}

func (l *MessageListener) awardXP(ctx context.Context, e *events.MessageCreate, guildID, authorID string) {
	cfg, err := l.configs.Get(ctx, guildID)
	if err != nil {
		slog.Error("Failed to load guild config for XP award", slog.Any("error", err))
		return
	}
	if slices.Contains(cfg.XPBlockedChannels, e.Message.ChannelID.String()) {
		return
	}

	levelUp, err := l.levels.HandleMessage(ctx, guildID, authorID)
	if err != nil {
		slog.Error("Failed to award message XP",
			slog.String("member_id", authorID),
			slog.Any("error", err))
		return
	}
	if levelUp == nil {
		return
	}

	l.reply(ctx, e, fmt.Sprintf("<@%s> reached level **%d**!", authorID, levelUp.NewLevel))
}

func (l *MessageListener) reply(ctx context.Context, e *events.MessageCreate, content string) {
	if _, err := e.Client().Rest().CreateMessage(e.Message.ChannelID, discord.MessageCreate{
		Content: content,
		MessageReference: &discord.MessageReference{
			MessageID: &e.Message.ID,
		},
		AllowedMentions: &discord.AllowedMentions{
			RepliedUser: false,
			Parse:       []discord.AllowedMentionType{discord.AllowedMentionTypeUsers},
		},
	}, rest.WithCtx(ctx)); err != nil {
		slog.Warn("Failed to send reply", slog.Any("error", err))
	}
}
