package tux

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"

	"github.com/allthingslinux/tux/tux/database"
	"github.com/allthingslinux/tux/tux/database/repositories"
	"github.com/allthingslinux/tux/tux/leveling"
	"github.com/allthingslinux/tux/tux/moderation"
	"github.com/allthingslinux/tux/tux/starboard"
	"github.com/allthingslinux/tux/tux/tickets"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Version:   version,
		Commit:    commit,
	}
}

type Bot struct {
	Cfg       Config
	Client    bot.Client
	Paginator *paginator.Manager
	Version   string
	Commit    string
	DB        *database.DB

	CaseRepository        repositories.CaseRepository
	AFKRepository         repositories.AFKRepository
	LevelsRepository      repositories.LevelsRepository
	GuildConfigRepository repositories.GuildConfigRepository
	SnippetRepository     repositories.SnippetRepository
	StarboardRepository   repositories.StarboardRepository
	ReminderRepository    repositories.ReminderRepository
	TicketRepository      repositories.TicketRepository

	Executor     *moderation.Executor
	Restrictions *moderation.RestrictionChecker
	Notifier     moderation.Notifier
	Leveling     *leveling.Service
	Starboard    *starboard.Service
	Tickets      *tickets.Service
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(
			gateway.IntentGuilds,
			gateway.IntentGuildMembers,
			gateway.IntentGuildModeration,
			gateway.IntentGuildMessages,
			gateway.IntentGuildMessageReactions,
			gateway.IntentMessageContent,
		)),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds, cache.FlagMembers)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	return nil
}

func (b *Bot) OnReady(_ *events.Ready) {
	slog.Info("Tux is now ready",
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithWatchingActivity("over the server"),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence", slog.Any("error", err))
	}
}
