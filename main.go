package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"

	"github.com/allthingslinux/tux/tux"
	"github.com/allthingslinux/tux/tux/commands"
	"github.com/allthingslinux/tux/tux/database"
	"github.com/allthingslinux/tux/tux/database/repositories"
	"github.com/allthingslinux/tux/tux/handlers"
	"github.com/allthingslinux/tux/tux/leveling"
	"github.com/allthingslinux/tux/tux/logger"
	"github.com/allthingslinux/tux/tux/moderation"
	"github.com/allthingslinux/tux/tux/scheduler"
	"github.com/allthingslinux/tux/tux/starboard"
	"github.com/allthingslinux/tux/tux/tickets"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := tux.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}

	slog.SetDefault(slog.New(logger.NewHandler(cfg.Log.Level)))
	slog.Info("Starting Tux",
		slog.String("version", version),
		slog.String("commit", commit))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Database connection failed", slog.Any("error", err))
		os.Exit(-1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Database ready", slog.String("database", cfg.DB.Database))

	b := tux.New(*cfg, version, commit)
	b.DB = db

	// Repositories.
	b.CaseRepository = repositories.NewCaseRepository(db.BunDB())
	b.AFKRepository = repositories.NewAFKRepository(db.BunDB())
	b.LevelsRepository = repositories.NewLevelsRepository(db.BunDB())
	b.GuildConfigRepository = repositories.NewGuildConfigRepository(db.BunDB())
	b.SnippetRepository = repositories.NewSnippetRepository(db.BunDB())
	b.StarboardRepository = repositories.NewStarboardRepository(db.BunDB())
	b.ReminderRepository = repositories.NewReminderRepository(db.BunDB())
	b.TicketRepository = repositories.NewTicketRepository(db.BunDB())

	b.Restrictions = moderation.NewRestrictionChecker(b.CaseRepository)

	// Leveling works without a client; the role syncer is attached after
	// the client exists.
	tiers := make([]leveling.RoleTier, 0, len(cfg.Leveling.Roles))
	for _, role := range cfg.Leveling.Roles {
		tiers = append(tiers, leveling.RoleTier{Level: role.Level, RoleID: role.RoleID.String()})
	}

	// Command routes.
	h := handler.New()

	// Moderation commands.
	h.Command("/ban", handlers.WrapWithLogging("ban", commands.BanHandler(b)))
	h.Command("/tempban", handlers.WrapWithLogging("tempban", commands.TempBanHandler(b)))
	h.Command("/unban", handlers.WrapWithLogging("unban", commands.UnbanHandler(b)))
	h.Command("/kick", handlers.WrapWithLogging("kick", commands.KickHandler(b)))
	h.Command("/timeout", handlers.WrapWithLogging("timeout", commands.TimeoutHandler(b)))
	h.Command("/untimeout", handlers.WrapWithLogging("untimeout", commands.UntimeoutHandler(b)))
	h.Command("/warn", handlers.WrapWithLogging("warn", commands.WarnHandler(b)))
	h.Command("/jail", handlers.WrapWithLogging("jail", commands.JailHandler(b)))
	h.Command("/unjail", handlers.WrapWithLogging("unjail", commands.UnjailHandler(b)))
	h.Command("/pollban", handlers.WrapWithLogging("pollban", commands.PollBanHandler(b)))
	h.Command("/pollunban", handlers.WrapWithLogging("pollunban", commands.PollUnbanHandler(b)))
	h.Command("/snippetban", handlers.WrapWithLogging("snippetban", commands.SnippetBanHandler(b)))
	h.Command("/snippetunban", handlers.WrapWithLogging("snippetunban", commands.SnippetUnbanHandler(b)))
	h.Command("/cases", handlers.WrapWithLogging("cases", commands.CasesHandler(b)))

	// Community commands.
	h.Command("/afk", handlers.WrapWithLogging("afk", commands.AFKHandler(b)))
	h.Command("/rank", handlers.WrapWithLogging("rank", commands.RankHandler(b)))
	h.Command("/leaderboard", handlers.WrapWithLogging("leaderboard", commands.LeaderboardHandler(b)))
	h.Command("/xp", handlers.WrapWithLogging("xp", commands.XPHandler(b)))
	h.Command("/snippet", handlers.WrapWithLogging("snippet", commands.SnippetHandler(b)))
	h.Autocomplete("/snippet", handlers.WrapAutocompleteWithLogging("snippet", commands.SnippetAutocompleteHandler(b)))
	h.Command("/remindme", handlers.WrapWithLogging("remindme", commands.RemindMeHandler(b)))
	h.Command("/reminders", handlers.WrapWithLogging("reminders", commands.RemindersHandler(b)))
	h.Command("/ticket", handlers.WrapWithLogging("ticket", commands.TicketHandler(b)))
	h.Command("/config", handlers.WrapWithLogging("config", commands.ConfigHandler(b)))

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady)); err != nil {
		slog.Error("Failed to setup bot", slog.Any("error", err))
		os.Exit(-1)
	}

	// Client-backed services.
	b.Notifier = moderation.NewDMNotifier(b.Client)
	b.Executor = moderation.NewExecutor(moderation.NewLockRegistry(), b.CaseRepository, b.Notifier)
	b.Leveling = leveling.NewService(b.LevelsRepository, leveling.NewRestRoleSyncer(b.Client), leveling.Config{
		Exponent:     cfg.Leveling.Exponent,
		XPPerMessage: cfg.Leveling.XPPerMessage,
		Cooldown:     time.Duration(cfg.Leveling.CooldownSeconds) * time.Second,
		MaxLevel:     cfg.Leveling.MaxLevel,
		Tiers:        tiers,
	})
	b.Starboard = starboard.NewService(b.Client, b.StarboardRepository, b.GuildConfigRepository)

	archive, err := tickets.NewArchiveService(
		cfg.Archive.Key, cfg.Archive.Secret, cfg.Archive.Region,
		cfg.Archive.Bucket, cfg.Archive.Endpoint, cfg.Archive.Root)
	if err != nil {
		slog.Error("Failed to initialize transcript archive", slog.Any("error", err))
		os.Exit(-1)
	}
	b.Tickets = tickets.NewService(b.TicketRepository, tickets.NewRestHistoryFetcher(b.Client), archive)

	// Gateway event listeners.
	messageListener := handlers.NewMessageListener(b.AFKRepository, b.GuildConfigRepository, b.Leveling, b.Restrictions)
	b.Client.AddEventListeners(messageListener.Listener())
	b.Client.AddEventListeners(handlers.NewReactionListener(b.Starboard).Listeners()...)

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		slog.Info("Syncing commands", slog.Any("guild_ids", cfg.Bot.DevGuilds))
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands", slog.Any("error", err))
		}
	}

	// Background sweeps.
	sweepCtx, stopSweeps := context.WithCancel(context.Background())
	defer stopSweeps()

	gw := scheduler.NewDiscordGateway(b.Client)
	scheduler.NewModerationSweep(b.CaseRepository, gw, gw).Sweeper().Start(sweepCtx)
	scheduler.NewAFKSweep(b.AFKRepository, gw).Sweeper().Start(sweepCtx)
	scheduler.NewReminderSweep(b.ReminderRepository, gw).Sweeper().Start(sweepCtx)

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = b.Client.OpenGateway(ctx); err != nil {
		slog.Error("Failed to open gateway", slog.Any("error", err))
		os.Exit(-1)
	}

	slog.Info("Tux is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down...")
}
