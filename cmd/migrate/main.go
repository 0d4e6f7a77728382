package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/allthingslinux/tux/tux"
	"github.com/allthingslinux/tux/tux/database"
	"github.com/allthingslinux/tux/tux/logger"
	"github.com/allthingslinux/tux/tux/migration"
)

// One-shot importer for the previous bot's MongoDB data. Run it once against
// a fresh Postgres database before starting the bot.
func main() {
	path := flag.String("config", "config.toml", "path to config")
	mongoURI := flag.String("mongo-uri", "", "override the legacy MongoDB URI from config")
	mongoDB := flag.String("mongo-db", "", "override the legacy MongoDB database name from config")
	batchSize := flag.Int("batch-size", 0, "override the insert batch size")
	flag.Parse()

	cfg, err := tux.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.SetDefault(slog.New(logger.NewHandler(cfg.Log.Level)))

	uri := cfg.Legacy.MongoURI
	if *mongoURI != "" {
		uri = *mongoURI
	}
	dbName := cfg.Legacy.Database
	if *mongoDB != "" {
		dbName = *mongoDB
	}
	if uri == "" || dbName == "" {
		slog.Error("Legacy MongoDB is not configured; set [legacy] in the config or pass -mongo-uri and -mongo-db")
		os.Exit(-1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
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

	m := migration.NewMigrator(db.BunDB())
	m.SetBatchSize(*batchSize)

	if err := m.Connect(ctx, uri, dbName); err != nil {
		slog.Error("Failed to connect to the legacy database", slog.Any("error", err))
		os.Exit(-1)
	}
	defer func() {
		if err := m.Close(context.Background()); err != nil {
			slog.Warn("Failed to disconnect from the legacy database", slog.Any("error", err))
		}
	}()

	if err := m.MigrateAll(ctx); err != nil {
		slog.Error("Migration failed", slog.Any("error", err))
		os.Exit(-1)
	}
}
