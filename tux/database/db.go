package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"time"

	"log/slog"

	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/uptrace/bun"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	defaultConnTimeout   = 5 * time.Second
	defaultMaxRetries    = 3
	defaultRetryInterval = time.Second
)

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

type DB struct {
	pool  *pgxpool.Pool
	bunDB *bun.DB
}

func New(ctx context.Context, cfg DBConfig) (*DB, error) {
	// Fail fast with a clear error when the server is unreachable, instead
	// of letting the pool retry opaquely.
	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))

	var conn net.Conn
	var err error
	for i := 0; i < defaultMaxRetries; i++ {
		conn, err = net.DialTimeout("tcp", addr, defaultConnTimeout)
		if err == nil {
			break
		}
		time.Sleep(defaultRetryInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("database server unreachable after %d attempts: %w", defaultMaxRetries, err)
	}
	conn.Close()

	poolConfig, err := pgxpool.ParseConfig(buildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if cfg.PoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.PoolSize)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &DB{pool: pool, bunDB: newBunDB(cfg)}, nil
}

func buildConnString(cfg DBConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?connect_timeout=5",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)
}

func newBunDB(cfg DBConfig) *bun.DB {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

func (db *DB) BunDB() *bun.DB {
	return db.bunDB
}

func (db *DB) Close() {
	if db.bunDB != nil {
		db.bunDB.Close()
	}
	if db.pool != nil {
		db.pool.Close()
	}
}

// InitializeSchema creates all required tables and indexes.
func (db *DB) InitializeSchema(ctx context.Context) error {
	tables := []interface{}{
		(*models.GuildConfig)(nil),
		(*models.Case)(nil),
		(*models.AFKEntry)(nil),
		(*models.LevelsRecord)(nil),
		(*models.Snippet)(nil),
		(*models.StarboardEntry)(nil),
		(*models.Reminder)(nil),
		(*models.Ticket)(nil),
	}

	for _, table := range tables {
		if _, err := db.bunDB.NewCreateTable().
			Model(table).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", table, err)
		}
	}

	indexes := []struct {
		name  string
		query string
	}{
		{"idx_cases_guild_number", `CREATE UNIQUE INDEX IF NOT EXISTS idx_cases_guild_number ON cases (guild_id, case_number)`},
		{"idx_cases_guild_target", `CREATE INDEX IF NOT EXISTS idx_cases_guild_target ON cases (guild_id, target_id)`},
		{"idx_cases_expiry", `CREATE INDEX IF NOT EXISTS idx_cases_expiry ON cases (expires_at) WHERE status = true AND expires_at IS NOT NULL`},
		{"idx_afk_member_guild", `CREATE UNIQUE INDEX IF NOT EXISTS idx_afk_member_guild ON afk_entries (member_id, guild_id)`},
		{"idx_levels_member_guild", `CREATE UNIQUE INDEX IF NOT EXISTS idx_levels_member_guild ON levels (member_id, guild_id)`},
		{"idx_levels_guild_xp", `CREATE INDEX IF NOT EXISTS idx_levels_guild_xp ON levels (guild_id, xp DESC)`},
		{"idx_snippets_guild_name", `CREATE UNIQUE INDEX IF NOT EXISTS idx_snippets_guild_name ON snippets (guild_id, name)`},
		{"idx_starboard_message", `CREATE UNIQUE INDEX IF NOT EXISTS idx_starboard_message ON starboard_entries (message_id)`},
		{"idx_reminders_expiry", `CREATE INDEX IF NOT EXISTS idx_reminders_expiry ON reminders (expires_at)`},
	}

	for _, idx := range indexes {
		if _, err := db.bunDB.ExecContext(ctx, idx.query); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	slog.Info("Database schema initialized",
		slog.String("type", "db"),
		slog.Int("tables", len(tables)),
		slog.Int("indexes", len(indexes)))
	return nil
}
