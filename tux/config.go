package tux

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log      LogConfig      `toml:"log"`
	Bot      BotConfig      `toml:"bot"`
	DB       DBConfig       `toml:"db"`
	Leveling LevelingConfig `toml:"leveling"`
	Archive  ArchiveConfig  `toml:"archive"`
	Legacy   LegacyConfig   `toml:"legacy"`
}

// LegacyConfig points at the previous bot's MongoDB for one-shot imports.
type LegacyConfig struct {
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

type BotConfig struct {
	DevGuilds []snowflake.ID `toml:"dev_guilds"`
	Token     string         `toml:"token"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

// LevelingConfig controls message XP. Exponent shapes the XP curve used by
// leveling.Calculator; Roles binds a guild role to the level it unlocks.
type LevelingConfig struct {
	Exponent        float64          `toml:"exponent"`
	XPPerMessage    float64          `toml:"xp_per_message"`
	CooldownSeconds int              `toml:"cooldown_seconds"`
	MaxLevel        int              `toml:"max_level"`
	Roles           []LevelRoleEntry `toml:"roles"`
}

type LevelRoleEntry struct {
	Level  int          `toml:"level"`
	RoleID snowflake.ID `toml:"role_id"`
}

// ArchiveConfig points at the S3-compatible bucket that receives closed
// ticket transcripts.
type ArchiveConfig struct {
	Key      string `toml:"key"`
	Secret   string `toml:"secret"`
	Region   string `toml:"region"`
	Bucket   string `toml:"bucket"`
	Endpoint string `toml:"endpoint"`
	Root     string `toml:"root"`
}
