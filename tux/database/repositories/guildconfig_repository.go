package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/uptrace/bun"
)

type GuildConfigRepository interface {
	// Get returns the guild's config, or a zero-value config with defaults
	// when none has been saved yet.
	Get(ctx context.Context, guildID string) (*models.GuildConfig, error)
	Upsert(ctx context.Context, cfg *models.GuildConfig) error
}

type guildConfigRepository struct {
	db *bun.DB
}

func NewGuildConfigRepository(db *bun.DB) GuildConfigRepository {
	return &guildConfigRepository{db: db}
}

func (r *guildConfigRepository) Get(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	cfg := new(models.GuildConfig)
	err := r.db.NewSelect().
		Model(cfg).
		Where("guild_id = ?", guildID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.GuildConfig{
			GuildID:            guildID,
			StarboardEmoji:     "⭐",
			StarboardThreshold: 3,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *guildConfigRepository) Upsert(ctx context.Context, cfg *models.GuildConfig) error {
	_, err := r.db.NewInsert().
		Model(cfg).
		On("CONFLICT (guild_id) DO UPDATE").
		Set("mod_log_channel_id = EXCLUDED.mod_log_channel_id").
		Set("jail_role_id = EXCLUDED.jail_role_id").
		Set("jail_channel_id = EXCLUDED.jail_channel_id").
		Set("starboard_channel_id = EXCLUDED.starboard_channel_id").
		Set("starboard_emoji = EXCLUDED.starboard_emoji").
		Set("starboard_threshold = EXCLUDED.starboard_threshold").
		Set("starboard_self_star = EXCLUDED.starboard_self_star").
		Set("xp_blocked_channels = EXCLUDED.xp_blocked_channels").
		Exec(ctx)
	return err
}
