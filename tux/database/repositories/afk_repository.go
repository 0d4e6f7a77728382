package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/uptrace/bun"
)

var ErrAFKNotFound = errors.New("afk entry not found")

type AFKRepository interface {
	Set(ctx context.Context, entry *models.AFKEntry) error
	Get(ctx context.Context, guildID, memberID string) (*models.AFKEntry, error)
	Delete(ctx context.Context, guildID, memberID string) error
	// ListExpired returns non-permanent entries whose Until has passed.
	ListExpired(ctx context.Context, now time.Time) ([]*models.AFKEntry, error)
}

type afkRepository struct {
	db *bun.DB
}

func NewAFKRepository(db *bun.DB) AFKRepository {
	return &afkRepository{db: db}
}

func (r *afkRepository) Set(ctx context.Context, entry *models.AFKEntry) error {
	if entry.Since.IsZero() {
		entry.Since = time.Now()
	}
	_, err := r.db.NewInsert().
		Model(entry).
		On("CONFLICT (member_id, guild_id) DO UPDATE").
		Set("reason = EXCLUDED.reason").
		Set("since = EXCLUDED.since").
		Set("until = EXCLUDED.until").
		Set("permanent = EXCLUDED.permanent").
		Set("nickname = EXCLUDED.nickname").
		Exec(ctx)
	return err
}

func (r *afkRepository) Get(ctx context.Context, guildID, memberID string) (*models.AFKEntry, error) {
	entry := new(models.AFKEntry)
	err := r.db.NewSelect().
		Model(entry).
		Where("guild_id = ? AND member_id = ?", guildID, memberID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAFKNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *afkRepository) Delete(ctx context.Context, guildID, memberID string) error {
	_, err := r.db.NewDelete().
		Model((*models.AFKEntry)(nil)).
		Where("guild_id = ? AND member_id = ?", guildID, memberID).
		Exec(ctx)
	return err
}

func (r *afkRepository) ListExpired(ctx context.Context, now time.Time) ([]*models.AFKEntry, error) {
	var entries []*models.AFKEntry
	err := r.db.NewSelect().
		Model(&entries).
		Where("permanent = false").
		Where("until IS NOT NULL AND until <= ?", now).
		Scan(ctx)
	return entries, err
}
