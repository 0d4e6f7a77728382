package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/uptrace/bun"
)

var ErrStarboardEntryNotFound = errors.New("starboard entry not found")

type StarboardRepository interface {
	GetByMessageID(ctx context.Context, messageID string) (*models.StarboardEntry, error)
	Upsert(ctx context.Context, entry *models.StarboardEntry) error
	SetStarCount(ctx context.Context, messageID string, count int) error
	Delete(ctx context.Context, messageID string) error
}

type starboardRepository struct {
	db *bun.DB
}

func NewStarboardRepository(db *bun.DB) StarboardRepository {
	return &starboardRepository{db: db}
}

func (r *starboardRepository) GetByMessageID(ctx context.Context, messageID string) (*models.StarboardEntry, error) {
	entry := new(models.StarboardEntry)
	err := r.db.NewSelect().
		Model(entry).
		Where("message_id = ?", messageID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStarboardEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *starboardRepository) Upsert(ctx context.Context, entry *models.StarboardEntry) error {
	_, err := r.db.NewInsert().
		Model(entry).
		On("CONFLICT (message_id) DO UPDATE").
		Set("starboard_message_id = EXCLUDED.starboard_message_id").
		Set("star_count = EXCLUDED.star_count").
		Exec(ctx)
	return err
}

func (r *starboardRepository) SetStarCount(ctx context.Context, messageID string, count int) error {
	_, err := r.db.NewUpdate().
		Model((*models.StarboardEntry)(nil)).
		Set("star_count = ?", count).
		Where("message_id = ?", messageID).
		Exec(ctx)
	return err
}

func (r *starboardRepository) Delete(ctx context.Context, messageID string) error {
	_, err := r.db.NewDelete().
		Model((*models.StarboardEntry)(nil)).
		Where("message_id = ?", messageID).
		Exec(ctx)
	return err
}
