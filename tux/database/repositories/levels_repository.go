package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/uptrace/bun"
)

type LevelsRepository interface {
	GetOrCreate(ctx context.Context, guildID, memberID string) (*models.LevelsRecord, error)
	Update(ctx context.Context, record *models.LevelsRecord) error
	SetXP(ctx context.Context, guildID, memberID string, xp float64, level int) error
	Reset(ctx context.Context, guildID, memberID string) error
	SetBlacklisted(ctx context.Context, guildID, memberID string, blacklisted bool) error
	// Top returns records ordered by XP descending.
	Top(ctx context.Context, guildID string, limit, offset int) ([]*models.LevelsRecord, error)
	// Rank returns the 1-based leaderboard position for a member.
	Rank(ctx context.Context, guildID, memberID string) (int, error)
	Count(ctx context.Context, guildID string) (int, error)
}

type levelsRepository struct {
	db *bun.DB
}

func NewLevelsRepository(db *bun.DB) LevelsRepository {
	return &levelsRepository{db: db}
}

func (r *levelsRepository) GetOrCreate(ctx context.Context, guildID, memberID string) (*models.LevelsRecord, error) {
	record := new(models.LevelsRecord)
	err := r.db.NewSelect().
		Model(record).
		Where("guild_id = ? AND member_id = ?", guildID, memberID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		record = &models.LevelsRecord{
			MemberID: memberID,
			GuildID:  guildID,
		}
		if _, err := r.db.NewInsert().
			Model(record).
			On("CONFLICT (member_id, guild_id) DO NOTHING").
			Exec(ctx); err != nil {
			return nil, err
		}
		return record, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *levelsRepository) Update(ctx context.Context, record *models.LevelsRecord) error {
	_, err := r.db.NewUpdate().
		Model(record).
		Column("xp", "level", "last_message_at").
		Where("guild_id = ? AND member_id = ?", record.GuildID, record.MemberID).
		Exec(ctx)
	return err
}

func (r *levelsRepository) SetXP(ctx context.Context, guildID, memberID string, xp float64, level int) error {
	_, err := r.db.NewUpdate().
		Model((*models.LevelsRecord)(nil)).
		Set("xp = ?", xp).
		Set("level = ?", level).
		Set("last_message_at = ?", time.Now()).
		Where("guild_id = ? AND member_id = ?", guildID, memberID).
		Exec(ctx)
	return err
}

func (r *levelsRepository) Reset(ctx context.Context, guildID, memberID string) error {
	_, err := r.db.NewUpdate().
		Model((*models.LevelsRecord)(nil)).
		Set("xp = 0").
		Set("level = 0").
		Where("guild_id = ? AND member_id = ?", guildID, memberID).
		Exec(ctx)
	return err
}

func (r *levelsRepository) SetBlacklisted(ctx context.Context, guildID, memberID string, blacklisted bool) error {
	_, err := r.db.NewUpdate().
		Model((*models.LevelsRecord)(nil)).
		Set("blacklisted = ?", blacklisted).
		Where("guild_id = ? AND member_id = ?", guildID, memberID).
		Exec(ctx)
	return err
}

func (r *levelsRepository) Top(ctx context.Context, guildID string, limit, offset int) ([]*models.LevelsRecord, error) {
	var records []*models.LevelsRecord
	err := r.db.NewSelect().
		Model(&records).
		Where("guild_id = ?", guildID).
		Order("xp DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	return records, err
}

func (r *levelsRepository) Rank(ctx context.Context, guildID, memberID string) (int, error) {
	var rank int
	err := r.db.NewSelect().
		ColumnExpr("COUNT(*) + 1").
		Model((*models.LevelsRecord)(nil)).
		Where("guild_id = ?", guildID).
		Where("xp > (SELECT xp FROM levels WHERE guild_id = ? AND member_id = ?)", guildID, memberID).
		Scan(ctx, &rank)
	return rank, err
}

func (r *levelsRepository) Count(ctx context.Context, guildID string) (int, error) {
	return r.db.NewSelect().
		Model((*models.LevelsRecord)(nil)).
		Where("guild_id = ?", guildID).
		Count(ctx)
}
