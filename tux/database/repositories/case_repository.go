package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/uptrace/bun"
)

var ErrCaseNotFound = errors.New("case not found")

type CaseRepository interface {
	// Create inserts the case with the next sequential case number for its
	// guild and returns it with CaseNumber and ID filled in.
	Create(ctx context.Context, c *models.Case) (*models.Case, error)
	GetByNumber(ctx context.Context, guildID string, number int) (*models.Case, error)
	ListByGuild(ctx context.Context, guildID string, limit, offset int) ([]*models.Case, error)
	ListByTarget(ctx context.Context, guildID, targetID string) ([]*models.Case, error)
	CountByGuild(ctx context.Context, guildID string) (int, error)
	// LatestByTypes returns the most recent case for (guild, target) whose
	// type is one of the given kinds, or ErrCaseNotFound.
	LatestByTypes(ctx context.Context, guildID, targetID string, types ...models.CaseType) (*models.Case, error)
	// ExpiredActive returns active cases of the given types whose expiry has
	// passed.
	ExpiredActive(ctx context.Context, now time.Time, types ...models.CaseType) ([]*models.Case, error)
	SetStatus(ctx context.Context, id int64, status bool) error
	SetReason(ctx context.Context, guildID string, number int, reason string) error
	SetLogMessageID(ctx context.Context, id int64, messageID string) error
}

type caseRepository struct {
	db *bun.DB
}

func NewCaseRepository(db *bun.DB) CaseRepository {
	return &caseRepository{db: db}
}

func (r *caseRepository) Create(ctx context.Context, c *models.Case) (*models.Case, error) {
	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var maxNumber int
		err := tx.NewSelect().
			Model((*models.Case)(nil)).
			ColumnExpr("COALESCE(MAX(case_number), 0)").
			Where("guild_id = ?", c.GuildID).
			Scan(ctx, &maxNumber)
		if err != nil {
			return fmt.Errorf("failed to read case counter: %w", err)
		}

		c.CaseNumber = maxNumber + 1
		if c.CreatedAt.IsZero() {
			c.CreatedAt = time.Now()
		}

		_, err = tx.NewInsert().Model(c).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *caseRepository) GetByNumber(ctx context.Context, guildID string, number int) (*models.Case, error) {
	c := new(models.Case)
	err := r.db.NewSelect().
		Model(c).
		Where("guild_id = ? AND case_number = ?", guildID, number).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCaseNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *caseRepository) ListByGuild(ctx context.Context, guildID string, limit, offset int) ([]*models.Case, error) {
	var cases []*models.Case
	err := r.db.NewSelect().
		Model(&cases).
		Where("guild_id = ?", guildID).
		Order("case_number DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	return cases, err
}

func (r *caseRepository) ListByTarget(ctx context.Context, guildID, targetID string) ([]*models.Case, error) {
	var cases []*models.Case
	err := r.db.NewSelect().
		Model(&cases).
		Where("guild_id = ? AND target_id = ?", guildID, targetID).
		Order("case_number DESC").
		Scan(ctx)
	return cases, err
}

func (r *caseRepository) CountByGuild(ctx context.Context, guildID string) (int, error) {
	return r.db.NewSelect().
		Model((*models.Case)(nil)).
		Where("guild_id = ?", guildID).
		Count(ctx)
}

func (r *caseRepository) LatestByTypes(ctx context.Context, guildID, targetID string, types ...models.CaseType) (*models.Case, error) {
	c := new(models.Case)
	err := r.db.NewSelect().
		Model(c).
		Where("guild_id = ? AND target_id = ?", guildID, targetID).
		Where("type IN (?)", bun.In(types)).
		Order("case_number DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCaseNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *caseRepository) ExpiredActive(ctx context.Context, now time.Time, types ...models.CaseType) ([]*models.Case, error) {
	var cases []*models.Case
	err := r.db.NewSelect().
		Model(&cases).
		Where("status = true").
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Where("type IN (?)", bun.In(types)).
		Order("expires_at ASC").
		Scan(ctx)
	return cases, err
}

func (r *caseRepository) SetStatus(ctx context.Context, id int64, status bool) error {
	_, err := r.db.NewUpdate().
		Model((*models.Case)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *caseRepository) SetReason(ctx context.Context, guildID string, number int, reason string) error {
	res, err := r.db.NewUpdate().
		Model((*models.Case)(nil)).
		Set("reason = ?", reason).
		Where("guild_id = ? AND case_number = ?", guildID, number).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrCaseNotFound
	}
	return nil
}

func (r *caseRepository) SetLogMessageID(ctx context.Context, id int64, messageID string) error {
	_, err := r.db.NewUpdate().
		Model((*models.Case)(nil)).
		Set("log_message_id = ?", messageID).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
