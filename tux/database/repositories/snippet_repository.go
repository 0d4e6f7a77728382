package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/uptrace/bun"
)

var (
	ErrSnippetExists   = errors.New("snippet already exists")
	ErrSnippetNotFound = errors.New("snippet not found")
)

type SnippetRepository interface {
	Create(ctx context.Context, snippet *models.Snippet) error
	GetByName(ctx context.Context, guildID, name string) (*models.Snippet, error)
	Delete(ctx context.Context, guildID, name string) error
	ListByGuild(ctx context.Context, guildID string) ([]*models.Snippet, error)
	ListNames(ctx context.Context, guildID string) ([]string, error)
	IncrementUses(ctx context.Context, guildID, name string) error
}

type snippetRepository struct {
	db *bun.DB
}

func NewSnippetRepository(db *bun.DB) SnippetRepository {
	return &snippetRepository{db: db}
}

func (r *snippetRepository) Create(ctx context.Context, snippet *models.Snippet) error {
	res, err := r.db.NewInsert().
		Model(snippet).
		On("CONFLICT (guild_id, name) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrSnippetExists
	}
	return nil
}

func (r *snippetRepository) GetByName(ctx context.Context, guildID, name string) (*models.Snippet, error) {
	snippet := new(models.Snippet)
	err := r.db.NewSelect().
		Model(snippet).
		Where("guild_id = ? AND name = ?", guildID, name).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnippetNotFound
	}
	if err != nil {
		return nil, err
	}
	return snippet, nil
}

func (r *snippetRepository) Delete(ctx context.Context, guildID, name string) error {
	res, err := r.db.NewDelete().
		Model((*models.Snippet)(nil)).
		Where("guild_id = ? AND name = ?", guildID, name).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrSnippetNotFound
	}
	return nil
}

func (r *snippetRepository) ListByGuild(ctx context.Context, guildID string) ([]*models.Snippet, error) {
	var snippets []*models.Snippet
	err := r.db.NewSelect().
		Model(&snippets).
		Where("guild_id = ?", guildID).
		Order("name ASC").
		Scan(ctx)
	return snippets, err
}

func (r *snippetRepository) ListNames(ctx context.Context, guildID string) ([]string, error) {
	var names []string
	err := r.db.NewSelect().
		Model((*models.Snippet)(nil)).
		Column("name").
		Where("guild_id = ?", guildID).
		Order("name ASC").
		Scan(ctx, &names)
	return names, err
}

func (r *snippetRepository) IncrementUses(ctx context.Context, guildID, name string) error {
	_, err := r.db.NewUpdate().
		Model((*models.Snippet)(nil)).
		Set("uses = uses + 1").
		Where("guild_id = ? AND name = ?", guildID, name).
		Exec(ctx)
	return err
}
