package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/uptrace/bun"
)

var ErrTicketNotFound = errors.New("ticket not found")

type TicketRepository interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	GetOpenByChannel(ctx context.Context, guildID, channelID string) (*models.Ticket, error)
	Close(ctx context.Context, id int64, archiveURL string) error
	ListByGuild(ctx context.Context, guildID string, status models.TicketStatus) ([]*models.Ticket, error)
}

type ticketRepository struct {
	db *bun.DB
}

func NewTicketRepository(db *bun.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now()
	}
	ticket.Status = models.TicketStatusOpen
	_, err := r.db.NewInsert().Model(ticket).Exec(ctx)
	return err
}

func (r *ticketRepository) GetOpenByChannel(ctx context.Context, guildID, channelID string) (*models.Ticket, error) {
	ticket := new(models.Ticket)
	err := r.db.NewSelect().
		Model(ticket).
		Where("guild_id = ? AND channel_id = ?", guildID, channelID).
		Where("status = ?", models.TicketStatusOpen).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) Close(ctx context.Context, id int64, archiveURL string) error {
	now := time.Now()
	_, err := r.db.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("status = ?", models.TicketStatusClosed).
		Set("archive_url = ?", archiveURL).
		Set("closed_at = ?", now).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *ticketRepository) ListByGuild(ctx context.Context, guildID string, status models.TicketStatus) ([]*models.Ticket, error) {
	var tickets []*models.Ticket
	err := r.db.NewSelect().
		Model(&tickets).
		Where("guild_id = ?", guildID).
		Where("status = ?", status).
		Order("created_at DESC").
		Scan(ctx)
	return tickets, err
}
