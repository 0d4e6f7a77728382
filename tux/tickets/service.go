package tickets

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"

	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/allthingslinux/tux/tux/database/repositories"
)

const historyPageSize = 100

// Uploader stores a transcript and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, guildID string, ticketID int64, transcript []byte) (string, error)
}

// HistoryFetcher pages backwards through a channel's messages.
type HistoryFetcher interface {
	GetMessages(ctx context.Context, channelID, before snowflake.ID, limit int) ([]discord.Message, error)
}

// Service opens and closes support tickets. Closing archives the channel's
// transcript before marking the row closed.
type Service struct {
	tickets repositories.TicketRepository
	history HistoryFetcher
	archive Uploader
}

func NewService(tickets repositories.TicketRepository, history HistoryFetcher, archive Uploader) *Service {
	return &Service{tickets: tickets, history: history, archive: archive}
}

// Open records a new ticket for a channel.
func (s *Service) Open(ctx context.Context, guildID, channelID, ownerID string) (*models.Ticket, error) {
	ticket := &models.Ticket{
		GuildID:   guildID,
		ChannelID: channelID,
		OwnerID:   ownerID,
		Status:    models.TicketStatusOpen,
		CreatedAt: time.Now(),
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}
	return ticket, nil
}

// Close archives the ticket channel and marks the row closed. Returns the
// closed ticket with its archive URL filled in.
func (s *Service) Close(ctx context.Context, guildID, channelID string) (*models.Ticket, error) {
	ticket, err := s.tickets.GetOpenByChannel(ctx, guildID, channelID)
	if err != nil {
		return nil, err
	}

	channel, err := snowflake.Parse(channelID)
	if err != nil {
		return nil, fmt.Errorf("invalid ticket channel id: %w", err)
	}

	messages, err := s.fetchHistory(ctx, channel)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ticket history: %w", err)
	}

	transcript := RenderTranscript(ticket.ID, guildID, messages)
	url, err := s.archive.Upload(ctx, guildID, ticket.ID, transcript)
	if err != nil {
		return nil, err
	}

	if err := s.tickets.Close(ctx, ticket.ID, url); err != nil {
		return nil, fmt.Errorf("failed to close ticket: %w", err)
	}

	now := time.Now()
	ticket.Status = models.TicketStatusClosed
	ticket.ArchiveURL = url
	ticket.ClosedAt = &now
	return ticket, nil
}

// fetchHistory walks the channel newest to oldest and returns the messages
// in that order.
func (s *Service) fetchHistory(ctx context.Context, channelID snowflake.ID) ([]discord.Message, error) {
	var all []discord.Message
	var before snowflake.ID

	for {
		page, err := s.history.GetMessages(ctx, channelID, before, historyPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < historyPageSize {
			return all, nil
		}
		before = page[len(page)-1].ID
	}
}
