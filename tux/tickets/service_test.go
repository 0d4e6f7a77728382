package tickets

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"

	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/allthingslinux/tux/tux/database/repositories"
)

type fakeTicketRepo struct {
	tickets []*models.Ticket
	nextID  int64
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *models.Ticket) error {
	f.nextID++
	ticket.ID = f.nextID
	f.tickets = append(f.tickets, ticket)
	return nil
}

func (f *fakeTicketRepo) GetOpenByChannel(_ context.Context, guildID, channelID string) (*models.Ticket, error) {
	for _, t := range f.tickets {
		if t.GuildID == guildID && t.ChannelID == channelID && t.Status == models.TicketStatusOpen {
			return t, nil
		}
	}
	return nil, repositories.ErrTicketNotFound
}

func (f *fakeTicketRepo) Close(_ context.Context, id int64, archiveURL string) error {
	for _, t := range f.tickets {
		if t.ID == id {
			now := time.Now()
			t.Status = models.TicketStatusClosed
			t.ArchiveURL = archiveURL
			t.ClosedAt = &now
			return nil
		}
	}
	return errors.New("ticket not found")
}

func (f *fakeTicketRepo) ListByGuild(_ context.Context, guildID string, status models.TicketStatus) ([]*models.Ticket, error) {
	var out []*models.Ticket
	for _, t := range f.tickets {
		if t.GuildID == guildID && t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeHistory struct {
	messages []discord.Message
}

func (f *fakeHistory) GetMessages(_ context.Context, _, _ snowflake.ID, limit int) ([]discord.Message, error) {
	if len(f.messages) > limit {
		return f.messages[:limit], nil
	}
	return f.messages, nil
}

type fakeUploader struct {
	uploaded []byte
	err      error
}

func (f *fakeUploader) Upload(_ context.Context, guildID string, ticketID int64, transcript []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploaded = transcript
	return "https://archive.example/tickets/g/ticket-1.txt", nil
}

func TestService_CloseArchivesAndMarksClosed(t *testing.T) {
	repo := &fakeTicketRepo{}
	history := &fakeHistory{messages: []discord.Message{
		{ID: snowflake.ID(2), Author: discord.User{Username: "mod"}, Content: "resolved"},
		{ID: snowflake.ID(1), Author: discord.User{Username: "user"}, Content: "help please"},
	}}
	uploader := &fakeUploader{}
	svc := NewService(repo, history, uploader)

	opened, err := svc.Open(context.Background(), "g", "123", "owner")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	closed, err := svc.Close(context.Background(), "g", "123")
	if err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if closed.ID != opened.ID {
		t.Errorf("closed ticket id = %d, want %d", closed.ID, opened.ID)
	}
	if closed.Status != models.TicketStatusClosed {
		t.Errorf("status = %q, want closed", closed.Status)
	}
	if closed.ArchiveURL == "" {
		t.Error("archive URL not recorded on the closed ticket")
	}
	if uploader.uploaded == nil {
		t.Fatal("transcript never uploaded")
	}
	transcript := string(uploader.uploaded)
	if !strings.Contains(transcript, "help please") || !strings.Contains(transcript, "resolved") {
		t.Errorf("transcript missing messages:\n%s", transcript)
	}
	// Oldest message must come first.
	if strings.Index(transcript, "help please") > strings.Index(transcript, "resolved") {
		t.Error("transcript not in chronological order")
	}
}

func TestService_CloseUploadFailureKeepsTicketOpen(t *testing.T) {
	repo := &fakeTicketRepo{}
	svc := NewService(repo, &fakeHistory{}, &fakeUploader{err: errors.New("bucket unavailable")})

	if _, err := svc.Open(context.Background(), "g", "123", "owner"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := svc.Close(context.Background(), "g", "123"); err == nil {
		t.Fatal("Close() succeeded despite upload failure")
	}
	if _, err := repo.GetOpenByChannel(context.Background(), "g", "123"); err != nil {
		t.Error("ticket no longer open after failed close; close must be atomic")
	}
}

func TestService_CloseWithoutOpenTicket(t *testing.T) {
	svc := NewService(&fakeTicketRepo{}, &fakeHistory{}, &fakeUploader{})
	if _, err := svc.Close(context.Background(), "g", "123"); !errors.Is(err, repositories.ErrTicketNotFound) {
		t.Errorf("Close() error = %v, want ErrTicketNotFound", err)
	}
}

func TestRenderTranscript_IncludesAttachments(t *testing.T) {
	messages := []discord.Message{
		{
			Author:      discord.User{Username: "user"},
			Content:     "see screenshot",
			Attachments: []discord.Attachment{{URL: "https://cdn.example/shot.png"}},
		},
	}
	out := string(RenderTranscript(7, "g", messages))
	if !strings.Contains(out, "Ticket #7") {
		t.Errorf("header missing:\n%s", out)
	}
	if !strings.Contains(out, "attachment: https://cdn.example/shot.png") {
		t.Errorf("attachment missing:\n%s", out)
	}
}
