package moderation

import (
	"context"
	"sync"
	"time"

	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/allthingslinux/tux/tux/database/repositories"
)

// fakeCaseRepo is an in-memory CaseRepository that assigns per-guild case
// numbers the way the real one does.
type fakeCaseRepo struct {
	mu        sync.Mutex
	cases     []*models.Case
	createErr error
}

func (f *fakeCaseRepo) Create(_ context.Context, c *models.Case) (*models.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	max := 0
	for _, existing := range f.cases {
		if existing.GuildID == c.GuildID && existing.CaseNumber > max {
			max = existing.CaseNumber
		}
	}
	c.CaseNumber = max + 1
	c.ID = int64(len(f.cases) + 1)
	c.CreatedAt = time.Now()
	f.cases = append(f.cases, c)
	return c, nil
}

func (f *fakeCaseRepo) GetByNumber(_ context.Context, guildID string, number int) (*models.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.cases {
		if c.GuildID == guildID && c.CaseNumber == number {
			return c, nil
		}
	}
	return nil, repositories.ErrCaseNotFound
}

func (f *fakeCaseRepo) ListByGuild(_ context.Context, guildID string, _, _ int) ([]*models.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Case
	for _, c := range f.cases {
		if c.GuildID == guildID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCaseRepo) ListByTarget(_ context.Context, guildID, targetID string) ([]*models.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Case
	for _, c := range f.cases {
		if c.GuildID == guildID && c.TargetID == targetID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCaseRepo) CountByGuild(_ context.Context, guildID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.cases {
		if c.GuildID == guildID {
			n++
		}
	}
	return n, nil
}

func (f *fakeCaseRepo) LatestByTypes(_ context.Context, guildID, targetID string, types ...models.CaseType) (*models.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *models.Case
	for _, c := range f.cases {
		if c.GuildID != guildID || c.TargetID != targetID {
			continue
		}
		for _, t := range types {
			if c.Type == t {
				if latest == nil || c.CaseNumber > latest.CaseNumber {
					latest = c
				}
			}
		}
	}
	if latest == nil {
		return nil, repositories.ErrCaseNotFound
	}
	return latest, nil
}

func (f *fakeCaseRepo) ExpiredActive(_ context.Context, now time.Time, types ...models.CaseType) ([]*models.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Case
	for _, c := range f.cases {
		if !c.Status || c.ExpiresAt == nil || c.ExpiresAt.After(now) {
			continue
		}
		for _, t := range types {
			if c.Type == t {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (f *fakeCaseRepo) SetStatus(_ context.Context, id int64, status bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.cases {
		if c.ID == id {
			c.Status = status
			return nil
		}
	}
	return repositories.ErrCaseNotFound
}

func (f *fakeCaseRepo) SetReason(_ context.Context, guildID string, number int, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.cases {
		if c.GuildID == guildID && c.CaseNumber == number {
			c.Reason = reason
			return nil
		}
	}
	return repositories.ErrCaseNotFound
}

func (f *fakeCaseRepo) SetLogMessageID(_ context.Context, id int64, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.cases {
		if c.ID == id {
			c.LogMessageID = messageID
			return nil
		}
	}
	return repositories.ErrCaseNotFound
}

// spyNotifier records notification attempts. succeed controls the returned
// delivery result for non-silent calls.
type spyNotifier struct {
	mu      sync.Mutex
	calls   int
	succeed bool
}

func (s *spyNotifier) Notify(_ context.Context, _ string, _ Notification, silent bool) bool {
	if silent {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.succeed
}

func (s *spyNotifier) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
