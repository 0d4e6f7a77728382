package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/allthingslinux/tux/tux/database/repositories"
)

type fakeAFKRepo struct {
	entries []*models.AFKEntry
}

func (f *fakeAFKRepo) Set(_ context.Context, entry *models.AFKEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAFKRepo) Get(_ context.Context, guildID, memberID string) (*models.AFKEntry, error) {
	for _, e := range f.entries {
		if e.GuildID == guildID && e.MemberID == memberID {
			return e, nil
		}
	}
	return nil, repositories.ErrAFKNotFound
}

func (f *fakeAFKRepo) Delete(_ context.Context, guildID, memberID string) error {
	for i, e := range f.entries {
		if e.GuildID == guildID && e.MemberID == memberID {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeAFKRepo) ListExpired(_ context.Context, now time.Time) ([]*models.AFKEntry, error) {
	var out []*models.AFKEntry
	for _, e := range f.entries {
		if !e.Permanent && e.Until != nil && !e.Until.After(now) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeNickRestorer struct {
	restored map[string]string
	err      error
}

func (f *fakeNickRestorer) SetNickname(_ context.Context, _, memberID, nickname string) error {
	if f.err != nil {
		return f.err
	}
	if f.restored == nil {
		f.restored = make(map[string]string)
	}
	f.restored[memberID] = nickname
	return nil
}

func TestAFKSweep_ClearsExpiredEntries(t *testing.T) {
	repo := &fakeAFKRepo{entries: []*models.AFKEntry{
		{GuildID: "g", MemberID: "expired", Until: pastExpiry(), Nickname: "old-nick"},
		{GuildID: "g", MemberID: "future", Until: futureExpiry()},
		{GuildID: "g", MemberID: "forever", Permanent: true, Until: pastExpiry()},
	}}
	nicks := &fakeNickRestorer{}

	sweep := NewAFKSweep(repo, nicks)
	processed, failed := sweep.Tick(context.Background())

	if processed != 1 || failed != 0 {
		t.Errorf("Tick() = (%d, %d), want (1, 0)", processed, failed)
	}
	if nicks.restored["expired"] != "old-nick" {
		t.Errorf("nickname restored = %q, want %q", nicks.restored["expired"], "old-nick")
	}
	if _, err := repo.Get(context.Background(), "g", "expired"); !errors.Is(err, repositories.ErrAFKNotFound) {
		t.Error("expired entry still present after sweep")
	}
	if _, err := repo.Get(context.Background(), "g", "forever"); err != nil {
		t.Error("permanent entry was cleared by the sweep")
	}
}

// A member with no nickname before going AFK still carries the AFK tag, so
// the sweep must issue the update anyway; the empty value clears the tag.
func TestAFKSweep_ClearsTagWithoutSavedNickname(t *testing.T) {
	repo := &fakeAFKRepo{entries: []*models.AFKEntry{
		{GuildID: "g", MemberID: "tagged", Until: pastExpiry()},
	}}
	nicks := &fakeNickRestorer{}

	sweep := NewAFKSweep(repo, nicks)
	sweep.Tick(context.Background())

	got, ok := nicks.restored["tagged"]
	if !ok {
		t.Fatal("no nickname update issued for member without a saved nickname")
	}
	if got != "" {
		t.Errorf("nickname = %q, want empty to clear the tag", got)
	}
}

func TestAFKSweep_NicknameFailureStillDeletesEntry(t *testing.T) {
	repo := &fakeAFKRepo{entries: []*models.AFKEntry{
		{GuildID: "g", MemberID: "gone", Until: pastExpiry(), Nickname: "nick"},
	}}
	nicks := &fakeNickRestorer{err: errors.New("member left")}

	sweep := NewAFKSweep(repo, nicks)
	processed, failed := sweep.Tick(context.Background())

	if processed != 1 || failed != 0 {
		t.Errorf("Tick() = (%d, %d), want (1, 0)", processed, failed)
	}
	if len(repo.entries) != 0 {
		t.Error("entry not deleted when nickname restore failed")
	}
}
