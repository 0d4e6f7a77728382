package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/allthingslinux/tux/tux/database/models"
)

type fakeCaseStore struct {
	mu    sync.Mutex
	cases []*models.Case
}

func (f *fakeCaseStore) ExpiredActive(_ context.Context, now time.Time, types ...models.CaseType) ([]*models.Case, error) {
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

func (f *fakeCaseStore) SetStatus(_ context.Context, id int64, status bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.cases {
		if c.ID == id {
			c.Status = status
			return nil
		}
	}
	return errors.New("case not found")
}

type fakeBanGateway struct {
	mu     sync.Mutex
	banned map[string]bool
	unbans []string
	err    error
}

func (f *fakeBanGateway) IsBanned(_ context.Context, _, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.banned[userID], nil
}

func (f *fakeBanGateway) Unban(_ context.Context, _, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.banned, userID)
	f.unbans = append(f.unbans, userID)
	return nil
}

type fakeJailGateway struct {
	mu       sync.Mutex
	restored map[string][]string
}

func (f *fakeJailGateway) RestoreRoles(_ context.Context, _, userID string, roles []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.restored == nil {
		f.restored = make(map[string][]string)
	}
	f.restored[userID] = roles
	return nil
}

func pastExpiry() *time.Time {
	t := time.Now().Add(-time.Minute)
	return &t
}

func futureExpiry() *time.Time {
	t := time.Now().Add(time.Hour)
	return &t
}

func TestModerationSweep_UnbansExpiredTempban(t *testing.T) {
	store := &fakeCaseStore{cases: []*models.Case{
		{ID: 1, GuildID: "g", TargetID: "u1", Type: models.CaseTypeTempBan, Status: true, ExpiresAt: pastExpiry()},
	}}
	bans := &fakeBanGateway{banned: map[string]bool{"u1": true}}

	sweep := NewModerationSweep(store, bans, &fakeJailGateway{})
	processed, failed := sweep.Tick(context.Background())

	if processed != 1 || failed != 0 {
		t.Errorf("Tick() = (%d, %d), want (1, 0)", processed, failed)
	}
	if len(bans.unbans) != 1 || bans.unbans[0] != "u1" {
		t.Errorf("unbans = %v, want [u1]", bans.unbans)
	}
	if store.cases[0].Status {
		t.Error("case still active after sweep")
	}
}

func TestModerationSweep_AlreadyUnbannedSettlesWithoutUnban(t *testing.T) {
	store := &fakeCaseStore{cases: []*models.Case{
		{ID: 1, GuildID: "g", TargetID: "u1", Type: models.CaseTypeTempBan, Status: true, ExpiresAt: pastExpiry()},
	}}
	bans := &fakeBanGateway{banned: map[string]bool{}}

	sweep := NewModerationSweep(store, bans, &fakeJailGateway{})
	processed, failed := sweep.Tick(context.Background())

	if processed != 1 || failed != 0 {
		t.Errorf("Tick() = (%d, %d), want (1, 0)", processed, failed)
	}
	if len(bans.unbans) != 0 {
		t.Errorf("unbans = %v, want none for an already-unbanned user", bans.unbans)
	}
	if store.cases[0].Status {
		t.Error("case still active after sweep")
	}
}

func TestModerationSweep_SecondTickIsNoOp(t *testing.T) {
	store := &fakeCaseStore{cases: []*models.Case{
		{ID: 1, GuildID: "g", TargetID: "u1", Type: models.CaseTypeTempBan, Status: true, ExpiresAt: pastExpiry()},
	}}
	bans := &fakeBanGateway{banned: map[string]bool{"u1": true}}
	sweep := NewModerationSweep(store, bans, &fakeJailGateway{})

	sweep.Tick(context.Background())
	processed, failed := sweep.Tick(context.Background())

	if processed != 0 || failed != 0 {
		t.Errorf("second Tick() = (%d, %d), want (0, 0)", processed, failed)
	}
	if len(bans.unbans) != 1 {
		t.Errorf("unbans = %v, want exactly one", bans.unbans)
	}
}

func TestModerationSweep_RestoresJailRoles(t *testing.T) {
	store := &fakeCaseStore{cases: []*models.Case{
		{
			ID: 1, GuildID: "g", TargetID: "u1", Type: models.CaseTypeJail,
			Status: true, ExpiresAt: pastExpiry(),
			RoleSnapshot: []string{"r1", "r2"},
		},
	}}
	jails := &fakeJailGateway{}

	sweep := NewModerationSweep(store, &fakeBanGateway{}, jails)
	processed, failed := sweep.Tick(context.Background())

	if processed != 1 || failed != 0 {
		t.Errorf("Tick() = (%d, %d), want (1, 0)", processed, failed)
	}
	roles := jails.restored["u1"]
	if len(roles) != 2 || roles[0] != "r1" || roles[1] != "r2" {
		t.Errorf("restored roles = %v, want [r1 r2]", roles)
	}
	if store.cases[0].Status {
		t.Error("jail case still active after sweep")
	}
}

func TestModerationSweep_RowFailureDoesNotStopOthers(t *testing.T) {
	store := &fakeCaseStore{cases: []*models.Case{
		{ID: 1, GuildID: "g", TargetID: "bad", Type: models.CaseTypeJail, Status: true, ExpiresAt: pastExpiry()},
		{ID: 2, GuildID: "g", TargetID: "u2", Type: models.CaseTypeTempBan, Status: true, ExpiresAt: pastExpiry()},
		{ID: 3, GuildID: "g", TargetID: "u3", Type: models.CaseTypeTempBan, Status: true, ExpiresAt: futureExpiry()},
	}}
	bans := &fakeBanGateway{banned: map[string]bool{"u2": true}}
	jails := &failingJailGateway{}

	sweep := NewModerationSweep(store, bans, jails)
	processed, failed := sweep.Tick(context.Background())

	if processed != 2 {
		t.Errorf("processed = %d, want 2 (future expiry excluded)", processed)
	}
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	if store.cases[1].Status {
		t.Error("healthy row not settled because another row failed")
	}
	if !store.cases[0].Status {
		t.Error("failed row was settled anyway")
	}
}

type failingJailGateway struct{}

func (failingJailGateway) RestoreRoles(context.Context, string, string, []string) error {
	return errors.New("missing permissions")
}
