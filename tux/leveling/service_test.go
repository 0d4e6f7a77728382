package leveling

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/allthingslinux/tux/tux/database/models"
)

type fakeLevelsRepo struct {
	mu      sync.Mutex
	records map[string]*models.LevelsRecord
}

func newFakeLevelsRepo() *fakeLevelsRepo {
	return &fakeLevelsRepo{records: make(map[string]*models.LevelsRecord)}
}

func (f *fakeLevelsRepo) key(guildID, memberID string) string { return guildID + ":" + memberID }

func (f *fakeLevelsRepo) GetOrCreate(_ context.Context, guildID, memberID string) (*models.LevelsRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := f.key(guildID, memberID)
	if r, ok := f.records[k]; ok {
		copy := *r
		return &copy, nil
	}
	r := &models.LevelsRecord{GuildID: guildID, MemberID: memberID}
	f.records[k] = r
	copy := *r
	return &copy, nil
}

func (f *fakeLevelsRepo) Update(_ context.Context, record *models.LevelsRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy := *record
	f.records[f.key(record.GuildID, record.MemberID)] = &copy
	return nil
}

func (f *fakeLevelsRepo) SetXP(_ context.Context, guildID, memberID string, xp float64, level int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.records[f.key(guildID, memberID)]
	r.XP, r.Level = xp, level
	return nil
}

func (f *fakeLevelsRepo) Reset(_ context.Context, guildID, memberID string) error {
	return f.SetXP(context.Background(), guildID, memberID, 0, 0)
}

func (f *fakeLevelsRepo) SetBlacklisted(_ context.Context, guildID, memberID string, blacklisted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[f.key(guildID, memberID)].Blacklisted = blacklisted
	return nil
}

func (f *fakeLevelsRepo) Top(_ context.Context, _ string, _, _ int) ([]*models.LevelsRecord, error) {
	return nil, nil
}

func (f *fakeLevelsRepo) Rank(_ context.Context, _, _ string) (int, error) { return 1, nil }

func (f *fakeLevelsRepo) Count(_ context.Context, _ string) (int, error) { return len(f.records), nil }

type fakeRoleSyncer struct {
	added   []string
	removed []string
}

func (f *fakeRoleSyncer) AddRole(_ context.Context, _, _, roleID string) error {
	f.added = append(f.added, roleID)
	return nil
}

func (f *fakeRoleSyncer) RemoveRole(_ context.Context, _, _, roleID string) error {
	f.removed = append(f.removed, roleID)
	return nil
}

func TestService_CooldownGatesAwards(t *testing.T) {
	repo := newFakeLevelsRepo()
	s := NewService(repo, nil, Config{XPPerMessage: 10, Cooldown: time.Hour})

	for i := 0; i < 5; i++ {
		if _, err := s.HandleMessage(context.Background(), "g", "u"); err != nil {
			t.Fatalf("HandleMessage() error = %v", err)
		}
	}

	record, _ := repo.GetOrCreate(context.Background(), "g", "u")
	if record.XP != 10 {
		t.Errorf("XP = %v after rapid messages, want 10 (single award)", record.XP)
	}
}

func TestService_BlacklistedGetsNothing(t *testing.T) {
	repo := newFakeLevelsRepo()
	repo.records["g:u"] = &models.LevelsRecord{GuildID: "g", MemberID: "u", Blacklisted: true}

	s := NewService(repo, nil, Config{XPPerMessage: 10})
	levelUp, err := s.HandleMessage(context.Background(), "g", "u")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if levelUp != nil {
		t.Errorf("levelUp = %+v, want nil", levelUp)
	}

	record, _ := repo.GetOrCreate(context.Background(), "g", "u")
	if record.XP != 0 {
		t.Errorf("XP = %v for blacklisted member, want 0", record.XP)
	}
}

func TestService_LevelUpSyncsTierRoles(t *testing.T) {
	repo := newFakeLevelsRepo()
	// One message away from level 1 (exponent 2: level 1 needs 20 XP).
	repo.records["g:u"] = &models.LevelsRecord{GuildID: "g", MemberID: "u", XP: 15}

	roles := &fakeRoleSyncer{}
	s := NewService(repo, roles, Config{
		Exponent:     2.0,
		XPPerMessage: 10,
		Tiers: []RoleTier{
			{Level: 1, RoleID: "role-1"},
			{Level: 5, RoleID: "role-5"},
		},
	})

	levelUp, err := s.HandleMessage(context.Background(), "g", "u")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if levelUp == nil {
		t.Fatal("levelUp = nil, want level 0 -> 1")
	}
	if levelUp.OldLevel != 0 || levelUp.NewLevel != 1 {
		t.Errorf("levelUp = %d -> %d, want 0 -> 1", levelUp.OldLevel, levelUp.NewLevel)
	}
	if len(roles.added) != 1 || roles.added[0] != "role-1" {
		t.Errorf("roles added = %v, want [role-1]", roles.added)
	}
	if len(roles.removed) != 1 || roles.removed[0] != "role-5" {
		t.Errorf("roles removed = %v, want [role-5]", roles.removed)
	}
}

// Admin XP operations must work for members who have never earned XP: the
// record is created on the spot instead of silently updating nothing.
func TestService_SetXPCreatesMissingRecord(t *testing.T) {
	repo := newFakeLevelsRepo()
	roles := &fakeRoleSyncer{}
	s := NewService(repo, roles, Config{
		Exponent: 2.0,
		Tiers:    []RoleTier{{Level: 1, RoleID: "role-1"}},
	})

	level, err := s.SetXP(context.Background(), "g", "new", 20)
	if err != nil {
		t.Fatalf("SetXP() error = %v", err)
	}
	if level != 1 {
		t.Errorf("SetXP() level = %d, want 1", level)
	}

	record, _ := repo.GetOrCreate(context.Background(), "g", "new")
	if record.XP != 20 || record.Level != 1 {
		t.Errorf("record = %.0f XP level %d, want 20 XP level 1", record.XP, record.Level)
	}
	if len(roles.added) != 1 || roles.added[0] != "role-1" {
		t.Errorf("roles added = %v, want [role-1]", roles.added)
	}
}

func TestService_ResetXPCreatesMissingRecord(t *testing.T) {
	repo := newFakeLevelsRepo()
	s := NewService(repo, nil, Config{Exponent: 2.0})

	if err := s.ResetXP(context.Background(), "g", "new"); err != nil {
		t.Fatalf("ResetXP() error = %v", err)
	}

	record, _ := repo.GetOrCreate(context.Background(), "g", "new")
	if record.XP != 0 || record.Level != 0 {
		t.Errorf("record = %.0f XP level %d, want zeroes", record.XP, record.Level)
	}
}

func TestService_SetBlacklistedCreatesMissingRecord(t *testing.T) {
	repo := newFakeLevelsRepo()
	s := NewService(repo, nil, Config{})

	if err := s.SetBlacklisted(context.Background(), "g", "new", true); err != nil {
		t.Fatalf("SetBlacklisted() error = %v", err)
	}

	record, _ := repo.GetOrCreate(context.Background(), "g", "new")
	if !record.Blacklisted {
		t.Error("blacklist flag not persisted for a member without a record")
	}
}

func TestService_NoLevelUpBelowBoundary(t *testing.T) {
	repo := newFakeLevelsRepo()
	s := NewService(repo, nil, Config{Exponent: 2.0, XPPerMessage: 5})

	levelUp, err := s.HandleMessage(context.Background(), "g", "u")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if levelUp != nil {
		t.Errorf("levelUp = %+v for 5 XP, want nil", levelUp)
	}
}
