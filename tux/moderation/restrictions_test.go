package moderation

import (
	"context"
	"testing"

	"github.com/allthingslinux/tux/tux/database/models"
)

func TestRestrictionChecker_IsUnderRestriction(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		cases []*models.Case
		want  bool
	}{
		{
			name:  "no case history",
			cases: nil,
			want:  false,
		},
		{
			name: "active restriction case",
			cases: []*models.Case{
				{GuildID: "g", TargetID: "u", Type: models.CaseTypePollBan, Status: true},
			},
			want: true,
		},
		{
			name: "restriction lifted by un-case",
			cases: []*models.Case{
				{GuildID: "g", TargetID: "u", Type: models.CaseTypePollBan, Status: true},
				{GuildID: "g", TargetID: "u", Type: models.CaseTypeUnpollBan, Status: true},
			},
			want: false,
		},
		{
			name: "restriction reapplied after lift",
			cases: []*models.Case{
				{GuildID: "g", TargetID: "u", Type: models.CaseTypePollBan, Status: true},
				{GuildID: "g", TargetID: "u", Type: models.CaseTypeUnpollBan, Status: true},
				{GuildID: "g", TargetID: "u", Type: models.CaseTypePollBan, Status: true},
			},
			want: true,
		},
		{
			name: "latest case inactive",
			cases: []*models.Case{
				{GuildID: "g", TargetID: "u", Type: models.CaseTypePollBan, Status: false},
			},
			want: false,
		},
		{
			name: "unrelated case types ignored",
			cases: []*models.Case{
				{GuildID: "g", TargetID: "u", Type: models.CaseTypeWarn, Status: true},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeCaseRepo{}
			for _, c := range tt.cases {
				if _, err := repo.Create(ctx, c); err != nil {
					t.Fatalf("seed case: %v", err)
				}
			}

			checker := NewRestrictionChecker(repo)
			got, err := checker.IsUnderRestriction(ctx, "g", "u", models.CaseTypePollBan, models.CaseTypeUnpollBan)
			if err != nil {
				t.Fatalf("IsUnderRestriction() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsUnderRestriction() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRestrictionChecker_OtherGuildDoesNotLeak(t *testing.T) {
	ctx := context.Background()
	repo := &fakeCaseRepo{}
	if _, err := repo.Create(ctx, &models.Case{
		GuildID: "other", TargetID: "u", Type: models.CaseTypeJail, Status: true,
	}); err != nil {
		t.Fatalf("seed case: %v", err)
	}

	checker := NewRestrictionChecker(repo)
	got, err := checker.IsJailed(ctx, "g", "u")
	if err != nil {
		t.Fatalf("IsJailed() error = %v", err)
	}
	if got {
		t.Error("IsJailed() = true for a case recorded in a different guild")
	}
}
