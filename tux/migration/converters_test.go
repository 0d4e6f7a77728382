package migration

import (
	"testing"
	"time"

	"github.com/allthingslinux/tux/tux/database/models"
)

func TestConvertCase(t *testing.T) {
	expires := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	mc := MongoCase{
		CaseNumber:  12,
		GuildID:     100,
		CaseType:    "TEMPBAN",
		UserID:      200,
		ModeratorID: 300,
		Reason:      "spam",
		Status:      true,
		ExpiresAt:   &expires,
		CreatedAt:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}

	c, ok := convertCase(mc)
	if !ok {
		t.Fatal("convertCase rejected a valid document")
	}
	if c.GuildID != "100" || c.TargetID != "200" || c.ModeratorID != "300" {
		t.Errorf("ids = %s/%s/%s, want 100/200/300", c.GuildID, c.TargetID, c.ModeratorID)
	}
	if c.Type != models.CaseTypeTempBan {
		t.Errorf("type = %q, want tempban", c.Type)
	}
	if c.CaseNumber != 12 || !c.Status {
		t.Errorf("case number/status = %d/%v", c.CaseNumber, c.Status)
	}
	if c.ExpiresAt == nil || !c.ExpiresAt.Equal(expires) {
		t.Errorf("expiry = %v, want %v", c.ExpiresAt, expires)
	}
}

func TestConvertCase_RejectsUnknownTypeAndMissingIDs(t *testing.T) {
	if _, ok := convertCase(MongoCase{GuildID: 1, UserID: 2, CaseType: "HACKBAN"}); ok {
		t.Error("unknown legacy case type accepted")
	}
	if _, ok := convertCase(MongoCase{CaseType: "BAN", UserID: 2}); ok {
		t.Error("case without guild id accepted")
	}
}

func TestConvertCase_LowercaseLegacyType(t *testing.T) {
	c, ok := convertCase(MongoCase{GuildID: 1, UserID: 2, CaseType: "warn"})
	if !ok || c.Type != models.CaseTypeWarn {
		t.Errorf("lowercase legacy type not normalized: %v %v", ok, c)
	}
}

func TestConvertLevel_ClampsNegativeXP(t *testing.T) {
	l, ok := convertLevel(MongoLevel{GuildID: 1, MemberID: 2, XP: -50, Level: 3})
	if !ok {
		t.Fatal("convertLevel rejected a valid document")
	}
	if l.XP != 0 {
		t.Errorf("xp = %v, want clamped to 0", l.XP)
	}
	if l.Level != 3 {
		t.Errorf("level = %d, want 3", l.Level)
	}
}

func TestConvertSnippet_NormalizesName(t *testing.T) {
	s, ok := convertSnippet(MongoSnippet{GuildID: 1, CreatorID: 2, Name: "  FAQ ", Content: "read the docs"})
	if !ok {
		t.Fatal("convertSnippet rejected a valid document")
	}
	if s.Name != "faq" {
		t.Errorf("name = %q, want %q", s.Name, "faq")
	}
	if _, ok := convertSnippet(MongoSnippet{GuildID: 1, Name: "x", Content: ""}); ok {
		t.Error("snippet with empty content accepted")
	}
}

func TestConvertAFK_KeepsPermanentFlag(t *testing.T) {
	a, ok := convertAFK(MongoAFK{GuildID: 1, MemberID: 2, Reason: "tour", Permanent: true, Nickname: "nick"})
	if !ok {
		t.Fatal("convertAFK rejected a valid document")
	}
	if !a.Permanent || a.Until != nil {
		t.Errorf("permanent AFK converted wrong: permanent=%v until=%v", a.Permanent, a.Until)
	}
}
