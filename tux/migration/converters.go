package migration

import (
	"strconv"
	"strings"
	"time"

	"github.com/allthingslinux/tux/tux/database/models"
)

// legacyCaseTypes maps the old bot's uppercase case kinds onto the current
// enum. Kinds with no modern equivalent are skipped.
var legacyCaseTypes = map[string]models.CaseType{
	"BAN":          models.CaseTypeBan,
	"UNBAN":        models.CaseTypeUnban,
	"TEMPBAN":      models.CaseTypeTempBan,
	"KICK":         models.CaseTypeKick,
	"TIMEOUT":      models.CaseTypeTimeout,
	"UNTIMEOUT":    models.CaseTypeUntimeout,
	"WARN":         models.CaseTypeWarn,
	"JAIL":         models.CaseTypeJail,
	"UNJAIL":       models.CaseTypeUnjail,
	"POLLBAN":      models.CaseTypePollBan,
	"POLLUNBAN":    models.CaseTypeUnpollBan,
	"SNIPPETBAN":   models.CaseTypeSnippetBan,
	"SNIPPETUNBAN": models.CaseTypeUnsnippetBan,
}

func formatSnowflake(id int64) string {
	return strconv.FormatInt(id, 10)
}

func convertCase(mc MongoCase) (*models.Case, bool) {
	caseType, ok := legacyCaseTypes[strings.ToUpper(mc.CaseType)]
	if !ok {
		return nil, false
	}
	if mc.GuildID == 0 || mc.UserID == 0 {
		return nil, false
	}
	createdAt := mc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return &models.Case{
		GuildID:     formatSnowflake(mc.GuildID),
		CaseNumber:  int(mc.CaseNumber),
		Type:        caseType,
		TargetID:    formatSnowflake(mc.UserID),
		ModeratorID: formatSnowflake(mc.ModeratorID),
		Reason:      mc.Reason,
		Status:      mc.Status,
		ExpiresAt:   mc.ExpiresAt,
		CreatedAt:   createdAt,
	}, true
}

func convertLevel(ml MongoLevel) (*models.LevelsRecord, bool) {
	if ml.GuildID == 0 || ml.MemberID == 0 {
		return nil, false
	}
	if ml.XP < 0 {
		ml.XP = 0
	}
	return &models.LevelsRecord{
		MemberID:      formatSnowflake(ml.MemberID),
		GuildID:       formatSnowflake(ml.GuildID),
		XP:            ml.XP,
		Level:         int(ml.Level),
		LastMessageAt: ml.LastMessage,
		Blacklisted:   ml.Blacklisted,
	}, true
}

func convertAFK(ma MongoAFK) (*models.AFKEntry, bool) {
	if ma.GuildID == 0 || ma.MemberID == 0 {
		return nil, false
	}
	since := ma.Since
	if since.IsZero() {
		since = time.Now()
	}
	return &models.AFKEntry{
		MemberID:  formatSnowflake(ma.MemberID),
		GuildID:   formatSnowflake(ma.GuildID),
		Reason:    ma.Reason,
		Since:     since,
		Until:     ma.Until,
		Permanent: ma.Permanent,
		Nickname:  ma.Nickname,
	}, true
}

func convertSnippet(ms MongoSnippet) (*models.Snippet, bool) {
	name := strings.ToLower(strings.TrimSpace(ms.Name))
	if name == "" || ms.GuildID == 0 || ms.Content == "" {
		return nil, false
	}
	createdAt := ms.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return &models.Snippet{
		GuildID:   formatSnowflake(ms.GuildID),
		Name:      name,
		Content:   ms.Content,
		AuthorID:  formatSnowflake(ms.CreatorID),
		Uses:      int(ms.Uses),
		CreatedAt: createdAt,
	}, true
}
