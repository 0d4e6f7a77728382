package moderation

import (
	"context"
	"errors"

	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/allthingslinux/tux/tux/database/repositories"
)

// RestrictionChecker derives on/off restriction state (poll-ban, snippet-ban,
// jail) from the case history. There is no separate flag: the latest case of
// either kind decides, recomputed on every call.
type RestrictionChecker struct {
	cases repositories.CaseRepository
}

func NewRestrictionChecker(cases repositories.CaseRepository) *RestrictionChecker {
	return &RestrictionChecker{cases: cases}
}

// IsUnderRestriction reports whether the latest case of either kind for
// (guild, user) is an active case of activeKind. No case history means not
// restricted.
func (c *RestrictionChecker) IsUnderRestriction(ctx context.Context, guildID, userID string, activeKind, inactiveKind models.CaseType) (bool, error) {
	latest, err := c.cases.LatestByTypes(ctx, guildID, userID, activeKind, inactiveKind)
	if errors.Is(err, repositories.ErrCaseNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return latest.Type == activeKind && latest.Status, nil
}

// IsJailed is a convenience wrapper for the jail restriction.
func (c *RestrictionChecker) IsJailed(ctx context.Context, guildID, userID string) (bool, error) {
	return c.IsUnderRestriction(ctx, guildID, userID, models.CaseTypeJail, models.CaseTypeUnjail)
}

// IsPollBanned is a convenience wrapper for the poll-ban restriction.
func (c *RestrictionChecker) IsPollBanned(ctx context.Context, guildID, userID string) (bool, error) {
	return c.IsUnderRestriction(ctx, guildID, userID, models.CaseTypePollBan, models.CaseTypeUnpollBan)
}

// IsSnippetBanned is a convenience wrapper for the snippet-ban restriction.
func (c *RestrictionChecker) IsSnippetBanned(ctx context.Context, guildID, userID string) (bool, error) {
	return c.IsUnderRestriction(ctx, guildID, userID, models.CaseTypeSnippetBan, models.CaseTypeUnsnippetBan)
}
