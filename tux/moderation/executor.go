package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/allthingslinux/tux/tux/database/repositories"
)

// Action is one Discord-side side effect of a case, executed in order.
type Action struct {
	Name string
	Run  func(ctx context.Context) error
}

// ActionError reports which action of the sequence failed. Earlier actions
// have already taken effect on Discord; no case is recorded for the failed
// sequence.
type ActionError struct {
	Name string
	Err  error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %q failed: %v", e.Name, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// RecordError means the Discord-side actions succeeded but the case insert
// did not. The live guild state and the case ledger have drifted; this is
// surfaced so the command layer can tell the moderator.
type RecordError struct {
	Err error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("action executed but case not recorded: %v", e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Request describes one moderation case to execute.
type Request struct {
	GuildID      string
	GuildName    string
	GuildOwnerID string
	ModeratorID  string
	TargetID     string
	Type         models.CaseType
	Reason       string
	// Duration > 0 sets the case expiry (tempban, timeout, timed jail).
	Duration time.Duration
	// Silent suppresses the DM notification.
	Silent bool
	// RoleSnapshot records the target's roles before a jail, restored on
	// unjail.
	RoleSnapshot []string
	Actions      []Action
}

// Result is the outcome of a successfully executed case.
type Result struct {
	Case   *models.Case
	DMSent bool
}

// Executor runs the case workflow: conditions, Discord actions, case record,
// DM notification — serialized per target user by the lock registry. The
// case insert is the single source of truth for "this action happened";
// failed action sequences record nothing.
type Executor struct {
	locks    *LockRegistry
	cases    repositories.CaseRepository
	notifier Notifier
}

func NewExecutor(locks *LockRegistry, cases repositories.CaseRepository, notifier Notifier) *Executor {
	return &Executor{
		locks:    locks,
		cases:    cases,
		notifier: notifier,
	}
}

// Execute runs one case under the per-target lock. It returns a
// *ConditionError for precondition rejections, an *ActionError when a
// Discord action fails, and a *RecordError when the case insert fails after
// the actions went through.
func (x *Executor) Execute(ctx context.Context, req Request) (*Result, error) {
	release := x.locks.Acquire(req.TargetID)
	defer release()

	if err := CheckConditions(req.ModeratorID, req.TargetID, req.GuildOwnerID, string(req.Type)); err != nil {
		return nil, err
	}

	var expiresAt *time.Time
	if req.Duration > 0 {
		t := time.Now().Add(req.Duration)
		expiresAt = &t
	}

	notification := Notification{
		GuildName: req.GuildName,
		Verb:      req.Type.Verb(),
		Reason:    req.Reason,
		ExpiresAt: expiresAt,
	}

	// Removal actions cut the guild connection, so the DM has to go out
	// first; for everything else the DM waits until the case is recorded.
	dmSent := false
	if req.Type.IsRemoval() {
		dmSent = x.notifier.Notify(ctx, req.TargetID, notification, req.Silent)
	}

	for _, action := range req.Actions {
		if err := action.Run(ctx); err != nil {
			slog.Error("Moderation action failed",
				slog.String("type", "mod"),
				slog.String("action", action.Name),
				slog.String("case_type", string(req.Type)),
				slog.String("guild_id", req.GuildID),
				slog.String("target_id", req.TargetID),
				slog.Any("error", err))
			return nil, &ActionError{Name: action.Name, Err: err}
		}
	}

	c := &models.Case{
		GuildID:      req.GuildID,
		Type:         req.Type,
		TargetID:     req.TargetID,
		ModeratorID:  req.ModeratorID,
		Reason:       req.Reason,
		Status:       true,
		ExpiresAt:    expiresAt,
		RoleSnapshot: req.RoleSnapshot,
	}
	created, err := x.cases.Create(ctx, c)
	if err != nil {
		slog.Error("Failed to record case after action execution",
			slog.String("type", "mod"),
			slog.String("case_type", string(req.Type)),
			slog.String("guild_id", req.GuildID),
			slog.String("target_id", req.TargetID),
			slog.Any("error", err))
		return nil, &RecordError{Err: err}
	}

	if !req.Type.IsRemoval() {
		dmSent = x.notifier.Notify(ctx, req.TargetID, notification, req.Silent)
	}

	slog.Info("Moderation case executed",
		slog.String("type", "mod"),
		slog.String("case_type", string(req.Type)),
		slog.Int("case_number", created.CaseNumber),
		slog.String("guild_id", req.GuildID),
		slog.String("target_id", req.TargetID),
		slog.Bool("dm_sent", dmSent))

	return &Result{Case: created, DMSent: dmSent}, nil
}
