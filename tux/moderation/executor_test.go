package moderation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/allthingslinux/tux/tux/database/models"
)

func newTestExecutor(repo *fakeCaseRepo, notifier Notifier) *Executor {
	return NewExecutor(NewLockRegistry(), repo, notifier)
}

func banRequest(target string, actions ...Action) Request {
	return Request{
		GuildID:      "g",
		GuildName:    "Test Guild",
		GuildOwnerID: "owner",
		ModeratorID:  "mod",
		TargetID:     target,
		Type:         models.CaseTypeBan,
		Reason:       "spam",
		Actions:      actions,
	}
}

func TestExecutor_RecordsCaseOnSuccess(t *testing.T) {
	repo := &fakeCaseRepo{}
	notifier := &spyNotifier{succeed: true}
	x := newTestExecutor(repo, notifier)

	executed := false
	result, err := x.Execute(context.Background(), banRequest("target", Action{
		Name: "ban",
		Run: func(context.Context) error {
			executed = true
			return nil
		},
	}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !executed {
		t.Error("action was not executed")
	}
	if result.Case.CaseNumber != 1 {
		t.Errorf("CaseNumber = %d, want 1", result.Case.CaseNumber)
	}
	if result.Case.Type != models.CaseTypeBan || !result.Case.Status {
		t.Errorf("recorded case = %+v, want active ban", result.Case)
	}
	if result.Case.Reason != "spam" {
		t.Errorf("Reason = %q, want %q", result.Case.Reason, "spam")
	}
	if !result.DMSent {
		t.Error("DMSent = false, want true")
	}
	if notifier.callCount() != 1 {
		t.Errorf("notifier calls = %d, want 1", notifier.callCount())
	}
}

func TestExecutor_ConditionFailureRecordsNothing(t *testing.T) {
	repo := &fakeCaseRepo{}
	notifier := &spyNotifier{succeed: true}
	x := newTestExecutor(repo, notifier)

	req := banRequest("mod") // actor == target
	_, err := x.Execute(context.Background(), req)

	var condErr *ConditionError
	if !errors.As(err, &condErr) {
		t.Fatalf("Execute() error = %v, want *ConditionError", err)
	}
	if len(repo.cases) != 0 {
		t.Errorf("cases recorded = %d, want 0", len(repo.cases))
	}
	if notifier.callCount() != 0 {
		t.Errorf("notifier calls = %d, want 0", notifier.callCount())
	}
}

func TestExecutor_ActionFailureRecordsNothing(t *testing.T) {
	repo := &fakeCaseRepo{}
	x := newTestExecutor(repo, &spyNotifier{})

	req := Request{
		GuildID:      "g",
		GuildOwnerID: "owner",
		ModeratorID:  "mod",
		TargetID:     "target",
		Type:         models.CaseTypeWarn,
		Actions: []Action{
			{Name: "first", Run: func(context.Context) error { return nil }},
			{Name: "second", Run: func(context.Context) error { return errors.New("missing permissions") }},
		},
	}
	_, err := x.Execute(context.Background(), req)

	var actionErr *ActionError
	if !errors.As(err, &actionErr) {
		t.Fatalf("Execute() error = %v, want *ActionError", err)
	}
	if actionErr.Name != "second" {
		t.Errorf("failed action = %q, want %q", actionErr.Name, "second")
	}
	if len(repo.cases) != 0 {
		t.Errorf("cases recorded = %d, want 0", len(repo.cases))
	}
}

func TestExecutor_RecordFailureSurfacedAsRecordError(t *testing.T) {
	repo := &fakeCaseRepo{createErr: errors.New("connection refused")}
	x := newTestExecutor(repo, &spyNotifier{})

	_, err := x.Execute(context.Background(), banRequest("target",
		Action{Name: "ban", Run: func(context.Context) error { return nil }},
	))

	var recErr *RecordError
	if !errors.As(err, &recErr) {
		t.Fatalf("Execute() error = %v, want *RecordError", err)
	}
}

func TestExecutor_SilentSuppressesDM(t *testing.T) {
	repo := &fakeCaseRepo{}
	notifier := &spyNotifier{succeed: true}
	x := newTestExecutor(repo, notifier)

	req := banRequest("target", Action{Name: "ban", Run: func(context.Context) error { return nil }})
	req.Silent = true

	result, err := x.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.DMSent {
		t.Error("DMSent = true for a silent request")
	}
	if notifier.callCount() != 0 {
		t.Errorf("delivery attempts = %d, want 0", notifier.callCount())
	}
}

func TestExecutor_DurationSetsExpiry(t *testing.T) {
	repo := &fakeCaseRepo{}
	x := newTestExecutor(repo, &spyNotifier{})

	req := Request{
		GuildID:      "g",
		GuildOwnerID: "owner",
		ModeratorID:  "mod",
		TargetID:     "target",
		Type:         models.CaseTypeTempBan,
		Duration:     time.Hour,
		Actions:      []Action{{Name: "ban", Run: func(context.Context) error { return nil }}},
	}
	result, err := x.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Case.ExpiresAt == nil {
		t.Fatal("ExpiresAt = nil, want ~1h from now")
	}
	until := time.Until(*result.Case.ExpiresAt)
	if until < 55*time.Minute || until > 65*time.Minute {
		t.Errorf("expiry in %v, want ~1h", until)
	}
}

// Two concurrent cases against the same target must serialize: the action and
// record phases may not interleave, and case numbers follow entry order.
func TestExecutor_SerializesPerTarget(t *testing.T) {
	repo := &fakeCaseRepo{}
	x := newTestExecutor(repo, &spyNotifier{})

	var mu sync.Mutex
	var inFlight, maxInFlight int

	slowAction := Action{
		Name: "slow",
		Run: func(context.Context) error {
			mu.Lock()
			inFlight++
			if inFlight > maxInFlight {
				maxInFlight = inFlight
			}
			mu.Unlock()

			time.Sleep(20 * time.Millisecond)

			mu.Lock()
			inFlight--
			mu.Unlock()
			return nil
		},
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := x.Execute(context.Background(), banRequest("target", slowAction)); err != nil {
				t.Errorf("Execute() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if maxInFlight != 1 {
		t.Errorf("max concurrent action executions = %d, want 1", maxInFlight)
	}
	if len(repo.cases) != 2 {
		t.Fatalf("cases recorded = %d, want 2", len(repo.cases))
	}
	numbers := map[int]bool{}
	for _, c := range repo.cases {
		numbers[c.CaseNumber] = true
	}
	if !numbers[1] || !numbers[2] {
		t.Errorf("case numbers = %v, want {1, 2}", numbers)
	}
}

func TestDMNotifier_SilentNeverTouchesClient(t *testing.T) {
	// A nil client would panic on any REST call; silent must return before
	// touching it.
	n := &DMNotifier{}
	if sent := n.Notify(context.Background(), "123", Notification{}, true); sent {
		t.Error("Notify(silent) = true, want false")
	}
}
