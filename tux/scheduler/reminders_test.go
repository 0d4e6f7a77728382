package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/allthingslinux/tux/tux/database/models"
)

type fakeReminderRepo struct {
	reminders []*models.Reminder
}

func (f *fakeReminderRepo) Create(_ context.Context, r *models.Reminder) error {
	f.reminders = append(f.reminders, r)
	return nil
}

func (f *fakeReminderRepo) ListDue(_ context.Context, now time.Time) ([]*models.Reminder, error) {
	var out []*models.Reminder
	for _, r := range f.reminders {
		if !r.ExpiresAt.After(now) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReminderRepo) ListByUser(_ context.Context, userID string) ([]*models.Reminder, error) {
	var out []*models.Reminder
	for _, r := range f.reminders {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReminderRepo) Delete(_ context.Context, id int64) error {
	for i, r := range f.reminders {
		if r.ID == id {
			f.reminders = append(f.reminders[:i], f.reminders[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeDeliverer struct {
	delivered []int64
	failFor   map[int64]bool
}

func (f *fakeDeliverer) Deliver(_ context.Context, r *models.Reminder) error {
	if f.failFor[r.ID] {
		return errors.New("dms closed")
	}
	f.delivered = append(f.delivered, r.ID)
	return nil
}

func TestReminderSweep_DeliversAndDeletesDue(t *testing.T) {
	due := time.Now().Add(-time.Minute)
	later := time.Now().Add(time.Hour)
	repo := &fakeReminderRepo{reminders: []*models.Reminder{
		{ID: 1, UserID: "u1", ExpiresAt: due},
		{ID: 2, UserID: "u2", ExpiresAt: later},
	}}
	deliverer := &fakeDeliverer{}

	sweep := NewReminderSweep(repo, deliverer)
	processed, failed := sweep.Tick(context.Background())

	if processed != 1 || failed != 0 {
		t.Errorf("Tick() = (%d, %d), want (1, 0)", processed, failed)
	}
	if len(deliverer.delivered) != 1 || deliverer.delivered[0] != 1 {
		t.Errorf("delivered = %v, want [1]", deliverer.delivered)
	}
	if len(repo.reminders) != 1 || repo.reminders[0].ID != 2 {
		t.Errorf("remaining reminders = %v, want only the future one", repo.reminders)
	}
}

func TestReminderSweep_FailedDeliveryKeepsRow(t *testing.T) {
	repo := &fakeReminderRepo{reminders: []*models.Reminder{
		{ID: 1, UserID: "u1", ExpiresAt: time.Now().Add(-time.Minute)},
	}}
	deliverer := &fakeDeliverer{failFor: map[int64]bool{1: true}}

	sweep := NewReminderSweep(repo, deliverer)
	processed, failed := sweep.Tick(context.Background())

	if processed != 1 || failed != 1 {
		t.Errorf("Tick() = (%d, %d), want (1, 1)", processed, failed)
	}
	if len(repo.reminders) != 1 {
		t.Error("undelivered reminder was deleted; it should retry next tick")
	}
}
