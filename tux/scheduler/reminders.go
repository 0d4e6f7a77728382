package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/allthingslinux/tux/tux/database/repositories"
)

// ReminderDeliverer sends a due reminder to its owner, falling back to the
// origin channel when the DM cannot be delivered.
type ReminderDeliverer interface {
	Deliver(ctx context.Context, reminder *models.Reminder) error
}

// ReminderSweep delivers due reminders and deletes them. Delivery failures
// leave the row in place for the next tick.
type ReminderSweep struct {
	reminders repositories.ReminderRepository
	deliverer ReminderDeliverer
}

func NewReminderSweep(reminders repositories.ReminderRepository, deliverer ReminderDeliverer) *ReminderSweep {
	return &ReminderSweep{reminders: reminders, deliverer: deliverer}
}

// Sweeper wraps the tick in a 60s loop.
func (s *ReminderSweep) Sweeper() *Sweeper {
	return NewSweeper("reminders", time.Minute, s.Tick)
}

func (s *ReminderSweep) Tick(ctx context.Context) (int, int) {
	due, err := s.reminders.ListDue(ctx, time.Now())
	if err != nil {
		slog.Error("Failed to fetch due reminders",
			slog.String("type", "sweep"),
			slog.Any("error", err))
		return 0, 0
	}

	failed := 0
	for _, reminder := range due {
		if err := s.deliverer.Deliver(ctx, reminder); err != nil {
			failed++
			slog.Error("Failed to deliver reminder",
				slog.String("type", "sweep"),
				slog.Int64("reminder_id", reminder.ID),
				slog.String("user_id", reminder.UserID),
				slog.Any("error", err))
			continue
		}
		if err := s.reminders.Delete(ctx, reminder.ID); err != nil {
			failed++
			slog.Error("Failed to delete delivered reminder",
				slog.String("type", "sweep"),
				slog.Int64("reminder_id", reminder.ID),
				slog.Any("error", err))
		}
	}
	return len(due), failed
}
