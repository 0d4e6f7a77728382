package repositories

import (
	"context"
	"time"

	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/uptrace/bun"
)

type ReminderRepository interface {
	Create(ctx context.Context, reminder *models.Reminder) error
	ListDue(ctx context.Context, now time.Time) ([]*models.Reminder, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Reminder, error)
	Delete(ctx context.Context, id int64) error
}

type reminderRepository struct {
	db *bun.DB
}

func NewReminderRepository(db *bun.DB) ReminderRepository {
	return &reminderRepository{db: db}
}

func (r *reminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	if reminder.CreatedAt.IsZero() {
		reminder.CreatedAt = time.Now()
	}
	_, err := r.db.NewInsert().Model(reminder).Exec(ctx)
	return err
}

func (r *reminderRepository) ListDue(ctx context.Context, now time.Time) ([]*models.Reminder, error) {
	var reminders []*models.Reminder
	err := r.db.NewSelect().
		Model(&reminders).
		Where("expires_at <= ?", now).
		Order("expires_at ASC").
		Scan(ctx)
	return reminders, err
}

func (r *reminderRepository) ListByUser(ctx context.Context, userID string) ([]*models.Reminder, error) {
	var reminders []*models.Reminder
	err := r.db.NewSelect().
		Model(&reminders).
		Where("user_id = ?", userID).
		Order("expires_at ASC").
		Scan(ctx)
	return reminders, err
}

func (r *reminderRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().
		Model((*models.Reminder)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
