// Package tasks declares the persistence contract for user reminders.
package tasks

import (
	"context"
	"time"

	"assistant-service/internal/server/models"
)

type Repository interface {
	// Create inserts a task and returns it with the generated id.
	Create(ctx context.Context, task *models.Task) (*models.Task, error)

	// ListDueUnnotified returns tasks eligible for reminder delivery:
	// not completed, not yet notified, and due at or before now.
	ListDueUnnotified(ctx context.Context, now time.Time) ([]models.Task, error)

	// MarkNotified sets the notified flag for all given task ids and returns
	// the number of rows updated.
	MarkNotified(ctx context.Context, ids []int64) (int64, error)

	// ListForUser returns all tasks belonging to the user, newest due first.
	ListForUser(ctx context.Context, userID int64) ([]models.Task, error)

	// MarkCompleted sets the completed flag on the user's task. It reports
	// whether a row was updated.
	MarkCompleted(ctx context.Context, id, userID int64) (bool, error)
}
