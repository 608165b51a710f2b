// Package scheduler runs the periodic reminder loop: claim overdue tasks,
// then push a notification to each owner's live connection.
package scheduler

import (
	"context"
	"time"

	"assistant-service/internal/logging"
	"assistant-service/internal/server/models"
)

// TaskSource claims the batch of tasks to notify about.
type TaskSource interface {
	ClaimOverdue(ctx context.Context, now time.Time) ([]models.Task, error)
}

// Sender delivers a payload to a single user.
type Sender interface {
	Send(userID int64, payload any) error
}

// Notification is the payload pushed for an overdue task.
type Notification struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
}

// Scheduler polls for overdue tasks on a fixed interval and forwards them to
// the sender. All failures are logged and the loop keeps going.
type Scheduler struct {
	tasks    TaskSource
	sender   Sender
	interval time.Duration
	logger   logging.Logger
}

func New(tasks TaskSource, sender Sender, interval time.Duration, logger logging.Logger) *Scheduler {
	return &Scheduler{
		tasks:    tasks,
		sender:   sender,
		interval: interval,
		logger:   logger.With("component", "scheduler"),
	}
}

// Run blocks until ctx is cancelled, executing one cycle per interval.
// A cycle runs immediately on start so reminders that came due while the
// server was down go out without waiting a full tick.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info(ctx, "scheduler started", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.runCycle(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "scheduler stopped")
			return
		case <-ticker.C:
		}
	}
}

// runCycle claims everything currently overdue and pushes a reminder per
// task. Delivery is best effort: a failed or absent connection never fails
// the cycle, and the task stays claimed either way.
func (s *Scheduler) runCycle(ctx context.Context) {
	tasks, err := s.tasks.ClaimOverdue(ctx, time.Now())
	if err != nil {
		s.logger.Error(ctx, "error claiming overdue tasks", "error", err)
		return
	}

	for _, task := range tasks {
		n := &Notification{
			Type:        "reminder",
			Title:       task.Title,
			Description: task.Description,
			DueDate:     task.DueDate.Format(time.RFC3339),
		}
		if err := s.sender.Send(task.UserID, n); err != nil {
			s.logger.Warn(ctx, "error delivering reminder", "task_id", task.ID, "user_id", task.UserID, "error", err)
		}
	}

	if len(tasks) > 0 {
		s.logger.Info(ctx, "reminder cycle finished", "count", len(tasks))
	}
}
