package models

import "time"

// Task is a user reminder. Notified transitions false→true exactly once,
// driven solely by the reminder scheduler; Completed is mutated by the task
// API.
type Task struct {
	ID          int64
	UserID      int64
	Title       string
	Description string
	DueDate     time.Time
	Completed   bool
	Notified    bool
	CreatedAt   time.Time
}
