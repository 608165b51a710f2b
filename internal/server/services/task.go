package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"assistant-service/internal/common"
	"assistant-service/internal/dbx"
	"assistant-service/internal/server/models"
	"assistant-service/internal/server/repositories/repomanager"
)

// TaskService manages reminder tasks: CRUD for the owning user and the
// claim step of the reminder pipeline.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager) *TaskService {
	return &TaskService{db: db, repomanager: m}
}

// Create stores a new task for the user.
func (s *TaskService) Create(ctx context.Context, userID int64, title, description string, dueDate time.Time) (*models.Task, error) {
	task := &models.Task{
		UserID:      userID,
		Title:       title,
		Description: description,
		DueDate:     dueDate,
	}

	task, err := s.repomanager.Tasks(s.db).Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("error creating task: %v", err)
	}
	return task, nil
}

// ListForUser returns all the user's tasks ordered by due date.
func (s *TaskService) ListForUser(ctx context.Context, userID int64) ([]models.Task, error) {
	tasks, err := s.repomanager.Tasks(s.db).ListForUser(ctx, userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return tasks, nil
}

// Complete marks the user's task done. A task id belonging to somebody else
// is indistinguishable from a missing one.
func (s *TaskService) Complete(ctx context.Context, id, userID int64) error {
	ok, err := s.repomanager.Tasks(s.db).MarkCompleted(ctx, id, userID)
	if err != nil {
		return common.ErrorInternal
	}
	if !ok {
		return common.ErrorNotFound
	}
	return nil
}

// ClaimOverdue selects tasks that are due, incomplete and not yet notified,
// and marks them notified in the same transaction. Marking before delivery
// means a crashed send drops the reminder instead of repeating it; the task
// itself stays incomplete and visible.
func (s *TaskService) ClaimOverdue(ctx context.Context, now time.Time) ([]models.Task, error) {
	var claimed []models.Task

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tasks(tx)

		tasks, err := repo.ListDueUnnotified(ctx, now)
		if err != nil {
			return fmt.Errorf("error listing due tasks: %v", err)
		}
		if len(tasks) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(tasks))
		for _, t := range tasks {
			ids = append(ids, t.ID)
		}

		n, err := repo.MarkNotified(ctx, ids)
		if err != nil {
			return fmt.Errorf("error marking tasks notified: %v", err)
		}
		if n != int64(len(ids)) {
			return errors.New("claimed task count mismatch")
		}

		claimed = tasks
		return nil
	})
	if err != nil {
		return nil, err
	}

	return claimed, nil
}
