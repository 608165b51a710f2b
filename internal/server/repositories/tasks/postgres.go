package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"assistant-service/internal/dbx"
	"assistant-service/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := `
		INSERT INTO tasks (user_id, title, description, due_date, is_completed, is_notified, created_at)
		VALUES ($1, $2, $3, $4, FALSE, FALSE, $5)
		RETURNING id
	`
	task.CreatedAt = time.Now()
	err := r.db.QueryRowContext(ctx, query,
		task.UserID, task.Title, task.Description, task.DueDate, task.CreatedAt).Scan(&task.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return task, nil
}

func (r *PostgresRepository) ListDueUnnotified(ctx context.Context, now time.Time) ([]models.Task, error) {
	query := `
		SELECT id, user_id, title, description, due_date, is_completed, is_notified, created_at
		FROM tasks
		WHERE is_completed = FALSE
		  AND is_notified = FALSE
		  AND due_date <= $1
		ORDER BY due_date
	`
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.DueDate, &t.Completed, &t.Notified, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) MarkNotified(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`UPDATE tasks SET is_notified = TRUE WHERE id IN (%s)`, strings.Join(placeholders, ", "))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return affected, nil
}

func (r *PostgresRepository) ListForUser(ctx context.Context, userID int64) ([]models.Task, error) {
	query := `
		SELECT id, user_id, title, description, due_date, is_completed, is_notified, created_at
		FROM tasks
		WHERE user_id = $1
		ORDER BY due_date DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.DueDate, &t.Completed, &t.Notified, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) MarkCompleted(ctx context.Context, id, userID int64) (bool, error) {
	query := `
		UPDATE tasks SET is_completed = TRUE
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected > 0, nil
}
