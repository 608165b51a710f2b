package users

import (
	"context"

	"assistant-service/internal/server/models"
)

type Repository interface {
	// Create inserts a new user. A username or email collision is reported
	// as common.ErrUserExists, detected at insert time rather than by a
	// separate existence check.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}
