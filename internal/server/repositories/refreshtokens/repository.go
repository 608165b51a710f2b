// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage. Only the one-way hash of a
// secret is ever stored; rows are revoked in place, never deleted, so that a
// replayed rotated secret is still recognizable.
package refreshtokens

import (
	"context"
	"time"

	"assistant-service/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh tokens.
type Repository interface {
	// Create stores a new refresh token row for userID keyed by tokenHash,
	// with an expiry of now+validity.
	Create(ctx context.Context, userID int64, tokenHash string, validity time.Duration) error

	// FindByHash looks up a refresh token by its secret hash and returns the
	// full row. Implementations return common.ErrorNotFound when absent.
	FindByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)

	// Revoke marks the row with the given hash revoked. It reports whether a
	// row was updated; revoking an unknown hash is not an error.
	Revoke(ctx context.Context, tokenHash string) (bool, error)

	// RevokeAllForUser marks every refresh token of the user revoked and
	// returns the number of rows affected.
	RevokeAllForUser(ctx context.Context, userID int64) (int64, error)
}
