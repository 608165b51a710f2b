// Package refreshtokens provides a PostgreSQL-backed repository for managing
// refresh tokens used in the server's authentication flow.
package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"assistant-service/internal/common"
	"assistant-service/internal/dbx"
	"assistant-service/internal/server/models"
)

// PostgresRepository implements refresh token operations over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new refresh token row with an expiry time of now+validity.
func (r *PostgresRepository) Create(ctx context.Context, userID int64, tokenHash string, validity time.Duration) error {
	query := `
		INSERT INTO refresh_tokens (user_id, token_hash, issued_at, expires_at, revoked)
		VALUES ($1, $2, $3, $4, FALSE)
	`
	now := time.Now()
	if _, err := r.db.ExecContext(ctx, query, userID, tokenHash, now, now.Add(validity)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// FindByHash returns the refresh token row for the given secret hash.
// If not found, it returns common.ErrorNotFound.
func (r *PostgresRepository) FindByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, issued_at, expires_at, revoked
		FROM refresh_tokens
		WHERE token_hash = $1
	`
	token := &models.RefreshToken{}
	err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&token.ID, &token.UserID, &token.TokenHash, &token.IssuedAt, &token.ExpiresAt, &token.Revoked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return token, nil
}

// Revoke flips the revoked flag for the row with the given hash.
func (r *PostgresRepository) Revoke(ctx context.Context, tokenHash string) (bool, error) {
	query := `
		UPDATE refresh_tokens SET revoked = TRUE
		WHERE token_hash = $1
	`
	res, err := r.db.ExecContext(ctx, query, tokenHash)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected > 0, nil
}

// RevokeAllForUser flips the revoked flag for every token of the user.
func (r *PostgresRepository) RevokeAllForUser(ctx context.Context, userID int64) (int64, error) {
	query := `
		UPDATE refresh_tokens SET revoked = TRUE
		WHERE user_id = $1
	`
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return affected, nil
}
