package revokedtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"assistant-service/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert upserts a revoked jti. ON CONFLICT DO NOTHING makes re-revoking the
// same token a no-op.
func (r *PostgresRepository) Insert(ctx context.Context, jti string, expiresAt time.Time) error {
	query := `
		INSERT INTO revoked_tokens (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, jti, expiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// IsRevoked checks the denylist. A present entry with expires_at >= now means
// revoked; an expired entry is deleted on the spot and reported as not
// revoked.
func (r *PostgresRepository) IsRevoked(ctx context.Context, jti string, now time.Time) (bool, error) {
	query := `
		SELECT expires_at FROM revoked_tokens
		WHERE jti = $1
	`
	var expiresAt time.Time
	err := r.db.QueryRowContext(ctx, query, jti).Scan(&expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", err)
	}

	if expiresAt.Before(now) {
		// the token is dead anyway; best-effort purge
		_, _ = r.db.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE jti = $1`, jti)
		return false, nil
	}

	return true, nil
}
