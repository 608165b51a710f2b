// Package revokedtokens declares the denylist of revoked access-token
// identifiers (jti). Entries matter only until the token's natural expiry;
// stale rows are purged lazily during lookups, which keeps the table bounded
// without a separate sweep process.
package revokedtokens

import (
	"context"
	"time"
)

type Repository interface {
	// Insert records a revoked jti with its expiry. Idempotent: inserting an
	// already-present jti is not an error.
	Insert(ctx context.Context, jti string, expiresAt time.Time) error

	// IsRevoked reports whether the jti is currently revoked. An entry whose
	// expiry has passed is deleted opportunistically and reported as not
	// revoked.
	IsRevoked(ctx context.Context, jti string, now time.Time) (bool, error)
}
