package models

import "time"

// RevokedToken is a denylist entry for a revoked access credential. The entry
// is only meaningful until ExpiresAt; past that the token is dead anyway and
// the row is purged lazily on lookup.
type RevokedToken struct {
	JTI       string
	ExpiresAt time.Time
}
