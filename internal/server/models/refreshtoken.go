package models

import "time"

// RefreshToken is the stored form of a long-lived opaque refresh credential.
// TokenHash holds the one-way hash of the secret; the plaintext is never
// persisted. Records are retained after revocation for audit and replay
// detection.
type RefreshToken struct {
	ID        int64
	UserID    int64
	TokenHash string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Revoked   bool
}
