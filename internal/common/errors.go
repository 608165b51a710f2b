// Package common defines shared constants and sentinel errors used across
// the assistant backend. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Registration errors.
	ErrUserExists = errors.New("user exists")

	// Login errors. Covers both "no such user" and "wrong password" so the
	// caller cannot tell which occurred.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Access-token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")

	// Refresh-token lifecycle errors.
	ErrTokenNotFound = errors.New("token not found")
)
