package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"assistant-service/internal/common"
)

// SaltSize is the number of random bytes in a password salt.
const SaltSize = 16

// GenerateSalt returns a fresh random salt, hex encoded.
func GenerateSalt() (string, error) {
	return common.MakeRandHexString(SaltSize)
}

// HashPassword computes the stored password digest: hex(sha256(salt ∥ password)).
// Different salts make identical passwords hash differently.
func HashPassword(salt, password string) string {
	sum := sha256.Sum256([]byte(salt + password))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword recomputes the digest for a login attempt and compares it to
// the stored hash in constant time.
func VerifyPassword(salt, password, storedHash string) bool {
	candidate := HashPassword(salt, password)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(storedHash)) == 1
}

// HashRefreshSecret computes the one-way hash under which an opaque refresh
// secret is stored and looked up.
func HashRefreshSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
