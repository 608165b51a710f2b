// Package auth holds the credential primitives of the backend: HS256 access
// tokens and the salted password digest. Persistence-aware checks (revocation,
// refresh lookup) live in the service layer.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"assistant-service/internal/common"
)

// Claims is the access-token payload: registered claims (sub, iat, exp and
// the jti in ID) plus the numeric user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"id"`
}

// GenerateToken mints a signed HS256 access token for the given subject and
// user id with a fresh random jti.
func GenerateToken(subject string, userID int64, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
			ID:        uuid.NewString(),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and claim validity of an access token.
// It returns common.ErrTokenExpired for expired tokens and
// common.ErrInvalidToken for anything else that fails to verify.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// DecodeExpired extracts claims from a token whose signature verifies but
// whose registered claims are not validated. A token may be revoked even when
// it is already at or past its natural expiry.
func DecodeExpired(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	_, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return secretKey, nil
	})
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
