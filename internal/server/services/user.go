// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, access-token verification
// and revocation, and refresh-token rotation.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"assistant-service/internal/common"
	"assistant-service/internal/dbx"
	"assistant-service/internal/server/auth"
	"assistant-service/internal/server/config"
	"assistant-service/internal/server/models"
	"assistant-service/internal/server/repositories/repomanager"
)

// refreshSecretSize is the number of random bytes behind an opaque refresh
// secret, before URL-safe encoding.
const refreshSecretSize = 64

// TokenPair bundles a short-lived access token and a long-lived refresh token.
// RefreshToken holds the plaintext secret; this is the only moment it exists
// outside the caller.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LogoutResult reports which credentials a logout actually revoked.
type LogoutResult struct {
	AccessRevoked  bool
	RefreshRevoked bool
}

// UserService provides the session lifecycle:
//   - Register: create users (salted digest, uniqueness enforced at insert)
//   - Login: verify credentials and mint a token pair
//   - VerifyAccessToken: signature + expiry + revocation check
//   - Refresh: rotate refresh tokens and mint new access tokens
//   - Logout: revoke the access token and optionally a refresh token
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register creates a new user with a fresh random salt and the salted
// password digest. A username or email collision surfaces as
// common.ErrUserExists straight from the insert, so there is no window
// between an existence check and the write.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	salt, err := auth.GenerateSalt()
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		UserName:     username,
		Email:        email,
		Salt:         salt,
		PasswordHash: auth.HashPassword(salt, password),
	}

	repo := s.repomanager.Users(s.db)
	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrUserExists) {
			return nil, common.ErrUserExists
		}
		return nil, fmt.Errorf("error creating user: %v", err)
	}
	return user, nil
}

// Login verifies the password against the stored digest and, on success,
// returns the user together with a new token pair. A missing user and a
// wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, *TokenPair, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrInvalidCredentials
		}
		return nil, nil, common.ErrorInternal
	}

	if !auth.VerifyPassword(user.Salt, password, user.PasswordHash) {
		return nil, nil, common.ErrInvalidCredentials
	}

	pair, err := s.generateTokenPair(ctx, user, s.db)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// VerifyAccessToken checks signature and expiry, then consults the revocation
// registry by jti. Errors follow the token taxonomy: ErrInvalidToken,
// ErrTokenExpired, ErrTokenRevoked.
func (s *UserService) VerifyAccessToken(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	revoked, err := s.repomanager.RevokedTokens(s.db).IsRevoked(ctx, claims.ID, time.Now())
	if err != nil {
		return nil, common.ErrorInternal
	}
	if revoked {
		return nil, common.ErrTokenRevoked
	}

	return claims, nil
}

// RevokeAccessToken denylists the token's jti until its natural expiry. The
// token's claims are decoded without expiry enforcement so that an
// almost-expired token can still be revoked explicitly.
func (s *UserService) RevokeAccessToken(ctx context.Context, token string) error {
	claims, err := auth.DecodeExpired(token, s.jwtSecret)
	if err != nil {
		return common.ErrInvalidToken
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return common.ErrInvalidToken
	}

	if err := s.repomanager.RevokedTokens(s.db).Insert(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// Refresh validates a refresh secret and rotates it transactionally: the
// presented record is marked revoked and a brand-new pair is issued for the
// same user. A rotated-away secret presented again fails with
// ErrTokenRevoked.
func (s *UserService) Refresh(ctx context.Context, secret string) (*models.User, *TokenPair, error) {
	tokenHash := auth.HashRefreshSecret(secret)

	record, err := s.repomanager.RefreshTokens(s.db).FindByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrTokenNotFound
		}
		return nil, nil, fmt.Errorf("error searching refresh token: %v", err)
	}
	if record.Revoked {
		return nil, nil, common.ErrTokenRevoked
	}
	if record.ExpiresAt.Before(time.Now()) {
		return nil, nil, common.ErrTokenExpired
	}

	var user *models.User
	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.RefreshTokens(tx).Revoke(ctx, tokenHash); err != nil {
			return fmt.Errorf("error revoking refresh token: %v", err)
		}

		var getErr error
		user, getErr = s.repomanager.Users(tx).GetUserByID(ctx, record.UserID)
		if getErr != nil {
			return fmt.Errorf("error loading user: %v", getErr)
		}

		var genErr error
		pair, genErr = s.generateTokenPair(ctx, user, tx)
		return genErr
	}); err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// RevokeRefreshToken marks the record matching the presented secret revoked.
// It reports whether a record was actually revoked.
func (s *UserService) RevokeRefreshToken(ctx context.Context, secret string) (bool, error) {
	return s.repomanager.RefreshTokens(s.db).Revoke(ctx, auth.HashRefreshSecret(secret))
}

// RevokeAllRefreshTokens revokes every refresh token of the user; used for
// security events.
func (s *UserService) RevokeAllRefreshTokens(ctx context.Context, userID int64) (int64, error) {
	return s.repomanager.RefreshTokens(s.db).RevokeAllForUser(ctx, userID)
}

// Logout revokes the access token and, when a refresh secret is supplied,
// that refresh token too. Failures to revoke either credential show up as
// false flags rather than errors.
func (s *UserService) Logout(ctx context.Context, accessToken, refreshToken string) *LogoutResult {
	res := &LogoutResult{}

	if err := s.RevokeAccessToken(ctx, accessToken); err == nil {
		res.AccessRevoked = true
	}

	if refreshToken != "" {
		if ok, err := s.RevokeRefreshToken(ctx, refreshToken); err == nil && ok {
			res.RefreshRevoked = true
		}
	}

	return res
}

// GetUser loads a user by id.
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// --- helpers below ---

func (s *UserService) generateAccessToken(user *models.User) (string, error) {
	return auth.GenerateToken(user.UserName, user.ID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateRefreshSecret() (string, error) {
	return common.MakeRandURLSafeString(refreshSecretSize)
}

func (s *UserService) generateTokenPair(ctx context.Context, user *models.User, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.generateAccessToken(user)
	if err != nil {
		return nil, common.ErrorInternal
	}

	secret, err := s.generateRefreshSecret()
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, user.ID, auth.HashRefreshSecret(secret), s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: access, RefreshToken: secret}, nil
}
