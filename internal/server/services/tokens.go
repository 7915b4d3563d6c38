// Package services contains server-side business logic: the token lifecycle
// (issue, verify, refresh, revoke) and the account flows built on top of it.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mpetrenko/accountd/internal/common"
	"github.com/mpetrenko/accountd/internal/server/auth"
	"github.com/mpetrenko/accountd/internal/server/config"
	"github.com/mpetrenko/accountd/internal/server/models"
	"github.com/mpetrenko/accountd/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService issues and verifies the two token kinds:
//   - access: a self-contained HS256 JWT, verified without storage lookups;
//   - refresh: an opaque random string persisted with expiry and revocation
//     state, so revocation is durable and visible to every verifier.
//
// Refreshing mints a new access token only; the refresh token is not rotated.
type TokenService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewTokenService constructs a TokenService using repositories and server config.
func NewTokenService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *TokenService {
	return &TokenService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Issue generates a fresh token pair bound to userID and persists the
// refresh half.
func (s *TokenService) Issue(ctx context.Context, userID string) (*TokenPair, error) {
	access, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}

	repo := s.repomanager.RefreshTokens(s.db)
	if err := repo.Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess checks signature and expiry of an access token and returns the
// bound user ID.
func (s *TokenService) VerifyAccess(tokenString string) (string, error) {
	return auth.GetUserIDFromToken(tokenString, s.jwtSecret)
}

// VerifyRefresh checks that a refresh token exists, has not expired, and has
// not been revoked, and returns its stored metadata. Unknown tokens report
// ErrTokenMalformed so callers cannot probe the store.
func (s *TokenService) VerifyRefresh(ctx context.Context, refreshToken string) (*models.RefreshToken, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrTokenMalformed
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Revoked {
		return nil, common.ErrTokenRevoked
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrTokenExpired
	}
	return token, nil
}

// Refresh validates a refresh token and mints a new access token for the same
// identity. The refresh token stays valid until its own expiry or revocation.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	token, err := s.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	access, err := auth.GenerateToken(token.UserID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return access, nil
}

// Revoke marks a refresh token revoked. Revoking twice, or revoking a token
// the store has never seen, is not an error.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	return s.repomanager.RefreshTokens(s.db).Revoke(ctx, refreshToken)
}

// RevokeAllForUser revokes every live refresh token owned by userID. Access
// tokens already handed out remain valid until their own expiry.
func (s *TokenService) RevokeAllForUser(ctx context.Context, userID string) error {
	return s.repomanager.RefreshTokens(s.db).RevokeAllForUser(ctx, userID)
}
