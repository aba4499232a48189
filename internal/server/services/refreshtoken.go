// Package services contains server-side business logic. This file implements
// RefreshTokenService, the lifecycle manager for server-stored refresh tokens:
// issuance with lazy cleanup, validation, rotation, and revocation.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shepherdhq/memberd/internal/common"
	"github.com/shepherdhq/memberd/internal/dbx"
	"github.com/shepherdhq/memberd/internal/server/auth"
	"github.com/shepherdhq/memberd/internal/server/config"
	"github.com/shepherdhq/memberd/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

const defaultRefreshTokenTTL = 7 * 24 * time.Hour

// RefreshTokenService owns the refresh-token lifecycle. Rotation is
// create-before-revoke: the new token exists before the old one dies, so a
// crash mid-rotation never strands the client with zero usable tokens. The
// conditional revoke at the end is what detects a concurrently rotated (or
// stolen-and-replayed) token.
type RefreshTokenService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	issuer      *auth.Issuer
	ttl         time.Duration
	now         func() time.Time
}

// NewRefreshTokenService constructs the lifecycle manager using server config.
func NewRefreshTokenService(db *sql.DB, m repomanager.RepositoryManager, issuer *auth.Issuer, cfg *config.Config) *RefreshTokenService {
	return &RefreshTokenService{
		db:          db,
		repomanager: m,
		issuer:      issuer,
		ttl:         parseTTL(cfg.RefreshTokenTTL),
		now:         time.Now,
	}
}

// parseTTL understands "7d" and "12h" style durations. Anything it cannot
// parse falls back to seven days rather than failing issuance.
func parseTTL(s string) time.Duration {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return defaultRefreshTokenTTL
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return defaultRefreshTokenTTL
	}
	switch s[len(s)-1] {
	case 'd':
		return time.Duration(n) * 24 * time.Hour
	case 'h':
		return time.Duration(n) * time.Hour
	}
	return defaultRefreshTokenTTL
}

// Create mints a new refresh token for userID. The user's dead rows (expired
// or revoked) are purged in the same transaction, so cleanup needs no
// background job.
func (s *RefreshTokenService) Create(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	expiresAt := s.now().Add(s.ttl)

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.RefreshTokens(tx)
		if err := repo.DeleteExpiredOrRevoked(ctx, userID); err != nil {
			return fmt.Errorf("error cleaning up refresh tokens: %w", err)
		}
		if err := repo.Create(ctx, userID, token, expiresAt); err != nil {
			return fmt.Errorf("error creating refresh token: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// Validate checks that the token exists and is still usable, and returns the
// owning user's ID. Each failure mode has its own sentinel; all of them
// unwrap to ErrUnauthorized.
func (s *RefreshTokenService) Validate(ctx context.Context, token string) (string, error) {
	repo := s.repomanager.RefreshTokens(s.db)
	rt, err := repo.Find(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrTokenInvalid
		}
		return "", fmt.Errorf("%w: error finding refresh token: %w", common.ErrInternal, err)
	}
	if rt.IsRevoked {
		return "", common.ErrTokenRevoked
	}
	if !rt.ExpiresAt.After(s.now()) {
		return "", common.ErrTokenExpired
	}
	return rt.UserID, nil
}

// Rotate exchanges a usable refresh token for a fresh token pair. The access
// token carries the user's claims as they are now, not as they were at login.
//
// The old token is revoked conditionally after the new one exists. Zero
// affected rows means another rotation of the same token won the race; the
// freshly minted token is revoked best-effort and the caller gets
// ErrUnauthorized, so a replayed token can never yield two live sessions.
func (s *RefreshTokenService) Rotate(ctx context.Context, oldToken string) (*TokenPair, error) {
	userID, err := s.Validate(ctx, oldToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: error finding user: %w", common.ErrInternal, err)
	}

	newToken, err := s.Create(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: error creating refresh token: %w", common.ErrInternal, err)
	}

	access, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("%w: error issuing access token: %w", common.ErrInternal, err)
	}

	affected, err := s.repomanager.RefreshTokens(s.db).Revoke(ctx, oldToken)
	if err != nil {
		return nil, fmt.Errorf("%w: error revoking refresh token: %w", common.ErrInternal, err)
	}
	if affected == 0 {
		// Lost the race: someone else already rotated or revoked oldToken.
		// Kill the token we just minted so the replay gains nothing.
		_, _ = s.repomanager.RefreshTokens(s.db).Revoke(ctx, newToken)
		return nil, common.ErrUnauthorized
	}

	return &TokenPair{AccessToken: access, RefreshToken: newToken}, nil
}

// Revoke marks the token revoked. Revoking an absent or already-revoked
// token is a no-op, so logout is idempotent.
func (s *RefreshTokenService) Revoke(ctx context.Context, token string) error {
	if _, err := s.repomanager.RefreshTokens(s.db).Revoke(ctx, token); err != nil {
		return fmt.Errorf("%w: error revoking refresh token: %w", common.ErrInternal, err)
	}
	return nil
}

// RevokeAllForUser kills every session the user has, active or not.
func (s *RefreshTokenService) RevokeAllForUser(ctx context.Context, userID string) error {
	if err := s.repomanager.RefreshTokens(s.db).RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("%w: error revoking refresh tokens: %w", common.ErrInternal, err)
	}
	return nil
}
