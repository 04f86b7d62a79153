package service

import (
	"context"
	"errors"
	"time"

	"github.com/bodhivana/storefront/internal/auth/domain"
	"github.com/bodhivana/storefront/internal/auth/store"
	"github.com/bodhivana/storefront/pkg/cryptox"
	"github.com/bodhivana/storefront/pkg/idx"
	"github.com/bodhivana/storefront/pkg/jwtx"
)

var ErrInvalidRefresh = errors.New("invalid_refresh_token")

// TokenService issues short-lived JWT access tokens paired with opaque,
// rotated refresh tokens. Only fingerprints of refresh tokens are stored.
type TokenService struct {
	Signer     jwtx.Signer
	Store      store.Store
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Issue mints a fresh token pair for an authenticated user.
func (s *TokenService) Issue(ctx context.Context, u domain.User) (*domain.TokenPair, error) {
	now := time.Now().UTC()

	// 1. Sign the access token
	accessToken, err := s.signAccess(u, now)
	if err != nil {
		return nil, err
	}

	// 2. Generate the opaque refresh token and persist its fingerprint
	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	rt := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(refreshOpaque),
		ExpiresAt: now.Add(s.RefreshTTL),
		Revoked:   false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshOpaque,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.AccessTTL.Seconds()),
	}, nil
}

// Refresh validates the provided refresh token (by fingerprint lookup plus
// expiry/revocation check) and issues a new pair, rotating the refresh token.
func (s *TokenService) Refresh(ctx context.Context, refreshOpaque string) (*domain.TokenPair, error) {
	now := time.Now().UTC()

	// 1. Lookup the persisted refresh row by token fingerprint
	fp := cryptox.FingerprintToken(refreshOpaque)
	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	// 2. Validate token is not expired or revoked
	if rt.Revoked {
		return nil, ErrInvalidRefresh
	}
	if now.After(rt.ExpiresAt) {
		return nil, ErrInvalidRefresh
	}

	// 3. Load the user so new claims reflect the current role and name
	u, err := s.Store.Users().GetUserByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	// 4. Issue new access token
	accessToken, err := s.signAccess(u, now)
	if err != nil {
		return nil, err
	}

	// 5. Rotate: generate new refresh token, revoke old one atomically
	newRefreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	newRT := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(newRefreshOpaque),
		ExpiresAt: now.Add(s.RefreshTTL),
		Revoked:   false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
			return err
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, newRT)
	}); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshOpaque, // return new refresh token (rotated)
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.AccessTTL.Seconds()),
	}, nil
}

// Revoke revokes a single refresh token (by its opaque value).
func (s *TokenService) Revoke(ctx context.Context, refreshOpaque string) error {
	fp := cryptox.FingerprintToken(refreshOpaque)
	return s.Store.RefreshTokens().RevokeRefreshToken(ctx, fp)
}

// RevokeAll revokes every live refresh token a user holds.
func (s *TokenService) RevokeAll(ctx context.Context, userID string) error {
	return s.Store.RefreshTokens().RevokeAllUserRefreshTokens(ctx, userID)
}

func (s *TokenService) signAccess(u domain.User, now time.Time) (string, error) {
	claims := jwtx.NewAccessClaims(
		u.ID,        // subject
		u.Role,      // role
		u.Email,     // email
		u.Name,      // display name
		s.AccessTTL, // token lifetime
		s.Issuer,    // issuer
		now,         // current time
	)
	return s.Signer.Sign(claims)
}
