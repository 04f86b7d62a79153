package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bodhivana/storefront/internal/auth/domain"
	"github.com/bodhivana/storefront/internal/auth/service"
	"github.com/bodhivana/storefront/internal/auth/store/drivers/sqlite"
	"github.com/bodhivana/storefront/pkg/idx"
	"github.com/bodhivana/storefront/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newTokenService(t *testing.T) (*service.TokenService, *sqlite.Store, *jwtx.HS256) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	signer, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), "auth-test")
	require.NoError(t, err)

	return &service.TokenService{
		Signer:     signer,
		Store:      st,
		Issuer:     "auth-test",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}, st, signer
}

func storeUser(t *testing.T, st *sqlite.Store, email string, role int) domain.User {
	t.Helper()

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		Name:         "Token User",
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))
	return u
}

func TestIssueTokenPair(t *testing.T) {
	tokens, st, verifier := newTokenService(t)
	ctx := context.Background()

	u := storeUser(t, st, "issue@example.com", domain.RoleAdmin)

	pair, err := tokens.Issue(ctx, u)
	require.NoError(t, err)
	require.Equal(t, "Bearer", pair.TokenType)
	require.EqualValues(t, 15*60, pair.ExpiresIn)

	claims, err := verifier.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.Subject)
	require.Equal(t, domain.RoleAdmin, claims.Role)
	require.Equal(t, u.Email, claims.Email)

	// The opaque refresh token is stored only as a fingerprint.
	_, err = st.RefreshTokens().GetRefreshTokenByHash(ctx, pair.RefreshToken)
	require.Error(t, err)
}

func TestRefreshRotation(t *testing.T) {
	tokens, st, _ := newTokenService(t)
	ctx := context.Background()

	u := storeUser(t, st, "rotate@example.com", domain.RoleCustomer)

	pair, err := tokens.Issue(ctx, u)
	require.NoError(t, err)

	rotated, err := tokens.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The old refresh token is revoked by the rotation.
	_, err = tokens.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrInvalidRefresh)

	// The new one still works.
	_, err = tokens.Refresh(ctx, rotated.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	tokens, _, _ := newTokenService(t)

	_, err := tokens.Refresh(context.Background(), "never-issued")
	require.ErrorIs(t, err, service.ErrInvalidRefresh)
}

func TestRevoke(t *testing.T) {
	tokens, st, _ := newTokenService(t)
	ctx := context.Background()

	u := storeUser(t, st, "revoke@example.com", domain.RoleCustomer)

	pair, err := tokens.Issue(ctx, u)
	require.NoError(t, err)

	require.NoError(t, tokens.Revoke(ctx, pair.RefreshToken))

	_, err = tokens.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrInvalidRefresh)
}

func TestRevokeAll(t *testing.T) {
	tokens, st, _ := newTokenService(t)
	ctx := context.Background()

	u := storeUser(t, st, "revokeall@example.com", domain.RoleCustomer)

	first, err := tokens.Issue(ctx, u)
	require.NoError(t, err)
	second, err := tokens.Issue(ctx, u)
	require.NoError(t, err)

	require.NoError(t, tokens.RevokeAll(ctx, u.ID))

	_, err = tokens.Refresh(ctx, first.RefreshToken)
	require.ErrorIs(t, err, service.ErrInvalidRefresh)
	_, err = tokens.Refresh(ctx, second.RefreshToken)
	require.ErrorIs(t, err, service.ErrInvalidRefresh)
}
