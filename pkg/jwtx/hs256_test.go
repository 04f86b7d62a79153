package jwtx_test

import (
	"testing"
	"time"

	"github.com/bodhivana/storefront/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewHS256RejectsShortSecret(t *testing.T) {
	_, err := jwtx.NewHS256([]byte("too short"), "auth-service")
	require.Error(t, err)
}

func TestHS256SignVerifyRoundTrip(t *testing.T) {
	h, err := jwtx.NewHS256([]byte(testSecret), "auth-service")
	require.NoError(t, err)

	claims := jwtx.NewAccessClaims(
		"01JC0000000000000000000000",
		1,
		"admin@example.com", "Admin",
		15*time.Minute,
		"auth-service",
		time.Now().UTC(),
	)

	token, err := h.Sign(claims)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := h.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "01JC0000000000000000000000", got.Subject)
	require.Equal(t, 1, got.Role)
	require.Equal(t, "admin@example.com", got.Email)
	require.Equal(t, "Admin", got.Name)
	require.NotEmpty(t, got.ID)
}

func TestHS256RejectsExpiredToken(t *testing.T) {
	h, err := jwtx.NewHS256([]byte(testSecret), "auth-service")
	require.NoError(t, err)

	claims := jwtx.NewAccessClaims(
		"user-1", 0, "u@example.com", "User",
		-1*time.Minute,
		"auth-service",
		time.Now().UTC().Add(-2*time.Minute),
	)

	token, err := h.Sign(claims)
	require.NoError(t, err)

	_, err = h.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestHS256RejectsMissingExpiry(t *testing.T) {
	h, err := jwtx.NewHS256([]byte(testSecret), "auth-service")
	require.NoError(t, err)

	claims := jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:  "auth-service",
			Subject: "user-1",
		},
	}

	token, err := h.Sign(claims)
	require.NoError(t, err)

	_, err = h.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestHS256RejectsWrongSecret(t *testing.T) {
	a, err := jwtx.NewHS256([]byte(testSecret), "auth-service")
	require.NoError(t, err)

	b, err := jwtx.NewHS256([]byte("fedcba9876543210fedcba9876543210"), "auth-service")
	require.NoError(t, err)

	token, err := a.Sign(jwtx.NewAccessClaims(
		"user-1", 0, "", "", time.Minute, "auth-service", time.Now().UTC(),
	))
	require.NoError(t, err)

	_, err = b.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestHS256RejectsWrongIssuer(t *testing.T) {
	signer, err := jwtx.NewHS256([]byte(testSecret), "other-service")
	require.NoError(t, err)

	verifier, err := jwtx.NewHS256([]byte(testSecret), "auth-service")
	require.NoError(t, err)

	token, err := signer.Sign(jwtx.NewAccessClaims(
		"user-1", 0, "", "", time.Minute, "other-service", time.Now().UTC(),
	))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestHS256RejectsMalformed(t *testing.T) {
	h, err := jwtx.NewHS256([]byte(testSecret), "auth-service")
	require.NoError(t, err)

	_, err = h.Verify("not.a.jwt")
	require.Error(t, err)
}
