package cryptox_test

import (
	"strings"
	"testing"

	"github.com/bodhivana/storefront/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := cryptox.HashPassword("Abc12345")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$2a$10$"), "expected bcrypt cost 10 prefix, got %q", hash)

	require.NoError(t, cryptox.VerifyPassword("Abc12345", hash))
	require.ErrorIs(t, cryptox.VerifyPassword("Abc12346", hash), cryptox.ErrMismatch)
}

func TestHashesAreSalted(t *testing.T) {
	t.Parallel()

	a, err := cryptox.HashPassword("same-password")
	require.NoError(t, err)
	b, err := cryptox.HashPassword("same-password")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestVerifyPasswordRejectsGarbageHash(t *testing.T) {
	t.Parallel()

	err := cryptox.VerifyPassword("whatever", "not-a-bcrypt-hash")
	require.Error(t, err)
	require.NotErrorIs(t, err, cryptox.ErrMismatch)
}
