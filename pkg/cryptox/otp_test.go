package cryptox_test

import (
	"strconv"
	"testing"

	"github.com/bodhivana/storefront/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTPRange(t *testing.T) {
	t.Parallel()

	for range 200 {
		otp, err := cryptox.GenerateOTP()
		require.NoError(t, err)
		require.Len(t, otp, 6)

		n, err := strconv.Atoi(otp)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 100000)
		require.LessOrEqual(t, n, 999999)
	}
}

func TestOTPRoundTrip(t *testing.T) {
	t.Parallel()

	otp, err := cryptox.GenerateOTP()
	require.NoError(t, err)

	hash, err := cryptox.HashOTP(otp)
	require.NoError(t, err)
	require.NotContains(t, hash, otp)

	require.NoError(t, cryptox.VerifyOTP(otp, hash))
	require.ErrorIs(t, cryptox.VerifyOTP("000000", hash), cryptox.ErrMismatch)
}

func TestFingerprintTokenIsDeterministic(t *testing.T) {
	t.Parallel()

	tok, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	require.Equal(t, cryptox.FingerprintToken(tok), cryptox.FingerprintToken(tok))
	require.NotEqual(t, cryptox.FingerprintToken(tok), cryptox.FingerprintToken(tok+"x"))
}
