package auth_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSigninInvalidCredentials(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "Aarav Sharma", "aarav@example.com")

	t.Run("wrong password", func(t *testing.T) {
		resp, body := ts.signin(t, "aarav@example.com", "WrongPassword1")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assertErrorMessage(t, body, "Invalid email or password")
	})

	t.Run("unknown email", func(t *testing.T) {
		resp, body := ts.signin(t, "nobody@example.com", defaultPassword)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assertErrorMessage(t, body, "Invalid email or password")
	})

	t.Run("empty fields", func(t *testing.T) {
		resp, body := ts.signin(t, "", "")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assertErrorMessage(t, body, "Fields must not be empty")
	})
}

func TestSigninTwoFactorChallenge(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "Diya Patel", "diya@example.com")

	resp, body := ts.signin(t, "diya@example.com", defaultPassword)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["requiresOTP"])
	require.Equal(t, "Please check your email for OTP verification", body["message"])

	// No tokens until the code is verified
	require.Nil(t, body["access_token"])
	require.Len(t, ts.Mailbox.lastOTP(t), 6)
}

func TestSigninWithoutTwoFactor(t *testing.T) {
	ts := newTestServer(t)
	ts.signupNo2FA(t, "Aarav Sharma", "aarav@example.com")

	access, refresh := ts.signinTokens(t, "aarav@example.com")
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
}

func TestSigninMailFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "Diya Patel", "diya@example.com")

	ts.Mailbox.setFail(true)
	resp, body := ts.signin(t, "diya@example.com", defaultPassword)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assertErrorMessage(t, body, "Failed to send verification code. Please try again.")
}
