package auth_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignupAndSignin(t *testing.T) {
	ts := newTestServer(t)

	ts.signup(t, "aarav sharma", "aarav@example.com")

	// A fresh account has two-factor on, so login runs the OTP flow
	access, refresh := ts.loginWithOTP(t, "aarav@example.com")
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	// The stored name was title-cased
	resp, body := ts.do(t, http.MethodGet, "/api/me", access, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Aarav Sharma", body["name"])
}

func TestSignupValidation(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name     string
		payload  map[string]string
		field    string
		expected string
	}{
		{
			name:     "empty name",
			payload:  map[string]string{"name": "", "email": "a@example.com", "password": defaultPassword, "cPassword": defaultPassword},
			field:    "name",
			expected: "Filed must not be empty",
		},
		{
			name:     "short name",
			payload:  map[string]string{"name": "Jo", "email": "a@example.com", "password": defaultPassword, "cPassword": defaultPassword},
			field:    "name",
			expected: "Name must be 3-25 charecter",
		},
		{
			name:     "invalid email",
			payload:  map[string]string{"name": "Aarav", "email": "not-an-email", "password": defaultPassword, "cPassword": defaultPassword},
			field:    "email",
			expected: "Email is not valid",
		},
		{
			name:     "short password",
			payload:  map[string]string{"name": "Aarav", "email": "a@example.com", "password": "short", "cPassword": "short"},
			field:    "password",
			expected: "Password must be 8 character",
		},
		{
			name:     "mismatched confirmation",
			payload:  map[string]string{"name": "Aarav", "email": "a@example.com", "password": defaultPassword, "cPassword": "Different1"},
			field:    "cPassword",
			expected: "Passwords do not match",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := ts.do(t, http.MethodPost, "/api/signup", "", tc.payload)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			require.Equal(t, tc.expected, fieldError(t, body, tc.field))
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	ts := newTestServer(t)

	ts.signup(t, "Aarav Sharma", "dup@example.com")

	resp, body := ts.do(t, http.MethodPost, "/api/signup", "", map[string]string{
		"name":      "Another Person",
		"email":     "dup@example.com",
		"password":  defaultPassword,
		"cPassword": defaultPassword,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Email already exists", fieldError(t, body, "email"))
}
