package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bodhivana/storefront/internal/auth/domain"
	httpapi "github.com/bodhivana/storefront/internal/auth/http"
	"github.com/bodhivana/storefront/internal/auth/service"
	"github.com/bodhivana/storefront/internal/auth/store"
	"github.com/bodhivana/storefront/internal/auth/store/drivers/sqlite"
	"github.com/bodhivana/storefront/pkg/cryptox"
	"github.com/bodhivana/storefront/pkg/httpx"
	"github.com/bodhivana/storefront/pkg/idx"
	"github.com/bodhivana/storefront/pkg/jwtx"
)

/*
 * Common constants and helper functions for auth service end-to-end tests.
 * Each test boots the full router against an in-memory database and drives
 * it over real HTTP via httptest.
 */

const (
	testIssuer        = "bodhivana-auth"
	testJWTSecret     = "e2e-test-secret-0123456789abcdef0123"
	testWebhookSecret = "e2e-webhook-secret"
	defaultPassword   = "Password123"
)

type sentMail struct {
	to, name, otp string
}

// fakeMailer captures verification codes instead of delivering them.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (m *fakeMailer) SendOTP(ctx context.Context, to, name, otp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, sentMail{to: to, name: name, otp: otp})
	return nil
}

func (m *fakeMailer) setFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

func (m *fakeMailer) lastOTP(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "expected at least one verification email")
	return m.sent[len(m.sent)-1].otp
}

type testServer struct {
	URL     string
	Mailbox *fakeMailer
	Store   store.Store
}

// looseLimiters raises rate limits so tests can make many rapid requests
// without tripping the production thresholds.
func looseLimiters() httpapi.Limiters {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
	return httpapi.Limiters{
		Strict:   httpx.NewLocalLimiter(cfg),
		Moderate: httpx.NewLocalLimiter(cfg),
		Lenient:  httpx.NewLocalLimiter(cfg),
	}
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWithLimiters(t, looseLimiters())
}

func newTestServerWithLimiters(t *testing.T, limiters httpapi.Limiters) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	signer, err := jwtx.NewHS256([]byte(testJWTSecret), testIssuer)
	require.NoError(t, err)

	tokens := &service.TokenService{
		Signer:     signer,
		Store:      st,
		Issuer:     testIssuer,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}
	mailbox := &fakeMailer{}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := httpapi.NewRouter(signer, "test", st, limiters, []byte(testWebhookSecret), logger)
	router.AuthService = &service.AuthService{Store: st, Mailer: mailbox, Tokens: tokens}
	router.TokenService = tokens
	router.UserService = &service.UserService{Store: st}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{URL: srv.URL, Mailbox: mailbox, Store: st}
}

// do sends a JSON request and decodes an object response. Endpoints that
// return arrays go through doRaw instead.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	resp, raw := ts.doRaw(t, method, path, token, body)

	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "response body: %s", raw)
	}
	return resp, decoded
}

func (ts *testServer) doRaw(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

// signup registers a customer account and asserts success. New accounts
// come with two-factor enabled.
func (ts *testServer) signup(t *testing.T, name, email string) {
	t.Helper()

	resp, body := ts.do(t, http.MethodPost, "/api/signup", "", map[string]string{
		"name":      name,
		"email":     email,
		"password":  defaultPassword,
		"cPassword": defaultPassword,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "Account create successfully. Please login", body["message"])
}

// signupNo2FA registers an account and switches the second factor off in
// the store so password login yields tokens directly.
func (ts *testServer) signupNo2FA(t *testing.T, name, email string) {
	t.Helper()

	ts.signup(t, name, email)
	u, err := ts.Store.Users().GetUserByEmail(context.Background(), email)
	require.NoError(t, err)
	require.NoError(t, ts.Store.Users().SetTwoFactor(context.Background(), u.ID, false))
}

func (ts *testServer) signin(t *testing.T, email, password string) (*http.Response, map[string]any) {
	t.Helper()
	return ts.do(t, http.MethodPost, "/api/signin", "", map[string]string{
		"email":    email,
		"password": password,
	})
}

// signinTokens performs a password login expected to yield a token pair
// directly, which means the account must have two-factor switched off.
func (ts *testServer) signinTokens(t *testing.T, email string) (access, refresh string) {
	t.Helper()

	resp, body := ts.signin(t, email, defaultPassword)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assertTokenResponse(t, body)
	return body["access_token"].(string), body["refresh_token"].(string)
}

// loginWithOTP completes a full two-factor login: password, then the
// emailed code.
func (ts *testServer) loginWithOTP(t *testing.T, email string) (access, refresh string) {
	t.Helper()

	resp, body := ts.signin(t, email, defaultPassword)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["requiresOTP"])

	resp, body = ts.do(t, http.MethodPost, "/api/verify-otp", "", map[string]string{
		"email": email,
		"otp":   ts.Mailbox.lastOTP(t),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assertTokenResponse(t, body)
	return body["access_token"].(string), body["refresh_token"].(string)
}

// enableTwoFactor turns the email second factor on for the holder of access.
func (ts *testServer) enableTwoFactor(t *testing.T, access string) {
	t.Helper()

	resp, body := ts.do(t, http.MethodPost, "/api/enable-2fa", access, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Two-factor authentication enabled successfully", body["message"])
}

// createAdmin inserts an administrator directly, then signs in over HTTP.
func (ts *testServer) createAdmin(t *testing.T, email string) (access string) {
	t.Helper()

	hash, err := cryptox.HashPassword(defaultPassword)
	require.NoError(t, err)

	now := time.Now().UTC()
	err = ts.Store.Users().CreateUser(context.Background(), domain.User{
		ID:           idx.New().String(),
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)

	access, _ = ts.signinTokens(t, email)
	return access
}

// assertTokenResponse verifies a token response has all required fields.
func assertTokenResponse(t *testing.T, body map[string]any) {
	t.Helper()
	require.NotEmpty(t, body["access_token"], "Access token should not be empty")
	require.NotEmpty(t, body["refresh_token"], "Refresh token should not be empty")
	require.Equal(t, "Bearer", body["token_type"], "Token type should be Bearer")
	require.Greater(t, body["expires_in"], float64(0), "Expiry should be positive")
}

// assertErrorMessage verifies the standard {"error": "..."} response shape.
func assertErrorMessage(t *testing.T, body map[string]any, message string) {
	t.Helper()
	require.Equal(t, message, body["error"])
}

// fieldError extracts a per-field validation message from {"error": {field: msg}}.
func fieldError(t *testing.T, body map[string]any, field string) string {
	t.Helper()
	fields, ok := body["error"].(map[string]any)
	require.True(t, ok, "expected field error object, got: %v", body["error"])
	msg, _ := fields[field].(string)
	return msg
}

// wrongOTP returns a six digit code guaranteed not to match the real one.
func wrongOTP(actual string) string {
	if actual == "000000" {
		return "111111"
	}
	return "000000"
}
