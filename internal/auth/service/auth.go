package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/bodhivana/storefront/internal/auth/domain"
	"github.com/bodhivana/storefront/internal/auth/mail"
	"github.com/bodhivana/storefront/internal/auth/store"
	"github.com/bodhivana/storefront/pkg/cryptox"
	"github.com/bodhivana/storefront/pkg/idx"
	"github.com/bodhivana/storefront/pkg/slogx"
)

const (
	// OTPTTL is how long an emailed verification code stays valid.
	OTPTTL = 10 * time.Minute

	// MaxOTPAttempts is the number of failed verifications before lockout.
	MaxOTPAttempts = 5

	// OTPLockDuration is how long verification stays locked after too
	// many failed attempts.
	OTPLockDuration = 15 * time.Minute

	// ResendCooldown is the minimum gap between OTP emails for one user.
	ResendCooldown = 60 * time.Second
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrInvalidOTP         = errors.New("invalid_otp")
	ErrOTPExpired         = errors.New("otp_expired")
	ErrOTPLocked          = errors.New("otp_locked")
	ErrResendCooldown     = errors.New("resend_cooldown")
	ErrTwoFactorDisabled  = errors.New("two_factor_disabled")
	ErrMailDelivery       = errors.New("mail_delivery_failed")
)

// FieldErrors maps an input field to a human-readable validation message.
// It satisfies error so Signup can return it through the usual path.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var emailPattern = regexp.MustCompile(`^([a-zA-Z0-9_.\-])+@(([a-zA-Z0-9\-])+\.)+([a-zA-Z0-9]{2,4})+$`)

// LoginResult is what a password login produces: either a token pair, or
// a pending OTP challenge when the account has two-factor enabled.
type LoginResult struct {
	Tokens      *domain.TokenPair
	OTPRequired bool
}

// AuthService implements signup, password login and the email OTP second
// factor.
type AuthService struct {
	Store  store.Store
	Mailer mail.Mailer
	Tokens *TokenService
}

// Signup registers a new customer account. Validation failures and taken
// emails come back as FieldErrors keyed by input field. New accounts start
// with the email second factor switched on.
func (s *AuthService) Signup(ctx context.Context, name, email, password, confirm string) error {
	l := slogx.FromContext(ctx)

	// 1. Validate
	if fieldErrs := validateSignup(name, email, password, confirm); len(fieldErrs) > 0 {
		return fieldErrs
	}

	// 2. Hash the password
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}

	// 3. Insert the user; a UNIQUE violation means the email is taken
	now := time.Now().UTC()
	u := domain.User{
		ID:               idx.New().String(),
		Name:             titleCase(strings.TrimSpace(name)),
		Email:            strings.TrimSpace(email),
		PasswordHash:     hash,
		Role:             domain.RoleCustomer,
		TwoFactorEnabled: true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return FieldErrors{"email": "Email already exists"}
		}
		return err
	}

	l.Info("user signed up", slog.String("user_id", u.ID))
	return nil
}

func validateSignup(name, email, password, confirm string) FieldErrors {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	// A missing field flags every field at once
	if name == "" || email == "" || password == "" || confirm == "" {
		return FieldErrors{
			"name":      "Filed must not be empty",
			"email":     "Filed must not be empty",
			"password":  "Filed must not be empty",
			"cPassword": "Filed must not be empty",
		}
	}

	if len(name) < 3 || len(name) > 25 {
		return FieldErrors{"name": "Name must be 3-25 charecter"}
	}
	if !emailPattern.MatchString(email) {
		return FieldErrors{"email": "Email is not valid"}
	}
	if len(password) < 8 || len(password) > 255 {
		return FieldErrors{"password": "Password must be 8 character"}
	}
	if confirm != password {
		return FieldErrors{"cPassword": "Passwords do not match"}
	}

	return nil
}

// titleCase upper-cases the first letter of every word in a name.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// Login checks the password and either issues tokens directly or, when
// the account has two-factor enabled, emails a one-time code. The same
// ErrInvalidCredentials comes back for an unknown email and a wrong
// password so callers can't probe which emails exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := slogx.FromContext(ctx)

	// 1. Lookup the user
	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Check the password
	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrMismatch) {
			l.Info("login password check failed", slog.String("user_id", u.ID))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 3. No second factor: issue tokens straight away
	if !u.TwoFactorEnabled {
		pair, err := s.Tokens.Issue(ctx, u)
		if err != nil {
			return nil, err
		}
		return &LoginResult{Tokens: pair}, nil
	}

	// 4. Second factor: issue a fresh OTP challenge
	if err := s.issueOTP(ctx, u); err != nil {
		return nil, err
	}

	l.Info("otp challenge issued", slog.String("user_id", u.ID))
	return &LoginResult{OTPRequired: true}, nil
}

// VerifyOTP checks the emailed code and completes the login. Failed
// attempts count toward a temporary lockout.
func (s *AuthService) VerifyOTP(ctx context.Context, email, otp string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	// 1. Lookup the user
	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// 2. There must be a live challenge
	if !u.OTPPending() || now.After(*u.OTPExpiresAt) {
		return nil, ErrOTPExpired
	}

	// 3. Reject while locked out, before touching the code at all
	if u.Locked(now) {
		return nil, ErrOTPLocked
	}

	// 4. Check the code. A failure bumps the attempt counter atomically,
	// setting the lock on the final miss, but the response stays
	// ErrInvalidOTP either way; only the next attempt sees the lock.
	if err := cryptox.VerifyOTP(otp, *u.OTPHash); err != nil {
		if !errors.Is(err, cryptox.ErrMismatch) {
			return nil, err
		}

		attempts, aerr := s.Store.Users().RegisterFailedOTPAttempt(
			ctx, u.ID, MaxOTPAttempts, now.Add(OTPLockDuration))
		if aerr != nil {
			return nil, aerr
		}

		l.Warn("otp verification failed",
			slog.String("user_id", u.ID),
			slog.Int("attempts", attempts),
		)
		return nil, ErrInvalidOTP
	}

	// 5. Success: consume the challenge and issue tokens
	if err := s.Store.Users().ClearOTPState(ctx, u.ID); err != nil {
		return nil, err
	}

	pair, err := s.Tokens.Issue(ctx, u)
	if err != nil {
		return nil, err
	}

	l.Info("otp verified", slog.String("user_id", u.ID))
	return pair, nil
}

// ResendOTP emails a fresh code, invalidating any previous one. Resends
// are throttled per user regardless of how many devices ask.
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	now := time.Now().UTC()

	// 1. Lookup the user
	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	// 2. Resending only makes sense with two-factor on
	if !u.TwoFactorEnabled {
		return ErrTwoFactorDisabled
	}

	// 3. Enforce the cooldown from the last issued code
	if u.LastOTPIssuedAt != nil && now.Sub(*u.LastOTPIssuedAt) < ResendCooldown {
		return ErrResendCooldown
	}

	return s.issueOTP(ctx, u)
}

// SetTwoFactor enables or disables the email second factor for a user.
func (s *AuthService) SetTwoFactor(ctx context.Context, userID string, enabled bool) error {
	if _, err := s.Store.Users().GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return s.Store.Users().SetTwoFactor(ctx, userID, enabled)
}

// issueOTP generates a code, stores its hash (resetting the attempt
// counter and lock) and emails it. A failed send leaves the challenge in
// place; the code never reached anyone and a resend replaces it.
func (s *AuthService) issueOTP(ctx context.Context, u domain.User) error {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	otp, err := cryptox.GenerateOTP()
	if err != nil {
		return err
	}

	otpHash, err := cryptox.HashOTP(otp)
	if err != nil {
		return err
	}

	if err := s.Store.Users().SetOTPChallenge(ctx, u.ID, otpHash, now.Add(OTPTTL), now); err != nil {
		return err
	}

	if err := s.Mailer.SendOTP(ctx, u.Email, u.Name, otp); err != nil {
		l.Error("otp email delivery failed",
			slog.String("user_id", u.ID),
			slog.Any("error", err),
		)
		return ErrMailDelivery
	}

	return nil
}
