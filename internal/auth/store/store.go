package store

import (
	"context"
	"errors"
	"time"

	"github.com/bodhivana/storefront/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and to actively stop people from accidentally doing transactions
// within transactions.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., refresh rotation).
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// This is the recommended way to handle transactions as it automatically
	// handles commit/rollback logic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login. Email matching is case-insensitive.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is already taken.
	CreateUser(ctx context.Context, u domain.User) error

	// ListUsers returns all users ordered by creation date (newest first).
	ListUsers(ctx context.Context) ([]domain.User, error)

	// SetTwoFactor flips the two_factor_enabled flag. Disabling also wipes
	// any pending OTP challenge so stale codes cannot linger.
	SetTwoFactor(ctx context.Context, userID string, enabled bool) error

	// SetOTPChallenge stores a fresh OTP hash with its expiry, resets the
	// attempt counter and records when the code was issued. Any previously
	// issued code is overwritten.
	SetOTPChallenge(ctx context.Context, userID string, otpHash string, expiresAt, issuedAt time.Time) error

	// RegisterFailedOTPAttempt atomically increments otp_attempts and, when
	// the counter reaches lockThreshold, sets otp_locked_until in the same
	// statement. Returns the new attempt count so callers never race each
	// other on the read-modify-write.
	RegisterFailedOTPAttempt(ctx context.Context, userID string, lockThreshold int, lockUntil time.Time) (attempts int, err error)

	// ClearOTPState wipes the OTP hash, expiry, attempt counter and lockout
	// after a successful verification.
	ClearOTPState(ctx context.Context, userID string) error

	// ClearExpiredOTPChallenges bulk-clears OTP state for every user whose
	// challenge expired before the cutoff. Returns how many rows changed.
	ClearExpiredOTPChallenges(ctx context.Context, cutoff time.Time) (int64, error)
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token by its fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked=1, sets updated_at.
	RevokeRefreshToken(ctx context.Context, hash string) error

	// RevokeAllUserRefreshTokens bulk revocation for a user (e.g., sign-out everywhere).
	RevokeAllUserRefreshTokens(ctx context.Context, userID string) error

	// DeleteExpiredRefreshTokens removes tokens past their expiry and
	// revoked tokens. Returns how many rows were deleted.
	DeleteExpiredRefreshTokens(ctx context.Context, cutoff time.Time) (int64, error)
}
