package domain

import "time"

// Role values stored on a user record. Kept as plain ints so they
// round-trip through JWT claims and the DB without mapping tables.
const (
	RoleCustomer = 0
	RoleAdmin    = 1
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // bcrypt encoded
	Role         int

	// Two-factor state. OTPHash holds the bcrypt of the emailed code
	// while a challenge is pending, nil otherwise.
	TwoFactorEnabled bool
	OTPHash          *string
	OTPExpiresAt     *time.Time
	OTPAttempts      int
	OTPLockedUntil   *time.Time
	LastOTPIssuedAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OTPPending reports whether the user has an unconsumed OTP challenge.
func (u *User) OTPPending() bool {
	return u.OTPHash != nil && u.OTPExpiresAt != nil
}

// Locked reports whether OTP verification is locked out at the given time.
func (u *User) Locked(now time.Time) bool {
	return u.OTPLockedUntil != nil && now.Before(*u.OTPLockedUntil)
}
