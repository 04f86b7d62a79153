package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// OTP range: six decimal digits, no leading zero by construction.
const (
	otpMin  = 100000
	otpSpan = 900000
)

// GenerateOTP produces a uniformly random 6-digit code in [100000, 999999],
// returned as text. The plaintext code is emailed once and never persisted;
// callers store only HashOTP's output.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpSpan))
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	return fmt.Sprintf("%d", otpMin+n.Int64()), nil
}

// HashOTP hashes a one-time password with the same primitive and cost as
// passwords, so a leaked credential store gives up neither.
func HashOTP(otp string) (string, error) {
	return HashPassword(otp)
}

// VerifyOTP compares a submitted code against its stored hash.
// Returns ErrMismatch on a wrong code.
func VerifyOTP(otp, encodedHash string) error {
	return VerifyPassword(otp, encodedHash)
}
