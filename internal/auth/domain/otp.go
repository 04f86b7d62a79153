package domain

// OTPChallenge is returned when a password login needs a second factor.
// No tokens are issued until the emailed code is verified.
type OTPChallenge struct {
	RequiresOTP bool   `json:"requiresOTP"` // always true
	Message     string `json:"message"`
}
