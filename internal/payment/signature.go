// Package payment verifies signed webhook callbacks from the payment
// provider.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// ComputeSignature returns the hex-encoded HMAC-SHA256 of the raw
// request body under the shared webhook secret.
func ComputeSignature(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a provider-supplied signature against the raw
// body in constant time.
func VerifySignature(secret, body []byte, signature string) bool {
	expected := ComputeSignature(secret, body)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
