package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bodhivana/storefront/internal/auth/service"
	"github.com/bodhivana/storefront/pkg/httpx"
	"github.com/bodhivana/storefront/pkg/slogx"
)

// VerifyOTPHandler serves POST /api/verify-otp, completing a two-factor
// login with the emailed code.
type VerifyOTPHandler struct {
	AuthService *service.AuthService
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (h *VerifyOTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.OTP == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Email and OTP are required")
		return
	}

	pair, err := h.AuthService.VerifyOTP(ctx, req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrOTPExpired):
			httpx.WriteError(w, http.StatusUnauthorized, "OTP has expired")
		case errors.Is(err, service.ErrOTPLocked):
			httpx.WriteError(w, http.StatusForbidden, "Account temporarily locked. Please try again later.")
		case errors.Is(err, service.ErrInvalidOTP):
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid OTP")
		default:
			log.Error("otp verification failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, pair)
}

// ResendOTPHandler serves POST /api/resend-otp.
type ResendOTPHandler struct {
	AuthService *service.AuthService
}

type resendOTPRequest struct {
	Email string `json:"email"`
}

func (h *ResendOTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req resendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Email is required")
		return
	}

	if err := h.AuthService.ResendOTP(ctx, req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrTwoFactorDisabled):
			httpx.WriteError(w, http.StatusBadRequest, "Two-factor authentication is not enabled")
		case errors.Is(err, service.ErrResendCooldown):
			httpx.WriteError(w, http.StatusTooManyRequests, "Please wait before requesting another OTP")
		case errors.Is(err, service.ErrMailDelivery):
			httpx.WriteError(w, http.StatusBadGateway, "Failed to send verification code. Please try again.")
		default:
			log.Error("otp resend failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "OTP sent successfully"})
}
