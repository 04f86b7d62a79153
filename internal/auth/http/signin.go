package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bodhivana/storefront/internal/auth/domain"
	"github.com/bodhivana/storefront/internal/auth/service"
	"github.com/bodhivana/storefront/pkg/httpx"
	"github.com/bodhivana/storefront/pkg/slogx"
)

// SigninHandler serves POST /api/signin. A password-only account gets
// tokens straight back; a two-factor account gets an OTP challenge and
// no tokens until POST /api/verify-otp succeeds.
type SigninHandler struct {
	AuthService *service.AuthService
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *SigninHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Fields must not be empty")
		return
	}

	res, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, service.ErrMailDelivery):
			httpx.WriteError(w, http.StatusBadGateway, "Failed to send verification code. Please try again.")
		default:
			log.Error("signin failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	if res.OTPRequired {
		httpx.WriteJSON(w, http.StatusOK, domain.OTPChallenge{
			RequiresOTP: true,
			Message:     "Please check your email for OTP verification",
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, res.Tokens)
}
