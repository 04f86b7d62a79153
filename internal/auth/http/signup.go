package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bodhivana/storefront/internal/auth/service"
	"github.com/bodhivana/storefront/pkg/httpx"
	"github.com/bodhivana/storefront/pkg/slogx"
)

// SignupHandler serves POST /api/signup.
type SignupHandler struct {
	AuthService *service.AuthService
}

type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"cPassword"`
}

func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.AuthService.Signup(ctx, req.Name, req.Email, req.Password, req.ConfirmPassword); err != nil {
		var fieldErrs service.FieldErrors
		if errors.As(err, &fieldErrs) {
			httpx.WriteFieldErrors(w, http.StatusBadRequest, fieldErrs)
			return
		}
		log.Error("signup failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]string{
		"message": "Account create successfully. Please login",
	})
}
