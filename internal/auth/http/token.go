package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bodhivana/storefront/internal/auth/service"
	"github.com/bodhivana/storefront/pkg/httpx"
	"github.com/bodhivana/storefront/pkg/slogx"
)

// RefreshHandler serves POST /api/refresh-token, trading a live refresh
// token for a fresh rotated pair.
type RefreshHandler struct {
	TokenService *service.TokenService
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pair, err := h.TokenService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
			return
		}
		log.Error("token refresh failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, pair)
}

// SignoutHandler serves POST /api/signout, revoking the presented
// refresh token. Revoking an already-dead token is still a success.
type SignoutHandler struct {
	TokenService *service.TokenService
}

func (h *SignoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.TokenService.Revoke(ctx, req.RefreshToken); err != nil {
		log.Error("signout failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Signed out successfully"})
}
