package http

import (
	"errors"
	"net/http"

	"github.com/bodhivana/storefront/internal/auth/service"
	"github.com/bodhivana/storefront/pkg/httpx"
	"github.com/bodhivana/storefront/pkg/slogx"
)

// TwoFactorHandler flips the email second factor on or off for the
// authenticated user. It serves both POST /api/enable-2fa and
// POST /api/disable-2fa.
type TwoFactorHandler struct {
	AuthService *service.AuthService
}

func (h *TwoFactorHandler) HandleEnable(w http.ResponseWriter, r *http.Request) {
	h.setTwoFactor(w, r, true, "Two-factor authentication enabled successfully")
}

func (h *TwoFactorHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	h.setTwoFactor(w, r, false, "Two-factor authentication disabled successfully")
}

func (h *TwoFactorHandler) setTwoFactor(w http.ResponseWriter, r *http.Request, enabled bool, message string) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromCtx(ctx)
	if userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.AuthService.SetTwoFactor(ctx, userID, enabled); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Error("two-factor toggle failed", "user_id", userID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": message})
}
