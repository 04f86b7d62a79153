package httpx

import "net/http"

// RequireRole the caller must hold exactly the given role. Runs after
// AuthnMiddleware so the role is already on the context.
func RequireRole(role int) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			have, ok := roleFromCtx(r.Context())
			if !ok || have != role {
				WriteError(w, http.StatusForbidden, "Access denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
