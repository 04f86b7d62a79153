package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyRole   ctxKey = "role"
	CtxKeyClaims ctxKey = "claims" // if you want full jwtx.Claims
)

// UserIDFromCtx returns the authenticated subject, or "" when the
// request went through no authn middleware.
func UserIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}

func roleFromCtx(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(CtxKeyRole).(int)
	return v, ok
}
