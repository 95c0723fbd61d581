package middleware

import "context"

type contextKey string

const (
	ctxToken      contextKey = "session_token"
	ctxUserID     contextKey = "user_id"
	ctxPharmacyID contextKey = "pharmacy_id"
	ctxRole       contextKey = "role"
)

func stringFromContext(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// TokenFromContext returns the backend bearer token of the active session.
func TokenFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxToken)
}

func UserIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxUserID)
}

func PharmacyIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxPharmacyID)
}

func RoleFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxRole)
}

// WithToken injects the session token into the context. Controller tests use it
// in place of RequireSession.
func WithToken(ctx context.Context, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxToken, token)
}
