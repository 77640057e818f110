package graphql

import "context"

// Context keys for resolver injection (avoids circular imports).
type contextKey string

const CtxKeyUserID contextKey = "userID"

// UserIDFromContext returns the tenant of the current request.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}

// WithUserID attaches the tenant to ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxKeyUserID, userID)
}
