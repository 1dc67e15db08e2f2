package middleware

import (
	"context"

	sessiondomain "socialcat/backend/internal/session/domain"
)

type contextKey struct{ name string }

var sessionKey = contextKey{"session"}

// WithSession returns a context carrying the resolved session. Handlers and
// the rbac guard read it via GetSession; there is no ambient global lookup.
func WithSession(ctx context.Context, s *sessiondomain.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// GetSession returns the session from context and true if set; otherwise nil, false.
func GetSession(ctx context.Context) (*sessiondomain.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*sessiondomain.Session)
	return s, ok && s != nil
}

var clientIPKey = contextKey{"client-ip"}

// WithClientIP returns a context carrying the request's client IP.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIPFromContext returns the client IP set by the ClientIP middleware,
// or "unknown" outside a request.
func ClientIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey).(string); ok && ip != "" {
		return ip
	}
	return "unknown"
}
