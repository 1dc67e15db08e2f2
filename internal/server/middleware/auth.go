package middleware

import (
	"context"
	"net/http"
	"strings"

	sessiondomain "socialcat/backend/internal/session/domain"
)

// HeaderSessionToken carries a re-issued session token back to the client.
// Sent whenever a read repaired or refreshed the token; clients replace their
// stored token with this value.
const HeaderSessionToken = "X-Session-Token"

// SessionResolver validates a serialized token and applies the read-time
// repair rule. Implemented by the session issuer.
type SessionResolver interface {
	Resolve(ctx context.Context, tokenString string, refresh bool) (*sessiondomain.Session, string, error)
}

// ExtractBearer returns the token from an "Authorization: Bearer <token>"
// header, or false when the header is absent or not Bearer-shaped.
func ExtractBearer(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader || token == "" {
		return "", false
	}
	return token, true
}

// Authenticator resolves the bearer token and attaches the session to the
// request context. It never rejects: requests without a resolvable session
// proceed without one, and the rbac guards surface the taxonomy error. When
// resolution re-issued the token, the new form is returned in
// HeaderSessionToken.
func Authenticator(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := ExtractBearer(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			session, reissued, err := resolver.Resolve(r.Context(), tokenString, false)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if reissued != "" {
				w.Header().Set(HeaderSessionToken, reissued)
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}
