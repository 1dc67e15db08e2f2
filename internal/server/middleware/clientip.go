package middleware

import (
	"net"
	"net/http"
)

// ClientIP stores the request's remote host in the context so the audit
// logger can record it. Runs after chi's RealIP so proxy headers are honored.
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		next.ServeHTTP(w, r.WithContext(WithClientIP(r.Context(), host)))
	})
}
