// Package server wires the HTTP router: middleware chain, the public sign-in
// and health endpoints, and the authenticated API group.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	healthhandler "socialcat/backend/internal/health/handler"
	identityhandler "socialcat/backend/internal/identity/handler"
	orghandler "socialcat/backend/internal/organization/handler"
	"socialcat/backend/internal/server/middleware"
	sessionhandler "socialcat/backend/internal/session/handler"
)

// Deps carries the handlers and middleware dependencies for the router.
type Deps struct {
	Health       *healthhandler.Handler
	Identity     *identityhandler.Handler
	Session      *sessionhandler.Handler
	Organization *orghandler.Handler
	Resolver     middleware.SessionResolver
	CORSOrigins  []string
}

// NewRouter builds the chi router. All /api routes except sign-in run behind
// the authenticator; it attaches the session when a valid token is presented
// and the per-handler guards decide what the route requires.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.ClientIP)
	r.Use(middleware.Telemetry())
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			ExposedHeaders:   []string{middleware.HeaderSessionToken},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", d.Health.Check)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signin", d.Identity.SignIn)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticator(d.Resolver))
			r.Get("/auth/session", d.Session.Get)
			r.Post("/auth/session/refresh", d.Session.Refresh)
			r.Get("/organizations", d.Organization.List)
			r.Post("/organizations", d.Organization.Create)
		})
	})

	return r
}
