package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialcat/backend/internal/audit"
	auditrepo "socialcat/backend/internal/audit/repository"
	"socialcat/backend/internal/config"
	"socialcat/backend/internal/db"
	healthhandler "socialcat/backend/internal/health/handler"
	identitydomain "socialcat/backend/internal/identity/domain"
	identityhandler "socialcat/backend/internal/identity/handler"
	identityservice "socialcat/backend/internal/identity/service"
	membershiprepo "socialcat/backend/internal/membership/repository"
	orghandler "socialcat/backend/internal/organization/handler"
	orgrepo "socialcat/backend/internal/organization/repository"
	orgservice "socialcat/backend/internal/organization/service"
	"socialcat/backend/internal/security"
	"socialcat/backend/internal/server"
	"socialcat/backend/internal/server/middleware"
	sessionhandler "socialcat/backend/internal/session/handler"
	sessionservice "socialcat/backend/internal/session/service"
	"socialcat/backend/internal/telemetry/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	providers, err := otel.NewProviders(context.Background(), cfg.OTLPEndpoint, "socialcat-backend", false)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(ctx)
	}()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("JWT_PRIVATE_KEY: %v", err)
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("JWT_PUBLIC_KEY: %v", err)
	}
	tokens := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience)

	hasher := security.NewHasher(cfg.BcryptCost)
	verifier := identityservice.NewStaticVerifier(identitydomain.Identity{
		ID:          cfg.AdminUserID,
		Email:       cfg.AdminEmail,
		DisplayName: cfg.AdminName,
	}, cfg.AdminPassword, cfg.AdminPasswordHash, hasher)

	orgRepo := orgrepo.NewPostgresRepository(conn)
	membershipRepo := membershiprepo.NewPostgresRepository(conn)
	auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(conn), middleware.ClientIPFromContext)

	provisioner := orgservice.NewProvisioner(membershipRepo, orgRepo, auditLogger)
	issuer := sessionservice.NewIssuer(tokens, provisioner, membershipRepo, cfg.SessionDuration())

	router := server.NewRouter(server.Deps{
		Health:       healthhandler.NewHandler(conn),
		Identity:     identityhandler.NewHandler(verifier, issuer, auditLogger),
		Session:      sessionhandler.NewHandler(issuer),
		Organization: orghandler.NewHandler(orgRepo, auditLogger),
		Resolver:     issuer,
		CORSOrigins:  cfg.CORSOriginsList(),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
