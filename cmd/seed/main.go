// seed provisions the configured admin's default workspace for local
// development. Idempotent: skips when the admin already has a membership.
package main

import (
	"context"
	"fmt"
	"log"

	"socialcat/backend/internal/config"
	"socialcat/backend/internal/db"
	membershiprepo "socialcat/backend/internal/membership/repository"
	orgrepo "socialcat/backend/internal/organization/repository"
	orgservice "socialcat/backend/internal/organization/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	memberships := membershiprepo.NewPostgresRepository(conn)
	orgs := orgrepo.NewPostgresRepository(conn)

	existing, err := memberships.ListMembershipsByUser(ctx, cfg.AdminUserID)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if len(existing) > 0 {
		log.Println("Seed already applied (admin has a workspace). Skipping.")
		return
	}

	provisioner := orgservice.NewProvisioner(memberships, orgs, nil)
	uo, err := provisioner.EnsureDefaultOrganization(ctx, cfg.AdminUserID, cfg.AdminName)
	if err != nil {
		log.Fatalf("provision workspace: %v", err)
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Workspace: %s (%s), role %s\n", uo.Name, uo.ID, uo.Role)
	fmt.Printf("Admin login: %s\n", cfg.AdminEmail)
}
