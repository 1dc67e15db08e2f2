package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	membershipdomain "socialcat/backend/internal/membership/domain"
	"socialcat/backend/internal/organization/domain"
	"socialcat/backend/internal/platform/apperrors"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an organization repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetOrganizationByID returns the organization for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetOrganizationByID(ctx context.Context, id string) (*domain.Organization, error) {
	const q = `SELECT id, name, COALESCE(plan, ''), created_at FROM organizations WHERE id = $1`
	var o domain.Organization
	var plan string
	err := r.db.QueryRowContext(ctx, q, id).Scan(&o.ID, &o.Name, &plan, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	o.Plan = domain.Plan(plan)
	return &o, nil
}

// ListOrganizationsForUser returns the user's organizations with roles,
// ordered by organization creation time, earliest first.
func (r *PostgresRepository) ListOrganizationsForUser(ctx context.Context, userID string) ([]*domain.UserOrganization, error) {
	const q = `SELECT o.id, o.name, COALESCE(o.plan, ''), o.created_at, m.role
		FROM organizations o
		JOIN memberships m ON m.org_id = o.id
		WHERE m.user_id = $1
		ORDER BY o.created_at ASC, o.id ASC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.UserOrganization
	for rows.Next() {
		var uo domain.UserOrganization
		var plan, role string
		if err := rows.Scan(&uo.ID, &uo.Name, &plan, &uo.CreatedAt, &role); err != nil {
			return nil, err
		}
		uo.Plan = domain.Plan(plan)
		uo.Role = membershipdomain.Role(role)
		out = append(out, &uo)
	}
	return out, rows.Err()
}

// CreateOrganizationWithOwner creates the organization and its owner
// membership in one transaction.
func (r *PostgresRepository) CreateOrganizationWithOwner(ctx context.Context, o *domain.Organization, ownerID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertOrgWithOwner(ctx, tx, o, ownerID); err != nil {
		return err
	}
	return tx.Commit()
}

// ProvisionDefault serializes first-time provisioning per identity with a
// transaction-scoped advisory lock keyed on ownerID, re-checks for an existing
// membership inside the lock, and creates the organization plus owner
// membership only when none exists. The losing writer of a race observes the
// winner's row on the re-check and gets apperrors.ErrProvisioningConflict;
// the provisioner resolves it by re-reading the winner.
func (r *PostgresRepository) ProvisionDefault(ctx context.Context, o *domain.Organization, ownerID string) (*domain.UserOrganization, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, ownerID); err != nil {
		return nil, err
	}

	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM memberships WHERE user_id = $1 LIMIT 1`, ownerID).Scan(&one)
	switch {
	case err == nil:
		return nil, apperrors.ErrProvisioningConflict
	case errors.Is(err, sql.ErrNoRows):
		// fall through to create
	default:
		return nil, err
	}

	if err := insertOrgWithOwner(ctx, tx, o, ownerID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &domain.UserOrganization{Organization: *o, Role: membershipdomain.RoleOwner}, nil
}

func insertOrgWithOwner(ctx context.Context, tx *sql.Tx, o *domain.Organization, ownerID string) error {
	const insertOrg = `INSERT INTO organizations (id, name, plan, created_at) VALUES ($1, $2, $3, $4)`
	plan := sql.NullString{String: string(o.Plan), Valid: o.Plan != ""}
	if _, err := tx.ExecContext(ctx, insertOrg, o.ID, o.Name, plan, o.CreatedAt); err != nil {
		return err
	}
	const insertMembership = `INSERT INTO memberships (id, user_id, org_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := tx.ExecContext(ctx, insertMembership,
		uuid.New().String(), ownerID, o.ID, string(membershipdomain.RoleOwner), o.CreatedAt)
	return err
}
