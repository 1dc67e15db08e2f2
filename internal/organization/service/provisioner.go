// Package service implements workspace provisioning: every identity that has
// completed sign-in is guaranteed a home organization with an owner membership.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	auditdomain "socialcat/backend/internal/audit/domain"
	membershipdomain "socialcat/backend/internal/membership/domain"
	"socialcat/backend/internal/organization/domain"
	"socialcat/backend/internal/platform/apperrors"
)

// MembershipLister is the minimal membership repository needed by the provisioner.
type MembershipLister interface {
	ListMembershipsByUser(ctx context.Context, userID string) ([]*membershipdomain.Membership, error)
}

// OrgRepo is the minimal organization repository needed by the provisioner.
type OrgRepo interface {
	GetOrganizationByID(ctx context.Context, id string) (*domain.Organization, error)
	ProvisionDefault(ctx context.Context, o *domain.Organization, ownerID string) (*domain.UserOrganization, error)
}

// Auditor records provisioning events. Satisfied by the audit logger.
type Auditor interface {
	LogEvent(ctx context.Context, orgID, userID, action, resource, metadata string)
}

// Provisioner guarantees a default organization for an identity. Idempotent;
// safe under concurrent first-sign-in races (the store serializes per identity).
type Provisioner struct {
	memberships MembershipLister
	orgs        OrgRepo
	audit       Auditor
}

// NewProvisioner returns a Provisioner with the given dependencies. audit may
// be nil.
func NewProvisioner(memberships MembershipLister, orgs OrgRepo, audit Auditor) *Provisioner {
	return &Provisioner{memberships: memberships, orgs: orgs, audit: audit}
}

// EnsureDefaultOrganization returns the identity's default organization,
// creating it (with an owner membership, atomically) on first call. When the
// identity already has memberships, the one with the earliest CreatedAt wins
// and nothing is created. displayNameHint names the new workspace
// ("<hint>'s Workspace", falling back to "My Workspace").
func (p *Provisioner) EnsureDefaultOrganization(ctx context.Context, identityID, displayNameHint string) (*domain.UserOrganization, error) {
	existing, err := p.defaultOrganization(ctx, identityID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	org := &domain.Organization{
		ID:        uuid.New().String(),
		Name:      WorkspaceName(displayNameHint),
		CreatedAt: time.Now().UTC(),
	}
	uo, err := p.orgs.ProvisionDefault(ctx, org, identityID)
	if errors.Is(err, apperrors.ErrProvisioningConflict) {
		// Lost a concurrent first-provisioning race; re-read the winner.
		winner, err := p.defaultOrganization(ctx, identityID)
		if err != nil {
			return nil, err
		}
		if winner == nil {
			return nil, fmt.Errorf("provisioning conflict for identity %s with no membership", identityID)
		}
		return winner, nil
	}
	if err != nil {
		return nil, fmt.Errorf("provision default organization: %w", err)
	}
	if p.audit != nil {
		p.audit.LogEvent(ctx, uo.ID, identityID, auditdomain.ActionWorkspaceProvisioned, "organization", "")
	}
	return uo, nil
}

// defaultOrganization resolves the identity's default organization from its
// earliest membership by CreatedAt (the repository orders, id as tie-break).
// Returns nil when the identity has no memberships.
func (p *Provisioner) defaultOrganization(ctx context.Context, identityID string) (*domain.UserOrganization, error) {
	memberships, err := p.memberships.ListMembershipsByUser(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	if len(memberships) == 0 {
		return nil, nil
	}
	m := memberships[0]
	org, err := p.orgs.GetOrganizationByID(ctx, m.OrgID)
	if err != nil {
		return nil, fmt.Errorf("load organization %s: %w", m.OrgID, err)
	}
	if org == nil {
		return nil, fmt.Errorf("membership %s references missing organization %s", m.ID, m.OrgID)
	}
	return &domain.UserOrganization{Organization: *org, Role: m.Role}, nil
}

// WorkspaceName derives the default workspace name from a display name hint.
func WorkspaceName(displayNameHint string) string {
	if displayNameHint == "" {
		return "My Workspace"
	}
	return displayNameHint + "'s Workspace"
}
