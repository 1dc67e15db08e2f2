package repository

import (
	"context"

	"socialcat/backend/internal/organization/domain"
)

// Repository defines persistence for organizations.
type Repository interface {
	GetOrganizationByID(ctx context.Context, id string) (*domain.Organization, error)
	// ListOrganizationsForUser returns every organization the user belongs to
	// together with the user's role, ordered by organization creation time
	// (id as tie-break), earliest first.
	ListOrganizationsForUser(ctx context.Context, userID string) ([]*domain.UserOrganization, error)
	// CreateOrganizationWithOwner atomically creates the organization and an
	// owner membership for ownerID. A request aborted mid-flight must never
	// leave an organization without its owner membership.
	CreateOrganizationWithOwner(ctx context.Context, o *domain.Organization, ownerID string) error
	// ProvisionDefault atomically creates o plus an owner membership for
	// ownerID, unless the owner already has an organization: concurrent
	// first-time provisioning for one identity must yield exactly one
	// organization. Returns the created organization with role owner, or
	// apperrors.ErrProvisioningConflict when a concurrent writer won and the
	// caller should re-read the winner.
	ProvisionDefault(ctx context.Context, o *domain.Organization, ownerID string) (*domain.UserOrganization, error)
}
