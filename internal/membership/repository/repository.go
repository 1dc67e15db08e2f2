package repository

import (
	"context"

	"socialcat/backend/internal/membership/domain"
)

// Repository defines persistence for memberships.
type Repository interface {
	GetMembershipByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error)
	// ListMembershipsByUser returns the user's memberships ordered by
	// creation time (id as tie-break), earliest first.
	ListMembershipsByUser(ctx context.Context, userID string) ([]*domain.Membership, error)
	CreateMembership(ctx context.Context, m *domain.Membership) error
}
