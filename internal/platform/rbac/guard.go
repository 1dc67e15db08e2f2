// Package rbac is the session guard used by all protected operations. It
// composes session presence, organization context, and role rank checks over
// the session placed in the request context by the auth middleware.
package rbac

import (
	"context"

	membershipdomain "socialcat/backend/internal/membership/domain"
	"socialcat/backend/internal/platform/apperrors"
	"socialcat/backend/internal/server/middleware"
	sessiondomain "socialcat/backend/internal/session/domain"
)

// RequireSession returns the caller's session, failing with ErrNoSession when
// no valid, unexpired token was presented.
func RequireSession(ctx context.Context) (*sessiondomain.Session, error) {
	s, ok := middleware.GetSession(ctx)
	if !ok || s.UserID == "" {
		return nil, apperrors.ErrNoSession
	}
	return s, nil
}

// RequireOrganization returns the caller's session with organization context.
// The auth middleware has already attempted one repair (re-enrichment) on
// read; a session still lacking an organization here means the identity has
// no workspace and provisioning failed too, which fails with ErrNoOrganization.
func RequireOrganization(ctx context.Context) (*sessiondomain.Session, error) {
	s, err := RequireSession(ctx)
	if err != nil {
		return nil, err
	}
	if s.OrgID == "" {
		return nil, apperrors.ErrNoOrganization
	}
	return s, nil
}

// RequireRole composes the session and organization checks, then verifies the
// caller's role satisfies required in the fixed permission order. Fails with
// ErrInsufficientRole when the rank is too low.
func RequireRole(ctx context.Context, required membershipdomain.Role) (*sessiondomain.Session, error) {
	s, err := RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	if !s.Role.Allows(required) {
		return nil, apperrors.ErrInsufficientRole
	}
	return s, nil
}
