package domain

import (
	"time"

	membershipdomain "socialcat/backend/internal/membership/domain"
)

// Token is the decoded session token payload. Mutable only through
// re-issuance: enrichment produces a new token, never edits one in place.
type Token struct {
	SubjectID string
	Email     string
	Name      string
	OrgID     string                // empty until enriched
	Role      membershipdomain.Role // empty until enriched
	IssuedAt  time.Time
	ExpiresAt time.Time // IssuedAt + 30 days, fixed (not sliding)
}

// Enriched reports whether organization context has been populated.
func (t *Token) Enriched() bool {
	return t.OrgID != ""
}

// Session is the payload exposed to protected handlers once the guard has
// succeeded: the authenticated user with organization context.
type Session struct {
	UserID string
	Email  string
	Name   string
	OrgID  string
	Role   membershipdomain.Role
}

// SessionFromToken builds the handler-facing session payload from a token.
func SessionFromToken(t *Token) *Session {
	return &Session{
		UserID: t.SubjectID,
		Email:  t.Email,
		Name:   t.Name,
		OrgID:  t.OrgID,
		Role:   t.Role,
	}
}
