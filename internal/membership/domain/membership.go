package domain

import (
	"errors"
	"fmt"
	"time"
)

// Membership links an identity to an organization with a role.
// (user_id, org_id) is unique: an identity holds at most one role per org.
type Membership struct {
	ID        string
	UserID    string
	OrgID     string
	Role      Role
	CreatedAt time.Time
}

// Validate validates the membership for persistence. Returns an error describing the first validation failure.
func (m *Membership) Validate() error {
	if m.UserID == "" {
		return errors.New("user_id is required")
	}
	if m.OrgID == "" {
		return errors.New("org_id is required")
	}
	if !m.Role.Known() {
		return fmt.Errorf("unknown role %q", m.Role)
	}
	return nil
}

// Role is the permission tier an identity holds in an organization.
// Total order: owner > admin > member > viewer.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

// roleRank orders the four roles. Unknown roles are rejected by ParseRole at
// the boundary and never reach comparisons.
var roleRank = map[Role]int{
	RoleViewer: 0,
	RoleMember: 1,
	RoleAdmin:  2,
	RoleOwner:  3,
}

// ParseRole converts s into a Role, rejecting anything outside the four known
// tiers. All external role input must pass through here.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Known() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Known reports whether r is one of the four defined roles.
func (r Role) Known() bool {
	_, ok := roleRank[r]
	return ok
}

// Allows reports whether r satisfies the required role: rank(r) >= rank(required).
// Pure comparison with no I/O; inputs are assumed parsed via ParseRole.
func (r Role) Allows(required Role) bool {
	return roleRank[r] >= roleRank[required]
}
