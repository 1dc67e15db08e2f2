package domain

import (
	"fmt"
	"time"
	"unicode/utf8"

	membershipdomain "socialcat/backend/internal/membership/domain"
	"socialcat/backend/internal/platform/apperrors"
)

// Organization is a tenant/workspace boundary owning resources.
type Organization struct {
	ID        string
	Name      string // 1–255 chars
	Plan      Plan   // empty when unset
	CreatedAt time.Time
}

// Plan is the billing plan carried on an organization. Opaque pass-through
// data pending a billing subsystem; nothing in this core enforces it.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// ParsePlan converts s into a Plan. Empty means unset. Anything else outside
// the closed enum is rejected.
func ParsePlan(s string) (Plan, error) {
	switch p := Plan(s); p {
	case "", PlanFree, PlanPro, PlanEnterprise:
		return p, nil
	default:
		return "", fmt.Errorf("unknown plan %q", s)
	}
}

// MaxNameLength is the upper bound on organization names, in characters
// (the database enforces the same bound with char_length).
const MaxNameLength = 255

// Validate checks every field constraint and reports all violations at once,
// so a malformed create payload can enumerate each failing field.
// Returns nil when the organization is valid.
func (o *Organization) Validate() error {
	v := &apperrors.Validation{}
	if nameLen := utf8.RuneCountInString(o.Name); nameLen == 0 {
		v.Add("name", "name is required")
	} else if nameLen > MaxNameLength {
		v.Add("name", fmt.Sprintf("name must be at most %d characters", MaxNameLength))
	}
	if _, err := ParsePlan(string(o.Plan)); err != nil {
		v.Add("plan", "plan must be one of free, pro, enterprise")
	}
	if v.Empty() {
		return nil
	}
	return v
}

// UserOrganization is an organization together with the role the identity
// holds in it, as returned by membership-joined listings.
type UserOrganization struct {
	Organization
	Role membershipdomain.Role
}
