// Package apperrors defines the error taxonomy shared by services, guards, and
// HTTP handlers. Handlers map these to response status codes; services return
// them unwrapped or wrapped with %w.
package apperrors

import (
	"errors"
	"strings"
)

// Sentinel errors for authorization and provisioning failures.
var (
	// ErrNoSession means no valid, unexpired session token was presented.
	ErrNoSession = errors.New("unauthorized: no active session")
	// ErrNoOrganization means a session token was presented but the identity
	// has no organization even after a repair attempt.
	ErrNoOrganization = errors.New("unauthorized: no organization context")
	// ErrInsufficientRole means the caller is authenticated with organization
	// context but the role rank is below the required role.
	ErrInsufficientRole = errors.New("forbidden: insufficient role")
	// ErrProvisioningConflict is returned by the organization store to the
	// losing writer of a concurrent first-provisioning race. Never surfaced
	// to callers; the provisioner resolves it by re-reading the winner.
	ErrProvisioningConflict = errors.New("provisioning conflict")
)

// FieldViolation describes one violated constraint on one request field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validation reports every violated field constraint of a malformed payload.
// Handlers render it as a 400 with a details array.
type Validation struct {
	Violations []FieldViolation
}

// Error implements error. Lists the violated fields.
func (v *Validation) Error() string {
	if len(v.Violations) == 0 {
		return "validation failed"
	}
	fields := make([]string, len(v.Violations))
	for i, f := range v.Violations {
		fields[i] = f.Field
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

// Add appends a violation and returns v for chaining.
func (v *Validation) Add(field, message string) *Validation {
	v.Violations = append(v.Violations, FieldViolation{Field: field, Message: message})
	return v
}

// Empty reports whether no violations were recorded.
func (v *Validation) Empty() bool { return len(v.Violations) == 0 }

// AsValidation returns the *Validation in err's chain, or nil.
func AsValidation(err error) *Validation {
	var v *Validation
	if errors.As(err, &v) {
		return v
	}
	return nil
}
