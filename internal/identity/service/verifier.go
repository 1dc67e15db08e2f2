// Package service implements credential verification against the configured
// principal. The Verifier interface is the seam for replacing the static
// single-principal setup with a multi-identity store later without touching
// the authorization core.
package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"socialcat/backend/internal/identity/domain"
	"socialcat/backend/internal/security"
)

// ErrInvalidCredentials is returned for any non-exact credential match,
// including absent fields. Callers map it to a 401-class failure.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Verifier authenticates a login attempt. Implementations must have no side
// effects and must not distinguish unknown email from wrong password.
type Verifier interface {
	Authenticate(ctx context.Context, email, password string) (*domain.Identity, error)
}

// StaticVerifier verifies against a single principal sourced from process
// configuration. The password is either a plaintext value compared in constant
// time or a bcrypt hash (preferred when both are configured).
type StaticVerifier struct {
	principal    domain.Identity
	password     string
	passwordHash string
	hasher       *security.Hasher
}

// NewStaticVerifier returns a Verifier for the given principal. passwordHash,
// when non-empty, takes precedence over password.
func NewStaticVerifier(principal domain.Identity, password, passwordHash string, hasher *security.Hasher) *StaticVerifier {
	return &StaticVerifier{
		principal:    principal,
		password:     password,
		passwordHash: passwordHash,
		hasher:       hasher,
	}
}

// Authenticate compares email and password against the configured principal.
// Returns ErrInvalidCredentials for any mismatch or empty input.
func (v *StaticVerifier) Authenticate(ctx context.Context, email, password string) (*domain.Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(email), []byte(strings.ToLower(v.principal.Email))) != 1 {
		return nil, ErrInvalidCredentials
	}
	if v.passwordHash != "" {
		if err := v.hasher.Compare(v.passwordHash, []byte(password)); err != nil {
			return nil, ErrInvalidCredentials
		}
	} else {
		if v.password == "" {
			return nil, ErrInvalidCredentials
		}
		if subtle.ConstantTimeCompare([]byte(password), []byte(v.password)) != 1 {
			return nil, ErrInvalidCredentials
		}
	}
	p := v.principal
	return &p, nil
}
