// Package service implements the session token lifecycle: mint at sign-in,
// enrich with organization context, refresh on an explicit update signal or
// on any read that finds the context missing.
package service

import (
	"context"
	"fmt"
	"log"
	"time"

	identitydomain "socialcat/backend/internal/identity/domain"
	membershipdomain "socialcat/backend/internal/membership/domain"
	orgdomain "socialcat/backend/internal/organization/domain"
	"socialcat/backend/internal/platform/apperrors"
	"socialcat/backend/internal/security"
	"socialcat/backend/internal/session/domain"
)

// Workspaces provisions the default organization for an identity. Implemented
// by the organization provisioner.
type Workspaces interface {
	EnsureDefaultOrganization(ctx context.Context, identityID, displayNameHint string) (*orgdomain.UserOrganization, error)
}

// Memberships reports whether the subject still holds the membership an
// enriched token claims. Implemented by the membership repository; returns
// nil (no error) when the membership does not exist.
type Memberships interface {
	GetMembershipByUserAndOrg(ctx context.Context, userID, orgID string) (*membershipdomain.Membership, error)
}

// Issuer mints, enriches, and re-issues session tokens.
type Issuer struct {
	tokens      *security.TokenProvider
	workspaces  Workspaces
	memberships Memberships
	ttl         time.Duration
}

// NewIssuer returns an Issuer. ttl is the fixed session lifetime (30 days in
// the default configuration).
func NewIssuer(tokens *security.TokenProvider, workspaces Workspaces, memberships Memberships, ttl time.Duration) *Issuer {
	return &Issuer{tokens: tokens, workspaces: workspaces, memberships: memberships, ttl: ttl}
}

// Mint creates a base token at successful authentication. It carries only the
// subject and profile claims; organization context is added by enrichment.
func (i *Issuer) Mint(identity *identitydomain.Identity) (*domain.Token, error) {
	now := time.Now().UTC()
	return &domain.Token{
		SubjectID: identity.ID,
		Email:     identity.Email,
		Name:      identity.DisplayName,
		IssuedAt:  now,
		ExpiresAt: now.Add(i.ttl),
	}, nil
}

// Enrich populates the token's organization fields by provisioning (or
// looking up) the subject's default workspace. Only OrgID and Role are
// written; SubjectID, IssuedAt, and ExpiresAt are never touched.
func (i *Issuer) Enrich(ctx context.Context, tok *domain.Token) error {
	uo, err := i.workspaces.EnsureDefaultOrganization(ctx, tok.SubjectID, tok.Name)
	if err != nil {
		return fmt.Errorf("enrich session: %w", err)
	}
	tok.OrgID = uo.ID
	tok.Role = uo.Role
	return nil
}

// Sign serializes the token as a signed JWT.
func (i *Issuer) Sign(tok *domain.Token) (string, error) {
	return i.tokens.Issue(tok.SubjectID, tok.Email, tok.Name, tok.OrgID, string(tok.Role), tok.IssuedAt, tok.ExpiresAt)
}

// Resolve validates tokenString and applies the per-read transition rule:
// when organization context is missing — or refresh requests an explicit
// re-enrichment — the provisioner is invoked and a new token is issued with
// the organization fields updated and all other claims preserved. An enriched
// token's org claim is re-verified against the membership store: a claim whose
// membership no longer exists is stripped and repaired like a missing one.
//
// Returns the session payload and, when the token was re-issued, its new
// serialized form (empty string otherwise). Enrichment failure does not fail
// the read; the token stays unenriched and the guard surfaces the missing
// context. Invalid or expired tokens fail with apperrors.ErrNoSession.
func (i *Issuer) Resolve(ctx context.Context, tokenString string, refresh bool) (*domain.Session, string, error) {
	claims, err := i.tokens.Validate(tokenString)
	if err != nil {
		return nil, "", apperrors.ErrNoSession
	}
	tok := &domain.Token{
		SubjectID: claims.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
		OrgID:     claims.OrgID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.Role != "" {
		role, err := membershipdomain.ParseRole(claims.Role)
		if err != nil {
			// A role outside the enum can only come from a token signed by an
			// older build; treat the token as unenriched and repair below.
			tok.OrgID = ""
		} else {
			tok.Role = role
		}
	}

	if tok.Enriched() && !refresh {
		m, err := i.memberships.GetMembershipByUserAndOrg(ctx, tok.SubjectID, tok.OrgID)
		switch {
		case err != nil:
			// Store failure must not strip a plausible claim; keep the token
			// as-is and let the read proceed.
			log.Printf("session: membership check failed for subject %s: %v", tok.SubjectID, err)
		case m == nil:
			// The claimed membership is gone; discard the stale context and
			// repair below.
			tok.OrgID = ""
			tok.Role = ""
		}
	}

	reissued := ""
	if !tok.Enriched() || refresh {
		if err := i.Enrich(ctx, tok); err != nil {
			log.Printf("session: enrichment failed for subject %s: %v", tok.SubjectID, err)
		} else {
			reissued, err = i.Sign(tok)
			if err != nil {
				return nil, "", fmt.Errorf("re-issue session token: %w", err)
			}
		}
	}
	return domain.SessionFromToken(tok), reissued, nil
}
