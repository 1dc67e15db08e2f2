// Package handler exposes the sign-in endpoint: credential verification
// followed by minting, best-effort enrichment, and signing of a session token.
package handler

import (
	"errors"
	"log"
	"net/http"

	"socialcat/backend/internal/audit"
	auditdomain "socialcat/backend/internal/audit/domain"
	"socialcat/backend/internal/identity/service"
	"socialcat/backend/internal/platform/apperrors"
	"socialcat/backend/internal/server/respond"
	sessionservice "socialcat/backend/internal/session/service"
)

// Handler serves POST /api/auth/signin.
type Handler struct {
	verifier service.Verifier
	issuer   *sessionservice.Issuer
	audit    audit.AuditLogger
}

// NewHandler returns a sign-in handler. audit may be nil.
func NewHandler(verifier service.Verifier, issuer *sessionservice.Issuer, auditLogger audit.AuditLogger) *Handler {
	return &Handler{verifier: verifier, issuer: issuer, audit: auditLogger}
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	OrganizationID string `json:"organizationId,omitempty"`
	Role           string `json:"role,omitempty"`
}

type signInResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    userPayload `json:"user"`
}

// SignIn verifies credentials and returns a signed session token. Enrichment
// is attempted inline so the common case returns a token that already carries
// organization context; if provisioning fails the token is returned unenriched
// and repaired on the next read.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req signInRequest
	if v := respond.DecodeJSON(r, &req); v != nil {
		respond.ValidationError(w, v)
		return
	}
	v := &apperrors.Validation{}
	if req.Email == "" {
		v.Add("email", "email is required")
	}
	if req.Password == "" {
		v.Add("password", "password is required")
	}
	if !v.Empty() {
		respond.ValidationError(w, v)
		return
	}

	identity, err := h.verifier.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.logAudit(r, "", "", auditdomain.ActionLoginFailure)
			respond.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
			return
		}
		respond.FromError(w, err)
		return
	}

	tok, err := h.issuer.Mint(identity)
	if err != nil {
		respond.FromError(w, err)
		return
	}
	if err := h.issuer.Enrich(ctx, tok); err != nil {
		log.Printf("signin: enrichment failed for subject %s: %v", identity.ID, err)
	}
	signed, err := h.issuer.Sign(tok)
	if err != nil {
		respond.FromError(w, err)
		return
	}

	h.logAudit(r, tok.OrgID, identity.ID, auditdomain.ActionLoginSuccess)
	respond.JSON(w, http.StatusOK, signInResponse{
		Success: true,
		Token:   signed,
		User: userPayload{
			ID:             identity.ID,
			Email:          identity.Email,
			Name:           identity.DisplayName,
			OrganizationID: tok.OrgID,
			Role:           string(tok.Role),
		},
	})
}

func (h *Handler) logAudit(r *http.Request, orgID, userID, action string) {
	if h.audit == nil {
		return
	}
	h.audit.LogEvent(r.Context(), orgID, userID, action, "session", "")
}
