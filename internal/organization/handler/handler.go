// Package handler exposes organization listing and creation.
package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"socialcat/backend/internal/audit"
	auditdomain "socialcat/backend/internal/audit/domain"
	membershipdomain "socialcat/backend/internal/membership/domain"
	"socialcat/backend/internal/organization/domain"
	orgrepo "socialcat/backend/internal/organization/repository"
	"socialcat/backend/internal/platform/rbac"
	"socialcat/backend/internal/server/respond"
)

// Handler serves GET and POST /api/organizations.
type Handler struct {
	orgs  orgrepo.Repository
	audit audit.AuditLogger
}

// NewHandler returns an organization handler. audit may be nil.
func NewHandler(orgs orgrepo.Repository, auditLogger audit.AuditLogger) *Handler {
	return &Handler{orgs: orgs, audit: auditLogger}
}

type organizationPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Plan      string    `json:"plan,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type listResponse struct {
	Success       bool                  `json:"success"`
	Organizations []organizationPayload `json:"organizations"`
}

type createRequest struct {
	Name string `json:"name"`
	Plan string `json:"plan"`
}

type createResponse struct {
	Success      bool                `json:"success"`
	Organization organizationPayload `json:"organization"`
}

// List returns every organization the caller belongs to with their role in
// each, ordered by creation time. Requires an organization-enriched session:
// a token whose context could not be repaired is rejected, not given an
// empty list.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	s, err := rbac.RequireOrganization(r.Context())
	if err != nil {
		respond.FromError(w, err)
		return
	}
	memberships, err := h.orgs.ListOrganizationsForUser(r.Context(), s.UserID)
	if err != nil {
		respond.FromError(w, err)
		return
	}
	payload := make([]organizationPayload, 0, len(memberships))
	for _, uo := range memberships {
		payload = append(payload, organizationPayload{
			ID:        uo.ID,
			Name:      uo.Name,
			Plan:      string(uo.Plan),
			Role:      string(uo.Role),
			CreatedAt: uo.CreatedAt,
		})
	}
	respond.JSON(w, http.StatusOK, listResponse{Success: true, Organizations: payload})
}

// Create validates the payload, creates the organization atomically with an
// owner membership for the caller, and returns it with a 201. Validation
// reports every violated field at once.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	s, err := rbac.RequireOrganization(r.Context())
	if err != nil {
		respond.FromError(w, err)
		return
	}

	var req createRequest
	if v := respond.DecodeJSON(r, &req); v != nil {
		respond.ValidationError(w, v)
		return
	}

	org := &domain.Organization{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		Plan:      domain.Plan(req.Plan),
		CreatedAt: time.Now().UTC(),
	}
	if err := org.Validate(); err != nil {
		respond.FromError(w, err)
		return
	}

	if err := h.orgs.CreateOrganizationWithOwner(r.Context(), org, s.UserID); err != nil {
		respond.FromError(w, err)
		return
	}
	if h.audit != nil {
		h.audit.LogEvent(r.Context(), org.ID, s.UserID, auditdomain.ActionOrgCreated, "organization", "")
	}

	respond.JSON(w, http.StatusCreated, createResponse{
		Success: true,
		Organization: organizationPayload{
			ID:        org.ID,
			Name:      org.Name,
			Plan:      string(org.Plan),
			Role:      string(membershipdomain.RoleOwner),
			CreatedAt: org.CreatedAt,
		},
	})
}
