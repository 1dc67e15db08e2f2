// Package handler exposes the session read and refresh endpoints.
package handler

import (
	"net/http"

	"socialcat/backend/internal/platform/apperrors"
	"socialcat/backend/internal/platform/rbac"
	"socialcat/backend/internal/server/middleware"
	"socialcat/backend/internal/server/respond"
	sessionservice "socialcat/backend/internal/session/service"
)

// Handler serves GET /api/auth/session and POST /api/auth/session/refresh.
type Handler struct {
	issuer *sessionservice.Issuer
}

// NewHandler returns a session handler backed by the issuer.
func NewHandler(issuer *sessionservice.Issuer) *Handler {
	return &Handler{issuer: issuer}
}

type userPayload struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	OrganizationID string `json:"organizationId,omitempty"`
	Role           string `json:"role,omitempty"`
}

type sessionResponse struct {
	Success bool        `json:"success"`
	User    userPayload `json:"user"`
}

type refreshResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    userPayload `json:"user"`
}

// Get returns the caller's session with organization context. The auth
// middleware has already run the repair pass; a session still missing its
// organization fails the guard here.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := rbac.RequireOrganization(r.Context())
	if err != nil {
		respond.FromError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, sessionResponse{
		Success: true,
		User: userPayload{
			ID:             s.UserID,
			Email:          s.Email,
			Name:           s.Name,
			OrganizationID: s.OrgID,
			Role:           string(s.Role),
		},
	})
}

// Refresh forces re-enrichment of the presented token, picking up membership
// changes without waiting for the organization context to go missing. The
// re-issued token is returned in the body and in the X-Session-Token header.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	tokenString, ok := middleware.ExtractBearer(r)
	if !ok {
		respond.FromError(w, apperrors.ErrNoSession)
		return
	}
	s, reissued, err := h.issuer.Resolve(r.Context(), tokenString, true)
	if err != nil {
		respond.FromError(w, err)
		return
	}
	token := tokenString
	if reissued != "" {
		token = reissued
		w.Header().Set(middleware.HeaderSessionToken, reissued)
	}
	respond.JSON(w, http.StatusOK, refreshResponse{
		Success: true,
		Token:   token,
		User: userPayload{
			ID:             s.UserID,
			Email:          s.Email,
			Name:           s.Name,
			OrganizationID: s.OrgID,
			Role:           string(s.Role),
		},
	})
}
