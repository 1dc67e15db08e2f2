// Package handler exposes the liveness/readiness endpoint.
package handler

import (
	"context"
	"net/http"
	"time"

	"socialcat/backend/internal/server/respond"
)

// Pinger checks connectivity to a backing store. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler serves GET /health.
type Handler struct {
	db Pinger
}

// NewHandler returns a health handler. db may be nil; then only process
// liveness is reported.
func NewHandler(db Pinger) *Handler {
	return &Handler{db: db}
}

type healthResponse struct {
	Success  bool   `json:"success"`
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// Check reports process liveness and database reachability. A failing
// database ping degrades the status but still answers 200 so orchestrators
// distinguish "slow dependency" from "dead process".
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Success: true, Status: "ok"}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
		} else {
			resp.Database = "ok"
		}
	}
	respond.JSON(w, http.StatusOK, resp)
}
