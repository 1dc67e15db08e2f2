package repository

import (
	"context"

	"socialcat/backend/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Create(ctx context.Context, l *domain.AuditLog) error
}
