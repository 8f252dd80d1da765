// Package usecase implements audit log persistence, listing, retention and the asynchronous
// dispatcher that keeps audit writes off the request path.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/nationalid/internal/auditlog/domain"
)

// AuditLogRepository persists audit logs.
type AuditLogRepository interface {
	// Create inserts an audit log.
	Create(ctx context.Context, auditLog *domain.AuditLog) error

	// List returns audit logs ordered by creation time, newest first.
	List(ctx context.Context, offset, limit int) ([]*domain.AuditLog, error)

	// DeleteOlderThan deletes, or only counts when dryRun is set, logs created before olderThan.
	DeleteOlderThan(ctx context.Context, olderThan time.Time, dryRun bool) (int64, error)
}

// AuditLogUseCase exposes audit log operations.
type AuditLogUseCase interface {
	// Create stores an audit log, assigning an id and timestamp when missing.
	Create(ctx context.Context, auditLog *domain.AuditLog) error

	// List returns a page of audit logs, newest first.
	List(ctx context.Context, offset, limit int) ([]*domain.AuditLog, error)

	// DeleteOlderThan removes audit logs older than days.
	DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error)
}

// LastUsedToucher records that an API key was used.
type LastUsedToucher interface {
	TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error
}
