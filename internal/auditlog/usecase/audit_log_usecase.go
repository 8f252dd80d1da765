package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/nationalid/internal/auditlog/domain"
	apperrors "github.com/allisson/nationalid/internal/errors"
)

type auditLogUseCase struct {
	auditLogRepo AuditLogRepository
	now          func() time.Time
}

// Create fills in a UUIDv7 id and a UTC timestamp when the caller left them empty.
func (a *auditLogUseCase) Create(ctx context.Context, auditLog *domain.AuditLog) error {
	if auditLog.ID == uuid.Nil {
		auditLog.ID = uuid.Must(uuid.NewV7())
	}
	if auditLog.CreatedAt.IsZero() {
		auditLog.CreatedAt = a.now().UTC()
	}

	if err := a.auditLogRepo.Create(ctx, auditLog); err != nil {
		return apperrors.Wrap(err, "failed to create audit log")
	}

	return nil
}

// List retrieves audit logs newest first. Returns an empty slice when there are none.
func (a *auditLogUseCase) List(ctx context.Context, offset, limit int) ([]*domain.AuditLog, error) {
	auditLogs, err := a.auditLogRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}

	return auditLogs, nil
}

// DeleteOlderThan removes audit logs created more than days ago.
func (a *auditLogUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.Wrapf(apperrors.ErrInvalidInput, "days must be a positive number, got: %d", days)
	}

	olderThan := a.now().UTC().AddDate(0, 0, -days)

	count, err := a.auditLogRepo.DeleteOlderThan(ctx, olderThan, dryRun)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit logs")
	}

	return count, nil
}

// NewAuditLogUseCase creates a new AuditLogUseCase with the provided dependencies.
func NewAuditLogUseCase(auditLogRepo AuditLogRepository) AuditLogUseCase {
	return &auditLogUseCase{
		auditLogRepo: auditLogRepo,
		now:          time.Now,
	}
}
