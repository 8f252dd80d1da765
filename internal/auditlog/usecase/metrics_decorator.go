package usecase

import (
	"context"
	"time"

	"github.com/allisson/nationalid/internal/auditlog/domain"
	"github.com/allisson/nationalid/internal/metrics"
)

const metricsDomain = "auditlog"

// auditLogUseCaseWithMetrics decorates AuditLogUseCase with metrics instrumentation.
type auditLogUseCaseWithMetrics struct {
	next    AuditLogUseCase
	metrics metrics.BusinessMetrics
}

// NewAuditLogUseCaseWithMetrics wraps an AuditLogUseCase with metrics recording.
func NewAuditLogUseCaseWithMetrics(useCase AuditLogUseCase, m metrics.BusinessMetrics) AuditLogUseCase {
	return &auditLogUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (a *auditLogUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	a.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	a.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// Create records metrics for audit log creation.
func (a *auditLogUseCaseWithMetrics) Create(ctx context.Context, auditLog *domain.AuditLog) error {
	start := time.Now()
	err := a.next.Create(ctx, auditLog)
	a.record(ctx, "create", start, err)
	return err
}

// List records metrics for audit log listing.
func (a *auditLogUseCaseWithMetrics) List(ctx context.Context, offset, limit int) ([]*domain.AuditLog, error) {
	start := time.Now()
	logs, err := a.next.List(ctx, offset, limit)
	a.record(ctx, "list", start, err)
	return logs, err
}

// DeleteOlderThan records metrics for audit log retention runs.
func (a *auditLogUseCaseWithMetrics) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	start := time.Now()
	count, err := a.next.DeleteOlderThan(ctx, days, dryRun)
	a.record(ctx, "delete", start, err)
	return count, err
}
