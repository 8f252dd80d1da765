package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/nationalid/internal/apikey/domain"
	apperrors "github.com/allisson/nationalid/internal/errors"
	"github.com/allisson/nationalid/internal/metrics"
)

const metricsDomain = "apikey"

// apiKeyUseCaseWithMetrics decorates APIKeyUseCase with metrics instrumentation.
type apiKeyUseCaseWithMetrics struct {
	next    APIKeyUseCase
	metrics metrics.BusinessMetrics
}

// NewAPIKeyUseCaseWithMetrics wraps an APIKeyUseCase with metrics recording.
func NewAPIKeyUseCaseWithMetrics(useCase APIKeyUseCase, m metrics.BusinessMetrics) APIKeyUseCase {
	return &apiKeyUseCaseWithMetrics{next: useCase, metrics: m}
}

func (u *apiKeyUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	u.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	u.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// Create records metrics for key issuance.
func (u *apiKeyUseCaseWithMetrics) Create(
	ctx context.Context,
	input *domain.CreateAPIKeyInput,
) (*domain.CreateAPIKeyOutput, error) {
	start := time.Now()
	output, err := u.next.Create(ctx, input)
	u.record(ctx, "create", start, err)
	return output, err
}

// Revoke records metrics for key revocation.
func (u *apiKeyUseCaseWithMetrics) Revoke(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := u.next.Revoke(ctx, id)
	u.record(ctx, "revoke", start, err)
	return err
}

// List records metrics for key listing.
func (u *apiKeyUseCaseWithMetrics) List(ctx context.Context, offset, limit int) ([]*domain.APIKey, error) {
	start := time.Now()
	keys, err := u.next.List(ctx, offset, limit)
	u.record(ctx, "list", start, err)
	return keys, err
}

// TouchLastUsed records metrics for usage tracking.
func (u *apiKeyUseCaseWithMetrics) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	start := time.Now()
	err := u.next.TouchLastUsed(ctx, id, at)
	u.record(ctx, "touch_last_used", start, err)
	return err
}

// authenticatorWithMetrics decorates Authenticator with metrics instrumentation.
type authenticatorWithMetrics struct {
	next    Authenticator
	metrics metrics.BusinessMetrics
}

// NewAuthenticatorWithMetrics wraps an Authenticator with metrics recording.
func NewAuthenticatorWithMetrics(authenticator Authenticator, m metrics.BusinessMetrics) Authenticator {
	return &authenticatorWithMetrics{next: authenticator, metrics: m}
}

// Authenticate records success, rejected and error outcomes separately.
func (a *authenticatorWithMetrics) Authenticate(ctx context.Context, secret string) (*domain.APIKey, error) {
	start := time.Now()
	apiKey, err := a.next.Authenticate(ctx, secret)

	status := "success"
	var authErr *domain.AuthError
	switch {
	case err == nil:
	case apperrors.As(err, &authErr):
		status = "rejected"
	default:
		status = "error"
	}

	a.metrics.RecordOperation(ctx, metricsDomain, "authenticate", status)
	a.metrics.RecordDuration(ctx, metricsDomain, "authenticate", time.Since(start), status)

	return apiKey, err
}
