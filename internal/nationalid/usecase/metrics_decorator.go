package usecase

import (
	"context"
	"time"

	"github.com/allisson/nationalid/internal/metrics"
)

const metricsDomain = "nationalid"

// validationUseCaseWithMetrics decorates ValidationUseCase with metrics instrumentation.
type validationUseCaseWithMetrics struct {
	next    ValidationUseCase
	metrics metrics.BusinessMetrics
}

// NewValidationUseCaseWithMetrics wraps a ValidationUseCase with metrics recording. The status
// label is the request outcome.
func NewValidationUseCaseWithMetrics(useCase ValidationUseCase, m metrics.BusinessMetrics) ValidationUseCase {
	return &validationUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Validate records metrics for a validation request.
func (v *validationUseCaseWithMetrics) Validate(ctx context.Context, input *Input) *Result {
	start := time.Now()
	result := v.next.Validate(ctx, input)

	status := string(result.Outcome)
	v.metrics.RecordOperation(ctx, metricsDomain, "validate", status)
	v.metrics.RecordDuration(ctx, metricsDomain, "validate", time.Since(start), status)

	return result
}
