package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apikeyDomain "github.com/allisson/nationalid/internal/apikey/domain"
	apikeyUseCase "github.com/allisson/nationalid/internal/apikey/usecase"
	auditDomain "github.com/allisson/nationalid/internal/auditlog/domain"
	apperrors "github.com/allisson/nationalid/internal/errors"
	"github.com/allisson/nationalid/internal/nationalid/domain"
	"github.com/allisson/nationalid/internal/quota"
	customValidation "github.com/allisson/nationalid/internal/validation"
)

// Dependencies are the collaborators of the orchestrator.
type Dependencies struct {
	Authenticator apikeyUseCase.Authenticator
	Quota         QuotaEnforcer
	Parser        IdentityParser
	Dispatcher    AuditDispatcher
	Logger        *slog.Logger

	// Now defaults to time.Now. It only feeds the recorded response time.
	Now func() time.Time

	// EvaluateQuotaBeforeAuth also throttles requests that fail authentication, counting them
	// against the presented secret, or the client address when no key was sent, at the anonymous
	// limits. A throttled unauthenticated request is answered with 429 instead of 403.
	EvaluateQuotaBeforeAuth bool
}

type orchestrator struct {
	deps Dependencies
}

// NewOrchestrator creates the validation use case.
func NewOrchestrator(deps Dependencies) ValidationUseCase {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &orchestrator{deps: deps}
}

// Validate runs authenticate, throttle and parse in order, stopping at the first failure, then
// dispatches exactly one audit log for the request.
func (o *orchestrator) Validate(ctx context.Context, input *Input) *Result {
	start := o.deps.Now()

	result, requestPayload := o.evaluate(ctx, input)

	if err := result.Body.Validate(); err != nil {
		o.deps.Logger.Error("validation response failed its contract", slog.Any("error", err))
		apiKeyID := result.APIKeyID
		result = errorResult(http.StatusInternalServerError, OutcomeError, ErrorInternalResponse)
		result.APIKeyID = apiKeyID
	}

	elapsed := o.deps.Now().Sub(start)
	o.dispatch(ctx, input, result, requestPayload, elapsed)

	return result
}

// evaluate returns the result and the masked request payload to audit.
func (o *orchestrator) evaluate(ctx context.Context, input *Input) (*Result, map[string]any) {
	secret := strings.TrimSpace(input.APIKey)
	placeholderPayload := func() map[string]any {
		return map[string]any{
			"national_id":     domain.MaskPlaceholder,
			"strict_checksum": strictChecksumForLog(input.Body),
		}
	}

	apiKey, err := o.authenticate(ctx, secret)
	if err != nil {
		if o.deps.EvaluateQuotaBeforeAuth {
			subject := quota.ForClientIP(input.ClientIP)
			if secret != "" {
				subject = quota.ForPresentedSecret(secret)
			}
			if throttled := o.throttle(ctx, subject); throttled != nil {
				return throttled, placeholderPayload()
			}
		}
		return errorResult(http.StatusForbidden, OutcomeUnauthorized, authMessage(err)), placeholderPayload()
	}

	if throttled := o.throttle(ctx, quota.ForAPIKey(secret, apiKey)); throttled != nil {
		throttled.APIKeyID = &apiKey.ID
		return throttled, placeholderPayload()
	}

	req, err := DecodeRequest(input.Body)
	if err != nil {
		result := errorResult(http.StatusBadRequest, OutcomeBadRequest, invalidRequestMessage(err))
		result.APIKeyID = &apiKey.ID
		return result, placeholderPayload()
	}

	parsed := o.deps.Parser.Parse(req.NationalID, req.StrictChecksum)
	body, statusCode, outcome := responseFromParse(parsed)

	// Only successful validations are masked; rejected codes are logged as sent.
	loggedID := req.NationalID
	if body.Valid {
		loggedID = domain.MaskIdentityCode(req.NationalID)
	}

	return &Result{
			StatusCode: statusCode,
			Outcome:    outcome,
			Body:       body,
			APIKeyID:   &apiKey.ID,
		}, map[string]any{
			"national_id":     loggedID,
			"strict_checksum": req.StrictChecksum,
		}
}

// authenticate fails closed: infrastructure errors are reported as an invalid key.
func (o *orchestrator) authenticate(ctx context.Context, secret string) (*apikeyDomain.APIKey, error) {
	if secret == "" {
		return nil, apikeyDomain.ErrAPIKeyRequired
	}

	apiKey, err := o.deps.Authenticator.Authenticate(ctx, secret)
	if err != nil {
		var authErr *apikeyDomain.AuthError
		if !errors.As(err, &authErr) {
			o.deps.Logger.Error("api key authentication unavailable", slog.Any("error", err))
			return nil, apikeyDomain.ErrInvalidAPIKey
		}
		return nil, err
	}
	return apiKey, nil
}

// throttle returns nil when subject is admitted.
func (o *orchestrator) throttle(ctx context.Context, subject quota.Subject) *Result {
	err := o.deps.Quota.Admit(ctx, subject)
	switch {
	case err == nil:
		return nil
	case apperrors.Is(err, apperrors.ErrTooManyRequests):
		return errorResult(http.StatusTooManyRequests, OutcomeThrottled, ErrorThrottled)
	default:
		o.deps.Logger.Error("quota evaluation failed", slog.Any("error", err))
		return errorResult(http.StatusInternalServerError, OutcomeError, ErrorInternal)
	}
}

// dispatch hands the audit log to the dispatcher. It never fails the request.
func (o *orchestrator) dispatch(
	ctx context.Context,
	input *Input,
	result *Result,
	requestPayload map[string]any,
	elapsed time.Duration,
) {
	defer func() {
		if r := recover(); r != nil {
			o.deps.Logger.Debug("audit log preparation failed", slog.Any("panic", r))
		}
	}()

	if o.deps.Dispatcher == nil {
		return
	}

	o.deps.Dispatcher.Dispatch(ctx, &auditDomain.AuditLog{
		APIKeyID:        result.APIKeyID,
		Endpoint:        input.Endpoint,
		Method:          input.Method,
		StatusCode:      result.StatusCode,
		ResponseTimeMs:  float64(elapsed) / float64(time.Millisecond),
		ClientIP:        input.ClientIP,
		UserAgent:       input.UserAgent,
		RequestPayload:  requestPayload,
		ResponsePayload: result.Body.payload(),
	})
}

func authMessage(err error) string {
	var authErr *apikeyDomain.AuthError
	if errors.As(err, &authErr) {
		return authErr.Error()
	}
	return apikeyDomain.ErrInvalidAPIKey.Error()
}

func invalidRequestMessage(err error) string {
	fields := customValidation.FieldNames(err)
	if len(fields) == 0 {
		fields = []string{"body"}
	}
	return invalidRequestTemplate + strings.Join(fields, ", ")
}
