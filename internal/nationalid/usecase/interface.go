// Package usecase sequences a validation request: authenticate the caller, enforce its quota,
// parse the identity code, build the response and hand an audit record to the background
// dispatcher. It does not depend on any HTTP framework.
package usecase

import (
	"context"

	auditDomain "github.com/allisson/nationalid/internal/auditlog/domain"
	"github.com/allisson/nationalid/internal/nationalid/domain"
	"github.com/allisson/nationalid/internal/quota"
)

// QuotaEnforcer admits or rejects a request for a subject.
type QuotaEnforcer interface {
	Admit(ctx context.Context, subject quota.Subject) error
}

// IdentityParser decodes identity codes.
type IdentityParser interface {
	Parse(raw string, strict bool) domain.Result
}

// AuditDispatcher hands audit logs to background workers without blocking.
type AuditDispatcher interface {
	Dispatch(ctx context.Context, auditLog *auditDomain.AuditLog) bool
}

// ValidationUseCase answers validation requests.
type ValidationUseCase interface {
	// Validate always returns a result; failures are expressed as status codes and error tokens.
	Validate(ctx context.Context, input *Input) *Result
}
