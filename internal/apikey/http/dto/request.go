// Package dto provides the request and response shapes of the API key endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	"github.com/allisson/nationalid/internal/apikey/domain"
	customValidation "github.com/allisson/nationalid/internal/validation"
)

// CreateAPIKeyRequest is the body of POST /api/v1/api-keys. Key is optional; when omitted the
// server generates one. Omitted quotas take the defaults.
type CreateAPIKeyRequest struct {
	Name                   string         `json:"name"`
	Key                    string         `json:"key"`
	QuotaRequestsPerMinute *int           `json:"quota_requests_per_minute"`
	QuotaRequestsPerDay    *int           `json:"quota_requests_per_day"`
	Metadata               map[string]any `json:"metadata"`
}

// Validate checks if the create request is valid.
func (r *CreateAPIKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.RuneLength(1, 100),
		),
		validation.Field(&r.Key,
			customValidation.SecretCharset,
			validation.Length(domain.SecretPrefixLength, 256),
		),
		validation.Field(&r.QuotaRequestsPerMinute, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&r.QuotaRequestsPerDay, validation.NilOrNotEmpty, validation.Min(1)),
	)
}

// ToInput converts the request into use case input.
func (r *CreateAPIKeyRequest) ToInput() *domain.CreateAPIKeyInput {
	input := &domain.CreateAPIKeyInput{
		Name:           r.Name,
		Secret:         r.Key,
		QuotaPerMinute: domain.DefaultQuotaPerMinute,
		QuotaPerDay:    domain.DefaultQuotaPerDay,
		Metadata:       r.Metadata,
	}
	if r.QuotaRequestsPerMinute != nil {
		input.QuotaPerMinute = *r.QuotaRequestsPerMinute
	}
	if r.QuotaRequestsPerDay != nil {
		input.QuotaPerDay = *r.QuotaRequestsPerDay
	}
	return input
}
