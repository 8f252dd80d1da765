package dto

import (
	"time"

	"github.com/allisson/nationalid/internal/apikey/domain"
)

// APIKeyResponse describes an issued key. Key holds the plain secret and is only populated
// in the creation response.
type APIKeyResponse struct {
	ID                     string         `json:"id"`
	Name                   string         `json:"name"`
	Key                    string         `json:"key,omitempty"`
	CreatedAt              time.Time      `json:"created_at"`
	QuotaRequestsPerMinute int            `json:"quota_requests_per_minute"`
	QuotaRequestsPerDay    int            `json:"quota_requests_per_day"`
	Metadata               map[string]any `json:"metadata"`
}

// CreateAPIKeyResponse is returned with 201 Created.
type CreateAPIKeyResponse struct {
	Message string         `json:"message"`
	APIKey  APIKeyResponse `json:"api_key"`
}

// MapCreateOutputToResponse builds the creation response.
func MapCreateOutputToResponse(output *domain.CreateAPIKeyOutput) CreateAPIKeyResponse {
	apiKey := output.APIKey
	return CreateAPIKeyResponse{
		Message: "API key created successfully",
		APIKey: APIKeyResponse{
			ID:                     apiKey.ID.String(),
			Name:                   apiKey.Name,
			Key:                    output.PlainSecret,
			CreatedAt:              apiKey.CreatedAt,
			QuotaRequestsPerMinute: apiKey.QuotaPerMinute,
			QuotaRequestsPerDay:    apiKey.QuotaPerDay,
			Metadata:               apiKey.Metadata,
		},
	}
}
