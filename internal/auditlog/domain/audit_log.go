// Package domain defines the audit record written once per validation request.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records one request attempt, successful or not. APIKeyID is nil when the caller
// was not authenticated. RequestPayload carries the masked projection of the request body.
type AuditLog struct {
	ID              uuid.UUID
	APIKeyID        *uuid.UUID
	Endpoint        string
	Method          string
	StatusCode      int
	ResponseTimeMs  float64
	ClientIP        string
	UserAgent       string
	RequestPayload  map[string]any
	ResponsePayload map[string]any
	CreatedAt       time.Time
}
