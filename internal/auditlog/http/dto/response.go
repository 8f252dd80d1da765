// Package dto provides the JSON shapes returned by the audit log endpoints.
package dto

import (
	"time"

	"github.com/mssola/useragent"

	"github.com/allisson/nationalid/internal/auditlog/domain"
)

// AuditLogResponse is the public representation of an audit log.
type AuditLogResponse struct {
	ID              string         `json:"id"`
	APIKeyID        *string        `json:"api_key_id"`
	Endpoint        string         `json:"endpoint"`
	Method          string         `json:"method"`
	StatusCode      int            `json:"status_code"`
	ResponseTimeMs  float64        `json:"response_time_ms"`
	ClientIP        string         `json:"client_ip,omitempty"`
	UserAgent       string         `json:"user_agent,omitempty"`
	Client          *ClientInfo    `json:"client,omitempty"`
	RequestPayload  map[string]any `json:"request_payload,omitempty"`
	ResponsePayload map[string]any `json:"response_payload,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// ClientInfo is what the User-Agent header says about the caller.
type ClientInfo struct {
	Browser string `json:"browser,omitempty"`
	Version string `json:"version,omitempty"`
	OS      string `json:"os,omitempty"`
	Mobile  bool   `json:"mobile"`
	Bot     bool   `json:"bot"`
}

// parseClient returns nil for an empty header.
func parseClient(header string) *ClientInfo {
	if header == "" {
		return nil
	}

	ua := useragent.New(header)
	browser, version := ua.Browser()
	return &ClientInfo{
		Browser: browser,
		Version: version,
		OS:      ua.OS(),
		Mobile:  ua.Mobile(),
		Bot:     ua.Bot(),
	}
}

// ListAuditLogsResponse wraps a page of audit logs.
type ListAuditLogsResponse struct {
	Data []AuditLogResponse `json:"data"`
}

// MapAuditLogToResponse converts a domain audit log.
func MapAuditLogToResponse(auditLog *domain.AuditLog) AuditLogResponse {
	var apiKeyID *string
	if auditLog.APIKeyID != nil {
		id := auditLog.APIKeyID.String()
		apiKeyID = &id
	}

	return AuditLogResponse{
		ID:              auditLog.ID.String(),
		APIKeyID:        apiKeyID,
		Endpoint:        auditLog.Endpoint,
		Method:          auditLog.Method,
		StatusCode:      auditLog.StatusCode,
		ResponseTimeMs:  auditLog.ResponseTimeMs,
		ClientIP:        auditLog.ClientIP,
		UserAgent:       auditLog.UserAgent,
		Client:          parseClient(auditLog.UserAgent),
		RequestPayload:  auditLog.RequestPayload,
		ResponsePayload: auditLog.ResponsePayload,
		CreatedAt:       auditLog.CreatedAt,
	}
}

// MapAuditLogsToListResponse converts a page of audit logs. An empty page renders as [].
func MapAuditLogsToListResponse(auditLogs []*domain.AuditLog) ListAuditLogsResponse {
	data := make([]AuditLogResponse, 0, len(auditLogs))
	for _, auditLog := range auditLogs {
		data = append(data, MapAuditLogToResponse(auditLog))
	}
	return ListAuditLogsResponse{Data: data}
}
