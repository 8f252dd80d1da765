// Package http exposes the identity code validation endpoint.
package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/nationalid/internal/nationalid/usecase"
)

// APIKeyHeader carries the caller secret.
const APIKeyHeader = "X-API-Key"

// maxBodyBytes bounds the request body read from the client.
const maxBodyBytes = 64 << 10

// ValidationHandler adapts ValidationUseCase to gin.
type ValidationHandler struct {
	validationUseCase usecase.ValidationUseCase
	logger            *slog.Logger
}

// NewValidationHandler creates a new validation handler.
func NewValidationHandler(validationUseCase usecase.ValidationUseCase, logger *slog.Logger) *ValidationHandler {
	return &ValidationHandler{
		validationUseCase: validationUseCase,
		logger:            logger,
	}
}

// ValidateHandler validates an identity code.
// POST /api/v1/validate-id with header X-API-Key and body {"national_id": "...", "strict_checksum": false}.
// Replies 200, 400, 403, 429 or 500, always with {"valid", "errors", "parsed"}.
func (h *ValidationHandler) ValidateHandler(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		h.logger.Debug("failed to read validation request body", slog.Any("error", err))
		body = nil
	}

	result := h.validationUseCase.Validate(c.Request.Context(), &usecase.Input{
		APIKey:    c.GetHeader(APIKeyHeader),
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Endpoint:  c.Request.URL.Path,
		Method:    c.Request.Method,
		Body:      body,
	})

	c.JSON(result.StatusCode, result.Body)
}
