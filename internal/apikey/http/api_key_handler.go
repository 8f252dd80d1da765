// Package http exposes API key issuance and the middleware guarding administrative routes.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/nationalid/internal/apikey/http/dto"
	"github.com/allisson/nationalid/internal/apikey/usecase"
	"github.com/allisson/nationalid/internal/httputil"
	customValidation "github.com/allisson/nationalid/internal/validation"
)

// APIKeyHandler handles HTTP requests for API key management.
type APIKeyHandler struct {
	apiKeyUseCase usecase.APIKeyUseCase
	logger        *slog.Logger
}

// NewAPIKeyHandler creates a new API key handler.
func NewAPIKeyHandler(apiKeyUseCase usecase.APIKeyUseCase, logger *slog.Logger) *APIKeyHandler {
	return &APIKeyHandler{
		apiKeyUseCase: apiKeyUseCase,
		logger:        logger,
	}
}

// CreateHandler issues a new API key.
// POST /api/v1/api-keys. Returns 201 Created with the plain key, which is never shown again.
func (h *APIKeyHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateAPIKeyRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.apiKeyUseCase.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("api key issued",
		slog.String("api_key_id", output.APIKey.ID.String()),
		slog.String("prefix", output.APIKey.SecretPrefix))

	c.JSON(http.StatusCreated, dto.MapCreateOutputToResponse(output))
}
