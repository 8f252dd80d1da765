package http

import (
	"crypto/subtle"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/nationalid/internal/errors"
	"github.com/allisson/nationalid/internal/httputil"
)

// AdminTokenMiddleware requires "Authorization: Bearer <token>" on administrative routes.
// An empty token disables the check.
func AdminTokenMiddleware(token string, logger *slog.Logger) gin.HandlerFunc {
	expected := []byte(token)

	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		presented, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok || subtle.ConstantTimeCompare([]byte(presented), expected) != 1 {
			logger.Warn("admin token rejected",
				slog.String("path", c.Request.URL.Path),
				slog.String("client_ip", c.ClientIP()))
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// bearerToken extracts the token from an Authorization header, matching the scheme case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
