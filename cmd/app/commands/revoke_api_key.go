package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	apiKeyUseCase "github.com/allisson/nationalid/internal/apikey/usecase"
)

// RunRevokeAPIKey revokes the key with the given id. Nodes that cached the key keep accepting it
// until their auth cache entry expires.
func RunRevokeAPIKey(
	ctx context.Context,
	useCase apiKeyUseCase.APIKeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	id string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	keyID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid api key id: %w", err)
	}

	if err := useCase.Revoke(ctx, keyID); err != nil {
		return fmt.Errorf("failed to revoke api key: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{"id": keyID.String(), "revoked": true}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "API key %s revoked\n", keyID)
	}

	logger.Info("api key revoked", slog.String("api_key_id", keyID.String()))
	return nil
}
