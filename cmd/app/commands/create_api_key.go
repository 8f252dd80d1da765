package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"

	apiKeyDomain "github.com/allisson/nationalid/internal/apikey/domain"
	apiKeyUseCase "github.com/allisson/nationalid/internal/apikey/usecase"
)

// CreateAPIKeyParams are the command-line inputs of create-api-key.
type CreateAPIKeyParams struct {
	Name           string
	Key            string
	QuotaPerMinute int
	QuotaPerDay    int
	MetadataJSON   string
	Format         string
}

// SecretReader reads a secret without echoing it.
type SecretReader func(prompt string) (string, error)

// TerminalSecretReader prompts on stderr and reads a line from the controlling terminal.
func TerminalSecretReader(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal")
	}

	_, _ = fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return string(secret), nil
}

// RunCreateAPIKey issues a new API key and prints its secret once. When readSecret is not nil
// the custom secret is prompted for twice instead of being taken from params.Key.
func RunCreateAPIKey(
	ctx context.Context,
	useCase apiKeyUseCase.APIKeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	params CreateAPIKeyParams,
	readSecret SecretReader,
) error {
	if err := validateFormat(params.Format); err != nil {
		return err
	}

	var metadata map[string]any
	if params.MetadataJSON != "" {
		if err := json.Unmarshal([]byte(params.MetadataJSON), &metadata); err != nil {
			return fmt.Errorf("failed to parse metadata JSON: %w", err)
		}
	}

	secret := params.Key
	if readSecret != nil {
		entered, err := readSecret("API key: ")
		if err != nil {
			return err
		}
		confirm, err := readSecret("Confirm API key: ")
		if err != nil {
			return err
		}
		if entered != confirm {
			return fmt.Errorf("api keys do not match")
		}
		secret = entered
	}

	logger.Info("creating api key", slog.String("name", params.Name))

	output, err := useCase.Create(ctx, &apiKeyDomain.CreateAPIKeyInput{
		Name:           params.Name,
		Secret:         secret,
		QuotaPerMinute: params.QuotaPerMinute,
		QuotaPerDay:    params.QuotaPerDay,
		Metadata:       metadata,
	})
	if err != nil {
		return fmt.Errorf("failed to create api key: %w", err)
	}

	key := output.APIKey
	if params.Format == "json" {
		if err := writeJSON(writer, map[string]any{
			"id":                        key.ID.String(),
			"name":                      key.Name,
			"key":                       output.PlainSecret,
			"created_at":                key.CreatedAt.Format(time.RFC3339),
			"quota_requests_per_minute": key.QuotaPerMinute,
			"quota_requests_per_day":    key.QuotaPerDay,
			"metadata":                  key.Metadata,
		}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintln(writer, "API key created successfully")
		_, _ = fmt.Fprintf(writer, "ID: %s\n", key.ID)
		_, _ = fmt.Fprintf(writer, "Name: %s\n", key.Name)
		_, _ = fmt.Fprintf(writer, "Key: %s\n", output.PlainSecret)
		_, _ = fmt.Fprintf(writer, "Quota: %d/minute, %d/day\n", key.QuotaPerMinute, key.QuotaPerDay)
		_, _ = fmt.Fprintln(writer, "\nStore the key now, it cannot be retrieved again.")
	}

	logger.Info("api key created", slog.String("api_key_id", key.ID.String()))
	return nil
}
