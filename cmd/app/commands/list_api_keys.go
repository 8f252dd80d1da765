package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	apiKeyUseCase "github.com/allisson/nationalid/internal/apikey/usecase"
)

// RunListAPIKeys prints a page of API keys. Hashes and secrets are never shown.
func RunListAPIKeys(
	ctx context.Context,
	useCase apiKeyUseCase.APIKeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	offset int,
	limit int,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if offset < 0 {
		return fmt.Errorf("offset must be a non-negative number, got: %d", offset)
	}
	if limit < 1 {
		return fmt.Errorf("limit must be a positive number, got: %d", limit)
	}

	keys, err := useCase.List(ctx, offset, limit)
	if err != nil {
		return fmt.Errorf("failed to list api keys: %w", err)
	}

	logger.Debug("listed api keys", slog.Int("count", len(keys)))

	if format == "json" {
		data := make([]map[string]any, 0, len(keys))
		for _, key := range keys {
			var lastUsedAt any
			if key.LastUsedAt != nil {
				lastUsedAt = key.LastUsedAt.Format(time.RFC3339)
			}
			data = append(data, map[string]any{
				"id":                        key.ID.String(),
				"name":                      key.Name,
				"prefix":                    key.SecretPrefix,
				"revoked":                   key.Revoked,
				"quota_requests_per_minute": key.QuotaPerMinute,
				"quota_requests_per_day":    key.QuotaPerDay,
				"created_at":                key.CreatedAt.Format(time.RFC3339),
				"last_used_at":              lastUsedAt,
			})
		}
		return writeJSON(writer, map[string]any{"data": data})
	}

	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tPREFIX\tREVOKED\tPER MINUTE\tPER DAY\tLAST USED")
	for _, key := range keys {
		lastUsed := "never"
		if key.LastUsedAt != nil {
			lastUsed = key.LastUsedAt.Format(time.RFC3339)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%d\t%d\t%s\n",
			key.ID, key.Name, key.SecretPrefix, key.Revoked, key.QuotaPerMinute, key.QuotaPerDay, lastUsed)
	}
	return tw.Flush()
}
