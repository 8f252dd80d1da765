// Package repository implements API key persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/nationalid/internal/apikey/domain"
	"github.com/allisson/nationalid/internal/database"
	apperrors "github.com/allisson/nationalid/internal/errors"
)

const postgresAPIKeyColumns = `id, name, hashed_secret, secret_prefix, revoked, quota_per_minute,
	quota_per_day, metadata, created_at, last_used_at`

// PostgreSQLAPIKeyRepository implements APIKey persistence for PostgreSQL.
type PostgreSQLAPIKeyRepository struct {
	db *sql.DB
}

// Create inserts a new APIKey. Nil metadata is stored as NULL.
func (p *PostgreSQLAPIKeyRepository) Create(ctx context.Context, apiKey *domain.APIKey) error {
	querier := database.GetTx(ctx, p.db)

	metadataJSON, err := marshalMetadata(apiKey.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO api_keys (id, name, hashed_secret, secret_prefix, revoked, quota_per_minute,
			  quota_per_day, metadata, created_at, last_used_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = querier.ExecContext(
		ctx,
		query,
		apiKey.ID,
		apiKey.Name,
		apiKey.HashedSecret,
		apiKey.SecretPrefix,
		apiKey.Revoked,
		apiKey.QuotaPerMinute,
		apiKey.QuotaPerDay,
		metadataJSON,
		apiKey.CreatedAt,
		apiKey.LastUsedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create api key")
	}

	return nil
}

// Get retrieves an APIKey by id. Returns domain.ErrAPIKeyNotFound when no row matches.
func (p *PostgreSQLAPIKeyRepository) Get(ctx context.Context, id uuid.UUID) (*domain.APIKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresAPIKeyColumns + ` FROM api_keys WHERE id = $1`

	apiKey, err := scanPostgresAPIKey(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAPIKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get api key")
	}

	return apiKey, nil
}

// ListActiveByPrefix returns non-revoked keys sharing prefix. Served by the
// (secret_prefix, revoked) index.
func (p *PostgreSQLAPIKeyRepository) ListActiveByPrefix(
	ctx context.Context,
	prefix string,
) ([]*domain.APIKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresAPIKeyColumns + ` FROM api_keys
			  WHERE secret_prefix = $1 AND revoked = false
			  ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, prefix)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list api keys by prefix")
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectPostgresAPIKeys(rows)
}

// List retrieves keys ordered by created_at descending with pagination.
func (p *PostgreSQLAPIKeyRepository) List(ctx context.Context, offset, limit int) ([]*domain.APIKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresAPIKeyColumns + ` FROM api_keys
			  ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list api keys")
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectPostgresAPIKeys(rows)
}

// Revoke sets revoked=true. Returns domain.ErrAPIKeyNotFound when no row matches.
func (p *PostgreSQLAPIKeyRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `UPDATE api_keys SET revoked = true WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke api key")
	}

	return requireAffected(result)
}

// TouchLastUsed moves last_used_at forward. Older timestamps are ignored so that
// out-of-order audit workers never rewind it.
func (p *PostgreSQLAPIKeyRepository) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE api_keys SET last_used_at = $2
			  WHERE id = $1 AND (last_used_at IS NULL OR last_used_at < $2)`

	if _, err := querier.ExecContext(ctx, query, id, at); err != nil {
		return apperrors.Wrap(err, "failed to update api key last_used_at")
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPostgresAPIKey(row rowScanner) (*domain.APIKey, error) {
	var apiKey domain.APIKey
	var metadataJSON []byte
	var lastUsedAt sql.NullTime

	err := row.Scan(
		&apiKey.ID,
		&apiKey.Name,
		&apiKey.HashedSecret,
		&apiKey.SecretPrefix,
		&apiKey.Revoked,
		&apiKey.QuotaPerMinute,
		&apiKey.QuotaPerDay,
		&metadataJSON,
		&apiKey.CreatedAt,
		&lastUsedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalMetadata(metadataJSON, &apiKey); err != nil {
		return nil, err
	}
	if lastUsedAt.Valid {
		apiKey.LastUsedAt = &lastUsedAt.Time
	}

	return &apiKey, nil
}

func collectPostgresAPIKeys(rows *sql.Rows) ([]*domain.APIKey, error) {
	apiKeys := make([]*domain.APIKey, 0)
	for rows.Next() {
		apiKey, err := scanPostgresAPIKey(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan api key")
		}
		apiKeys = append(apiKeys, apiKey)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating api keys")
	}

	return apiKeys, nil
}

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		return nil, nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal api key metadata")
	}
	return data, nil
}

func unmarshalMetadata(data []byte, apiKey *domain.APIKey) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &apiKey.Metadata); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal api key metadata")
	}
	return nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return domain.ErrAPIKeyNotFound
	}
	return nil
}

// NewPostgreSQLAPIKeyRepository creates a new PostgreSQL APIKey repository.
func NewPostgreSQLAPIKeyRepository(db *sql.DB) *PostgreSQLAPIKeyRepository {
	return &PostgreSQLAPIKeyRepository{db: db}
}
