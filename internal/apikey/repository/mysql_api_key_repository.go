package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/nationalid/internal/apikey/domain"
	"github.com/allisson/nationalid/internal/database"
	apperrors "github.com/allisson/nationalid/internal/errors"
)

const mysqlAPIKeyColumns = `id, name, hashed_secret, secret_prefix, revoked, quota_per_minute,
	quota_per_day, metadata, created_at, last_used_at`

// MySQLAPIKeyRepository implements APIKey persistence for MySQL.
// Uses BINARY(16) for UUID storage.
type MySQLAPIKeyRepository struct {
	db *sql.DB
}

// Create inserts a new APIKey. Nil metadata is stored as NULL.
func (m *MySQLAPIKeyRepository) Create(ctx context.Context, apiKey *domain.APIKey) error {
	querier := database.GetTx(ctx, m.db)

	id, err := apiKey.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal api key id")
	}

	metadataJSON, err := marshalMetadata(apiKey.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO api_keys (id, name, hashed_secret, secret_prefix, revoked, quota_per_minute,
			  quota_per_day, metadata, created_at, last_used_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLAPIKeyRepository) Get(ctx context.Context, id uuid.UUID) (*domain.APIKey, error) {
	querier := database.GetTx(ctx, m.db)

	idBinary, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal api key id")
	}

	query := `SELECT ` + mysqlAPIKeyColumns + ` FROM api_keys WHERE id = ?`

	apiKey, err := scanMySQLAPIKey(querier.QueryRowContext(ctx, query, idBinary))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAPIKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get api key")
	}

	return apiKey, nil
}

// ListActiveByPrefix returns non-revoked keys sharing prefix.
func (m *MySQLAPIKeyRepository) ListActiveByPrefix(ctx context.Context, prefix string) ([]*domain.APIKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlAPIKeyColumns + ` FROM api_keys
			  WHERE secret_prefix = ? AND revoked = false
			  ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, prefix)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list api keys by prefix")
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectMySQLAPIKeys(rows)
}

// List retrieves keys ordered by created_at descending with pagination.
func (m *MySQLAPIKeyRepository) List(ctx context.Context, offset, limit int) ([]*domain.APIKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlAPIKeyColumns + ` FROM api_keys
			  ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list api keys")
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectMySQLAPIKeys(rows)
}

// Revoke sets revoked=true. Returns domain.ErrAPIKeyNotFound when no row matches.
func (m *MySQLAPIKeyRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	idBinary, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal api key id")
	}

	result, err := querier.ExecContext(ctx, `UPDATE api_keys SET revoked = true WHERE id = ?`, idBinary)
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke api key")
	}

	return requireAffected(result)
}

// TouchLastUsed moves last_used_at forward; older timestamps are ignored.
func (m *MySQLAPIKeyRepository) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	querier := database.GetTx(ctx, m.db)

	idBinary, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal api key id")
	}

	query := `UPDATE api_keys SET last_used_at = ?
			  WHERE id = ? AND (last_used_at IS NULL OR last_used_at < ?)`

	if _, err := querier.ExecContext(ctx, query, at, idBinary, at); err != nil {
		return apperrors.Wrap(err, "failed to update api key last_used_at")
	}

	return nil
}

func scanMySQLAPIKey(row rowScanner) (*domain.APIKey, error) {
	var apiKey domain.APIKey
	var idBinary, metadataJSON []byte
	var lastUsedAt sql.NullTime

	err := row.Scan(
		&idBinary,
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

	if err := apiKey.ID.UnmarshalBinary(idBinary); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal api key id")
	}
	if err := unmarshalMetadata(metadataJSON, &apiKey); err != nil {
		return nil, err
	}
	if lastUsedAt.Valid {
		apiKey.LastUsedAt = &lastUsedAt.Time
	}

	return &apiKey, nil
}

func collectMySQLAPIKeys(rows *sql.Rows) ([]*domain.APIKey, error) {
	apiKeys := make([]*domain.APIKey, 0)
	for rows.Next() {
		apiKey, err := scanMySQLAPIKey(rows)
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

// NewMySQLAPIKeyRepository creates a new MySQL APIKey repository.
func NewMySQLAPIKeyRepository(db *sql.DB) *MySQLAPIKeyRepository {
	return &MySQLAPIKeyRepository{db: db}
}
