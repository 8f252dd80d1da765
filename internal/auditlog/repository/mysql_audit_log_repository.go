package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/nationalid/internal/auditlog/domain"
	"github.com/allisson/nationalid/internal/database"
	apperrors "github.com/allisson/nationalid/internal/errors"
)

// MySQLAuditLogRepository implements AuditLog persistence for MySQL.
// Uses BINARY(16) for UUID storage.
type MySQLAuditLogRepository struct {
	db *sql.DB
}

// Create inserts an AuditLog. Nil payloads and a nil api key id are stored as NULL.
func (m *MySQLAuditLogRepository) Create(ctx context.Context, auditLog *domain.AuditLog) error {
	querier := database.GetTx(ctx, m.db)

	id, err := auditLog.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit log id")
	}

	var apiKeyID []byte
	if auditLog.APIKeyID != nil {
		apiKeyID, err = auditLog.APIKeyID.MarshalBinary()
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal audit log api_key_id")
		}
	}

	requestJSON, responseJSON, err := marshalPayloads(auditLog)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_logs (id, api_key_id, endpoint, method, status_code, response_time_ms,
			  client_ip, user_agent, request_payload, response_payload, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		apiKeyID,
		auditLog.Endpoint,
		auditLog.Method,
		auditLog.StatusCode,
		auditLog.ResponseTimeMs,
		auditLog.ClientIP,
		auditLog.UserAgent,
		requestJSON,
		responseJSON,
		auditLog.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit log")
	}

	return nil
}

// List retrieves audit logs ordered by created_at descending with pagination.
func (m *MySQLAuditLogRepository) List(ctx context.Context, offset, limit int) ([]*domain.AuditLog, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, api_key_id, endpoint, method, status_code, response_time_ms, client_ip,
			  user_agent, request_payload, response_payload, created_at
			  FROM audit_logs ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}
	defer func() {
		_ = rows.Close()
	}()

	auditLogs := make([]*domain.AuditLog, 0)
	for rows.Next() {
		var auditLog domain.AuditLog
		var idBinary, apiKeyIDBinary []byte
		var clientIP, userAgent sql.NullString
		var requestJSON, responseJSON []byte

		err := rows.Scan(
			&idBinary,
			&apiKeyIDBinary,
			&auditLog.Endpoint,
			&auditLog.Method,
			&auditLog.StatusCode,
			&auditLog.ResponseTimeMs,
			&clientIP,
			&userAgent,
			&requestJSON,
			&responseJSON,
			&auditLog.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit log")
		}

		if err := auditLog.ID.UnmarshalBinary(idBinary); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit log id")
		}
		if len(apiKeyIDBinary) > 0 {
			auditLog.APIKeyID = new(uuid.UUID)
			if err := auditLog.APIKeyID.UnmarshalBinary(apiKeyIDBinary); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal audit log api_key_id")
			}
		}
		auditLog.ClientIP = clientIP.String
		auditLog.UserAgent = userAgent.String

		if err := unmarshalPayloads(&auditLog, requestJSON, responseJSON); err != nil {
			return nil, err
		}

		auditLogs = append(auditLogs, &auditLog)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating audit logs")
	}

	return auditLogs, nil
}

// DeleteOlderThan removes audit logs created before olderThan. In dry-run mode it only
// counts them.
func (m *MySQLAuditLogRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	if dryRun {
		var count int64
		err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs WHERE created_at < ?`, olderThan).
			Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count audit logs")
		}
		return count, nil
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < ?`, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit logs")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows count")
	}

	return count, nil
}

// NewMySQLAuditLogRepository creates a new MySQL AuditLog repository.
func NewMySQLAuditLogRepository(db *sql.DB) *MySQLAuditLogRepository {
	return &MySQLAuditLogRepository{db: db}
}
