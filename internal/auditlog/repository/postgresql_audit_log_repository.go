// Package repository implements audit log persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/nationalid/internal/auditlog/domain"
	"github.com/allisson/nationalid/internal/database"
	apperrors "github.com/allisson/nationalid/internal/errors"
)

// PostgreSQLAuditLogRepository implements AuditLog persistence for PostgreSQL.
type PostgreSQLAuditLogRepository struct {
	db *sql.DB
}

// Create inserts an AuditLog. Nil payloads are stored as NULL.
func (p *PostgreSQLAuditLogRepository) Create(ctx context.Context, auditLog *domain.AuditLog) error {
	querier := database.GetTx(ctx, p.db)

	requestJSON, responseJSON, err := marshalPayloads(auditLog)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_logs (id, api_key_id, endpoint, method, status_code, response_time_ms,
			  client_ip, user_agent, request_payload, response_payload, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = querier.ExecContext(
		ctx,
		query,
		auditLog.ID,
		auditLog.APIKeyID,
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
func (p *PostgreSQLAuditLogRepository) List(ctx context.Context, offset, limit int) ([]*domain.AuditLog, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, api_key_id, endpoint, method, status_code, response_time_ms, client_ip,
			  user_agent, request_payload, response_payload, created_at
			  FROM audit_logs ORDER BY created_at DESC LIMIT $1 OFFSET $2`

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
		var apiKeyID uuid.NullUUID
		var clientIP, userAgent sql.NullString
		var requestJSON, responseJSON []byte

		err := rows.Scan(
			&auditLog.ID,
			&apiKeyID,
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

		if apiKeyID.Valid {
			auditLog.APIKeyID = &apiKeyID.UUID
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
func (p *PostgreSQLAuditLogRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	if dryRun {
		var count int64
		err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs WHERE created_at < $1`, olderThan).
			Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count audit logs")
		}
		return count, nil
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit logs")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows count")
	}

	return count, nil
}

func marshalPayloads(auditLog *domain.AuditLog) (requestJSON, responseJSON []byte, err error) {
	if auditLog.RequestPayload != nil {
		requestJSON, err = json.Marshal(auditLog.RequestPayload)
		if err != nil {
			return nil, nil, apperrors.Wrap(err, "failed to marshal audit log request payload")
		}
	}
	if auditLog.ResponsePayload != nil {
		responseJSON, err = json.Marshal(auditLog.ResponsePayload)
		if err != nil {
			return nil, nil, apperrors.Wrap(err, "failed to marshal audit log response payload")
		}
	}
	return requestJSON, responseJSON, nil
}

func unmarshalPayloads(auditLog *domain.AuditLog, requestJSON, responseJSON []byte) error {
	if len(requestJSON) > 0 {
		if err := json.Unmarshal(requestJSON, &auditLog.RequestPayload); err != nil {
			return apperrors.Wrap(err, "failed to unmarshal audit log request payload")
		}
	}
	if len(responseJSON) > 0 {
		if err := json.Unmarshal(responseJSON, &auditLog.ResponsePayload); err != nil {
			return apperrors.Wrap(err, "failed to unmarshal audit log response payload")
		}
	}
	return nil
}

// NewPostgreSQLAuditLogRepository creates a new PostgreSQL AuditLog repository.
func NewPostgreSQLAuditLogRepository(db *sql.DB) *PostgreSQLAuditLogRepository {
	return &PostgreSQLAuditLogRepository{db: db}
}
