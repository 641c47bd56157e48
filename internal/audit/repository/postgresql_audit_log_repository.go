// Package repository implements PostgreSQL persistence for audit logs. The
// table is append-only: business fields never change after insert, only
// processing and archival bookkeeping.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/tokenvault/internal/audit/domain"
	"github.com/allisson/tokenvault/internal/database"
	apperrors "github.com/allisson/tokenvault/internal/errors"
)

const auditColumns = `id, vault_id, token_id, operation, result, error_message,
	user_id, api_key_id, session_id, ip_address, user_agent, request_id,
	request_metadata, response_metadata, processing_time_ms, risk_level,
	pci_relevant, compliance_reference, created_at, processed_at, archived_at`

// PostgreSQLAuditLogRepository handles audit log persistence for PostgreSQL.
type PostgreSQLAuditLogRepository struct {
	db *sql.DB
}

// NewPostgreSQLAuditLogRepository creates a new PostgreSQL audit log repository instance.
func NewPostgreSQLAuditLogRepository(db *sql.DB) *PostgreSQLAuditLogRepository {
	return &PostgreSQLAuditLogRepository{db: db}
}

// Create inserts an audit record.
func (p *PostgreSQLAuditLogRepository) Create(ctx context.Context, log *auditDomain.AuditLog) error {
	querier := database.GetTx(ctx, p.db)

	requestJSON, err := marshalMetadata(log.RequestMetadata)
	if err != nil {
		return err
	}
	responseJSON, err := marshalMetadata(log.ResponseMetadata)
	if err != nil {
		return err
	}

	// ON CONFLICT DO NOTHING keeps replayed pipeline jobs idempotent.
	query := `INSERT INTO audit_logs (` + auditColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
			  ON CONFLICT (id) DO NOTHING`

	_, err = querier.ExecContext(
		ctx,
		query,
		log.ID,
		log.VaultID,
		log.TokenID,
		log.Operation,
		log.Result,
		log.ErrorMessage,
		log.UserID,
		log.APIKeyID,
		log.SessionID,
		log.IPAddress,
		log.UserAgent,
		log.RequestID,
		requestJSON,
		responseJSON,
		log.ProcessingTimeMs,
		log.RiskLevel,
		log.PCIRelevant,
		log.ComplianceReference,
		log.CreatedAt,
		log.ProcessedAt,
		log.ArchivedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit log")
	}
	return nil
}

// Get retrieves an audit record by ID.
func (p *PostgreSQLAuditLogRepository) Get(ctx context.Context, logID uuid.UUID) (*auditDomain.AuditLog, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + auditColumns + ` FROM audit_logs WHERE id = $1`

	return p.scanAuditLog(querier.QueryRowContext(ctx, query, logID))
}

// List retrieves audit records matching the filter, newest first.
func (p *PostgreSQLAuditLogRepository) List(ctx context.Context, filter auditDomain.ListFilter) ([]*auditDomain.AuditLog, error) {
	querier := database.GetTx(ctx, p.db)

	var builder strings.Builder
	builder.WriteString(`SELECT ` + auditColumns + ` FROM audit_logs WHERE 1=1`)

	var args []any
	if filter.VaultID != nil {
		args = append(args, *filter.VaultID)
		builder.WriteString(` AND vault_id = $` + strconv.Itoa(len(args)))
	}
	if filter.Operation != nil {
		args = append(args, *filter.Operation)
		builder.WriteString(` AND operation = $` + strconv.Itoa(len(args)))
	}
	if filter.Result != nil {
		args = append(args, *filter.Result)
		builder.WriteString(` AND result = $` + strconv.Itoa(len(args)))
	}
	if filter.RiskLevel != nil {
		args = append(args, *filter.RiskLevel)
		builder.WriteString(` AND risk_level = $` + strconv.Itoa(len(args)))
	}
	if filter.PCIOnly {
		builder.WriteString(` AND pci_relevant = true`)
	}
	if filter.IPAddress != nil {
		args = append(args, *filter.IPAddress)
		builder.WriteString(` AND ip_address = $` + strconv.Itoa(len(args)))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		builder.WriteString(` AND user_id = $` + strconv.Itoa(len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		builder.WriteString(` AND created_at >= $` + strconv.Itoa(len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		builder.WriteString(` AND created_at <= $` + strconv.Itoa(len(args)))
	}

	args = append(args, filter.Limit)
	builder.WriteString(` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)))
	args = append(args, filter.Offset)
	builder.WriteString(` OFFSET $` + strconv.Itoa(len(args)))

	rows, err := querier.QueryContext(ctx, builder.String(), args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}
	defer rows.Close() //nolint:errcheck

	logs := make([]*auditDomain.AuditLog, 0)
	for rows.Next() {
		log, err := p.scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating audit logs")
	}
	return logs, nil
}

// CountFailuresByIPSince counts failed operations recorded for an IP within
// the window. Feeds risk classification and the failed-access detector rule.
func (p *PostgreSQLAuditLogRepository) CountFailuresByIPSince(ctx context.Context, ipAddress string, since time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM audit_logs
			  WHERE ip_address = $1 AND result = 'failure' AND created_at >= $2`

	var count int64
	if err := querier.QueryRowContext(ctx, query, ipAddress, since).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count failures by ip")
	}
	return count, nil
}

// CountOperationsByIPSince counts all operations recorded for an IP within
// the window. Feeds the unusual-volume detector rule.
func (p *PostgreSQLAuditLogRepository) CountOperationsByIPSince(ctx context.Context, ipAddress string, since time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM audit_logs WHERE ip_address = $1 AND created_at >= $2`

	var count int64
	if err := querier.QueryRowContext(ctx, query, ipAddress, since).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count operations by ip")
	}
	return count, nil
}

// HasActivityFromIPBefore reports whether the IP has any recorded activity
// before the given time. Feeds the new-source-IP detector rule.
func (p *PostgreSQLAuditLogRepository) HasActivityFromIPBefore(ctx context.Context, ipAddress string, before time.Time) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT EXISTS (
				SELECT 1 FROM audit_logs
				WHERE ip_address = $1 AND created_at < $2
			  )`

	var exists bool
	if err := querier.QueryRowContext(ctx, query, ipAddress, before).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check prior activity for ip")
	}
	return exists, nil
}

// Summary aggregates audit activity between two instants.
func (p *PostgreSQLAuditLogRepository) Summary(ctx context.Context, from, to time.Time) (*auditDomain.Summary, error) {
	querier := database.GetTx(ctx, p.db)

	summary := &auditDomain.Summary{
		From:        from,
		To:          to,
		ByOperation: make(map[string]int64),
		ByResult:    make(map[string]int64),
		ByRiskLevel: make(map[string]int64),
	}

	query := `SELECT COUNT(*),
					 COUNT(*) FILTER (WHERE pci_relevant),
					 COALESCE(AVG(processing_time_ms), 0)
			  FROM audit_logs WHERE created_at >= $1 AND created_at <= $2`
	err := querier.QueryRowContext(ctx, query, from, to).Scan(
		&summary.Total, &summary.PCIRelevantCount, &summary.AvgProcessingTimeMs)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to summarize audit logs")
	}

	groupQuery := `SELECT operation, result, risk_level, COUNT(*)
				   FROM audit_logs WHERE created_at >= $1 AND created_at <= $2
				   GROUP BY operation, result, risk_level`
	rows, err := querier.QueryContext(ctx, groupQuery, from, to)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to group audit logs")
	}
	defer rows.Close() //nolint:errcheck

	for rows.Next() {
		var operation, result, riskLevel string
		var count int64
		if err := rows.Scan(&operation, &result, &riskLevel, &count); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit group")
		}
		summary.ByOperation[operation] += count
		summary.ByResult[result] += count
		summary.ByRiskLevel[riskLevel] += count
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating audit groups")
	}
	return summary, nil
}

// MarkProcessed stamps the pipeline completion time.
func (p *PostgreSQLAuditLogRepository) MarkProcessed(ctx context.Context, logID uuid.UUID, processedAt time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE audit_logs SET processed_at = $2 WHERE id = $1`

	if _, err := querier.ExecContext(ctx, query, logID, processedAt); err != nil {
		return apperrors.Wrap(err, "failed to mark audit log processed")
	}
	return nil
}

// CountUnarchivedBefore counts archivable records: not yet archived and older
// than the cutoff. Fresh traffic never trips the archival gate.
func (p *PostgreSQLAuditLogRepository) CountUnarchivedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM audit_logs WHERE archived_at IS NULL AND created_at < $1`

	var count int64
	if err := querier.QueryRowContext(ctx, query, cutoff).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count unarchived audit logs")
	}
	return count, nil
}

// ArchiveBefore stamps archived_at on unarchived records older than the cutoff
// and returns how many were archived.
func (p *PostgreSQLAuditLogRepository) ArchiveBefore(ctx context.Context, cutoff, archivedAt time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE audit_logs SET archived_at = $2
			  WHERE archived_at IS NULL AND created_at < $1`

	result, err := querier.ExecContext(ctx, query, cutoff, archivedAt)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to archive audit logs")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rowsAffected, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func (p *PostgreSQLAuditLogRepository) scanAuditLog(row rowScanner) (*auditDomain.AuditLog, error) {
	var log auditDomain.AuditLog
	var result, riskLevel string
	var requestJSON, responseJSON []byte

	err := row.Scan(
		&log.ID,
		&log.VaultID,
		&log.TokenID,
		&log.Operation,
		&result,
		&log.ErrorMessage,
		&log.UserID,
		&log.APIKeyID,
		&log.SessionID,
		&log.IPAddress,
		&log.UserAgent,
		&log.RequestID,
		&requestJSON,
		&responseJSON,
		&log.ProcessingTimeMs,
		&riskLevel,
		&log.PCIRelevant,
		&log.ComplianceReference,
		&log.CreatedAt,
		&log.ProcessedAt,
		&log.ArchivedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "audit log not found")
		}
		return nil, apperrors.Wrap(err, "failed to scan audit log")
	}

	log.Result = auditDomain.Result(result)
	log.RiskLevel = auditDomain.RiskLevel(riskLevel)

	if len(requestJSON) > 0 {
		if err := json.Unmarshal(requestJSON, &log.RequestMetadata); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal request metadata")
		}
	}
	if len(responseJSON) > 0 {
		if err := json.Unmarshal(responseJSON, &log.ResponseMetadata); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal response metadata")
		}
	}

	return &log, nil
}

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		return nil, nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal audit metadata")
	}
	return data, nil
}
