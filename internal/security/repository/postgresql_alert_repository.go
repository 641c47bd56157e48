// Package repository implements PostgreSQL persistence for security alerts.
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

	"github.com/allisson/tokenvault/internal/database"
	apperrors "github.com/allisson/tokenvault/internal/errors"
	securityDomain "github.com/allisson/tokenvault/internal/security/domain"
)

const alertColumns = `id, alert_type, severity, status, vault_id, user_id, ip_address,
	description, details, triggering_audit_log_id, occurrence_count, first_seen_at,
	last_seen_at, acknowledged_by, acknowledged_at, resolved_by, resolved_at,
	resolution_note, auto_resolved, created_at, updated_at`

// PostgreSQLAlertRepository handles security alert persistence for PostgreSQL.
type PostgreSQLAlertRepository struct {
	db *sql.DB
}

// NewPostgreSQLAlertRepository creates a new PostgreSQL alert repository instance.
func NewPostgreSQLAlertRepository(db *sql.DB) *PostgreSQLAlertRepository {
	return &PostgreSQLAlertRepository{db: db}
}

// Create inserts a new alert.
func (p *PostgreSQLAlertRepository) Create(ctx context.Context, alert *securityDomain.SecurityAlert) error {
	querier := database.GetTx(ctx, p.db)

	detailsJSON, err := marshalDetails(alert.Details)
	if err != nil {
		return err
	}

	query := `INSERT INTO security_alerts (` + alertColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

	_, err = querier.ExecContext(
		ctx,
		query,
		alert.ID,
		alert.AlertType,
		alert.Severity,
		alert.Status,
		alert.VaultID,
		alert.UserID,
		alert.IPAddress,
		alert.Description,
		detailsJSON,
		alert.TriggeringAuditLogID,
		alert.OccurrenceCount,
		alert.FirstSeenAt,
		alert.LastSeenAt,
		alert.AcknowledgedBy,
		alert.AcknowledgedAt,
		alert.ResolvedBy,
		alert.ResolvedAt,
		alert.ResolutionNote,
		alert.AutoResolved,
		alert.CreatedAt,
		alert.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create security alert")
	}
	return nil
}

// Get retrieves an alert by ID.
func (p *PostgreSQLAlertRepository) Get(ctx context.Context, alertID uuid.UUID) (*securityDomain.SecurityAlert, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + alertColumns + ` FROM security_alerts WHERE id = $1`

	return p.scanAlert(querier.QueryRowContext(ctx, query, alertID))
}

// GetOpenForMerge finds an open alert of the same type and source created
// within the merge window. Matching on created_at keeps the window anchored
// to the alert's origin; an alert that keeps merging still ages out. The row
// lock serializes concurrent detections on the same source so occurrence
// counts never race.
func (p *PostgreSQLAlertRepository) GetOpenForMerge(
	ctx context.Context,
	alertType securityDomain.AlertType,
	vaultID *uuid.UUID,
	ipAddress string,
	since time.Time,
) (*securityDomain.SecurityAlert, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + alertColumns + ` FROM security_alerts
			  WHERE alert_type = $1
			    AND ip_address = $2
			    AND vault_id IS NOT DISTINCT FROM $3
			    AND status IN ('open', 'acknowledged')
			    AND created_at >= $4
			  ORDER BY last_seen_at DESC
			  LIMIT 1
			  FOR UPDATE`

	return p.scanAlert(querier.QueryRowContext(ctx, query, alertType, ipAddress, vaultID, since))
}

// Update persists alert lifecycle changes.
func (p *PostgreSQLAlertRepository) Update(ctx context.Context, alert *securityDomain.SecurityAlert) error {
	querier := database.GetTx(ctx, p.db)

	detailsJSON, err := marshalDetails(alert.Details)
	if err != nil {
		return err
	}

	query := `UPDATE security_alerts SET
				severity = $2, status = $3, description = $4, details = $5,
				occurrence_count = $6, last_seen_at = $7, acknowledged_by = $8,
				acknowledged_at = $9, resolved_by = $10, resolved_at = $11,
				resolution_note = $12, auto_resolved = $13, updated_at = $14
			  WHERE id = $1`

	result, err := querier.ExecContext(
		ctx,
		query,
		alert.ID,
		alert.Severity,
		alert.Status,
		alert.Description,
		detailsJSON,
		alert.OccurrenceCount,
		alert.LastSeenAt,
		alert.AcknowledgedBy,
		alert.AcknowledgedAt,
		alert.ResolvedBy,
		alert.ResolvedAt,
		alert.ResolutionNote,
		alert.AutoResolved,
		alert.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update security alert")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return securityDomain.ErrAlertNotFound
	}
	return nil
}

// List retrieves alerts matching the filter, newest activity first.
func (p *PostgreSQLAlertRepository) List(ctx context.Context, filter securityDomain.ListFilter) ([]*securityDomain.SecurityAlert, error) {
	querier := database.GetTx(ctx, p.db)

	var builder strings.Builder
	builder.WriteString(`SELECT ` + alertColumns + ` FROM security_alerts WHERE 1=1`)

	var args []any
	if filter.Status != nil {
		args = append(args, *filter.Status)
		builder.WriteString(` AND status = $` + strconv.Itoa(len(args)))
	}
	if filter.Severity != nil {
		args = append(args, *filter.Severity)
		builder.WriteString(` AND severity = $` + strconv.Itoa(len(args)))
	}
	if filter.AlertType != nil {
		args = append(args, *filter.AlertType)
		builder.WriteString(` AND alert_type = $` + strconv.Itoa(len(args)))
	}
	if filter.VaultID != nil {
		args = append(args, *filter.VaultID)
		builder.WriteString(` AND vault_id = $` + strconv.Itoa(len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		builder.WriteString(` AND last_seen_at >= $` + strconv.Itoa(len(args)))
	}

	args = append(args, filter.Limit)
	builder.WriteString(` ORDER BY last_seen_at DESC LIMIT $` + strconv.Itoa(len(args)))
	args = append(args, filter.Offset)
	builder.WriteString(` OFFSET $` + strconv.Itoa(len(args)))

	rows, err := querier.QueryContext(ctx, builder.String(), args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list security alerts")
	}
	defer rows.Close() //nolint:errcheck

	alerts := make([]*securityDomain.SecurityAlert, 0)
	for rows.Next() {
		alert, err := p.scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating security alerts")
	}
	return alerts, nil
}

// ListStale retrieves open or acknowledged alerts with no activity since the
// cutoff, for the auto-resolve sweep.
func (p *PostgreSQLAlertRepository) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*securityDomain.SecurityAlert, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + alertColumns + ` FROM security_alerts
			  WHERE status IN ('open', 'acknowledged') AND last_seen_at < $1
			  ORDER BY last_seen_at ASC
			  LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list stale alerts")
	}
	defer rows.Close() //nolint:errcheck

	alerts := make([]*securityDomain.SecurityAlert, 0)
	for rows.Next() {
		alert, err := p.scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating stale alerts")
	}
	return alerts, nil
}

// CountBySeverity counts alerts created since the given time grouped by
// severity. Feeds compliance scoring.
func (p *PostgreSQLAlertRepository) CountBySeverity(ctx context.Context, since time.Time) (map[securityDomain.Severity]int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT severity, COUNT(*) FROM security_alerts
			  WHERE created_at >= $1 GROUP BY severity`

	rows, err := querier.QueryContext(ctx, query, since)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to count alerts by severity")
	}
	defer rows.Close() //nolint:errcheck

	counts := make(map[securityDomain.Severity]int64)
	for rows.Next() {
		var severity string
		var count int64
		if err := rows.Scan(&severity, &count); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan severity count")
		}
		counts[securityDomain.Severity(severity)] = count
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating severity counts")
	}
	return counts, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func (p *PostgreSQLAlertRepository) scanAlert(row rowScanner) (*securityDomain.SecurityAlert, error) {
	var alert securityDomain.SecurityAlert
	var alertType, severity, status string
	var detailsJSON []byte

	err := row.Scan(
		&alert.ID,
		&alertType,
		&severity,
		&status,
		&alert.VaultID,
		&alert.UserID,
		&alert.IPAddress,
		&alert.Description,
		&detailsJSON,
		&alert.TriggeringAuditLogID,
		&alert.OccurrenceCount,
		&alert.FirstSeenAt,
		&alert.LastSeenAt,
		&alert.AcknowledgedBy,
		&alert.AcknowledgedAt,
		&alert.ResolvedBy,
		&alert.ResolvedAt,
		&alert.ResolutionNote,
		&alert.AutoResolved,
		&alert.CreatedAt,
		&alert.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, securityDomain.ErrAlertNotFound
		}
		return nil, apperrors.Wrap(err, "failed to scan security alert")
	}

	alert.AlertType = securityDomain.AlertType(alertType)
	alert.Severity = securityDomain.Severity(severity)
	alert.Status = securityDomain.AlertStatus(status)

	if len(detailsJSON) > 0 {
		if err := json.Unmarshal(detailsJSON, &alert.Details); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal alert details")
		}
	}

	return &alert, nil
}

func marshalDetails(details map[string]any) ([]byte, error) {
	if details == nil {
		return nil, nil
	}
	data, err := json.Marshal(details)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal alert details")
	}
	return data, nil
}
