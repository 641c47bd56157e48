// Package repository implements PostgreSQL persistence for compliance reports
// and the audit-window aggregation feeding the scoring rules.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	complianceDomain "github.com/allisson/tokenvault/internal/compliance/domain"
	"github.com/allisson/tokenvault/internal/database"
	apperrors "github.com/allisson/tokenvault/internal/errors"
)

const reportColumns = `id, ruleset, vault_id, period_start, period_end, status, progress,
	score, risk_band, violations, recommendations, record_count, artifact_path,
	artifact_hash, error_message, requested_by, started_at, completed_at,
	created_at, updated_at`

// PostgreSQLReportRepository handles compliance report persistence for PostgreSQL.
type PostgreSQLReportRepository struct {
	db *sql.DB
}

// NewPostgreSQLReportRepository creates a new PostgreSQL report repository instance.
func NewPostgreSQLReportRepository(db *sql.DB) *PostgreSQLReportRepository {
	return &PostgreSQLReportRepository{db: db}
}

// Create inserts a new report job.
func (p *PostgreSQLReportRepository) Create(ctx context.Context, report *complianceDomain.ComplianceReport) error {
	querier := database.GetTx(ctx, p.db)

	violationsJSON, err := json.Marshal(report.Violations)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal violations")
	}
	recommendationsJSON, err := json.Marshal(report.Recommendations)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal recommendations")
	}

	query := `INSERT INTO compliance_reports (` + reportColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	_, err = querier.ExecContext(
		ctx,
		query,
		report.ID,
		report.Ruleset,
		report.VaultID,
		report.PeriodStart,
		report.PeriodEnd,
		report.Status,
		report.Progress,
		report.Score,
		report.RiskBand,
		violationsJSON,
		recommendationsJSON,
		report.RecordCount,
		report.ArtifactPath,
		report.ArtifactHash,
		report.ErrorMessage,
		report.RequestedBy,
		report.StartedAt,
		report.CompletedAt,
		report.CreatedAt,
		report.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create compliance report")
	}
	return nil
}

// Get retrieves a report by ID.
func (p *PostgreSQLReportRepository) Get(ctx context.Context, reportID uuid.UUID) (*complianceDomain.ComplianceReport, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + reportColumns + ` FROM compliance_reports WHERE id = $1`

	return p.scanReport(querier.QueryRowContext(ctx, query, reportID))
}

// Update persists report progress and results.
func (p *PostgreSQLReportRepository) Update(ctx context.Context, report *complianceDomain.ComplianceReport) error {
	querier := database.GetTx(ctx, p.db)

	violationsJSON, err := json.Marshal(report.Violations)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal violations")
	}
	recommendationsJSON, err := json.Marshal(report.Recommendations)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal recommendations")
	}

	query := `UPDATE compliance_reports SET
				status = $2, progress = $3, score = $4, risk_band = $5, violations = $6,
				recommendations = $7, record_count = $8, artifact_path = $9,
				artifact_hash = $10, error_message = $11, started_at = $12,
				completed_at = $13, updated_at = $14
			  WHERE id = $1`

	result, err := querier.ExecContext(
		ctx,
		query,
		report.ID,
		report.Status,
		report.Progress,
		report.Score,
		report.RiskBand,
		violationsJSON,
		recommendationsJSON,
		report.RecordCount,
		report.ArtifactPath,
		report.ArtifactHash,
		report.ErrorMessage,
		report.StartedAt,
		report.CompletedAt,
		report.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update compliance report")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return complianceDomain.ErrReportNotFound
	}
	return nil
}

// List retrieves reports newest first with pagination.
func (p *PostgreSQLReportRepository) List(ctx context.Context, offset, limit int) ([]*complianceDomain.ComplianceReport, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + reportColumns + ` FROM compliance_reports
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list compliance reports")
	}
	defer rows.Close() //nolint:errcheck

	reports := make([]*complianceDomain.ComplianceReport, 0)
	for rows.Next() {
		report, err := p.scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating compliance reports")
	}
	return reports, nil
}

// GatherWindowStats aggregates the audit activity feeding the scoring rules.
// Off-hours matches the detector's window: 22:00 to 06:00 UTC.
func (p *PostgreSQLReportRepository) GatherWindowStats(
	ctx context.Context,
	from, to time.Time,
	vaultID *uuid.UUID,
) (complianceDomain.WindowStats, error) {
	querier := database.GetTx(ctx, p.db)

	var stats complianceDomain.WindowStats

	query := `SELECT COUNT(*),
					 COUNT(*) FILTER (WHERE result = 'failure'),
					 COUNT(*) FILTER (WHERE risk_level IN ('high', 'critical')),
					 COUNT(*) FILTER (WHERE EXTRACT(HOUR FROM created_at AT TIME ZONE 'UTC') >= 22
									  OR EXTRACT(HOUR FROM created_at AT TIME ZONE 'UTC') < 6)
			  FROM audit_logs
			  WHERE pci_relevant = true
			    AND created_at >= $1 AND created_at <= $2
			    AND ($3::uuid IS NULL OR vault_id = $3)`

	err := querier.QueryRowContext(ctx, query, from, to, vaultID).Scan(
		&stats.Total, &stats.Failures, &stats.HighRisk, &stats.OffHours)
	if err != nil {
		return stats, apperrors.Wrap(err, "failed to aggregate audit window")
	}

	burstQuery := `SELECT COALESCE(MAX(cnt), 0) FROM (
					 SELECT COUNT(*) AS cnt FROM audit_logs
					 WHERE operation = 'bulk_detokenize'
					   AND created_at >= $1 AND created_at <= $2
					   AND ($3::uuid IS NULL OR vault_id = $3)
					 GROUP BY user_id
				   ) bursts`
	if err := querier.QueryRowContext(ctx, burstQuery, from, to, vaultID).Scan(&stats.MaxBulkDetokenizePerUser); err != nil {
		return stats, apperrors.Wrap(err, "failed to aggregate bulk detokenize bursts")
	}

	dualRoleQuery := `SELECT COUNT(*) FROM (
						SELECT user_id FROM audit_logs
						WHERE operation IN ('tokenize', 'bulk_tokenize', 'detokenize', 'bulk_detokenize')
						  AND created_at >= $1 AND created_at <= $2
						  AND ($3::uuid IS NULL OR vault_id = $3)
						GROUP BY user_id
						HAVING COUNT(DISTINCT CASE WHEN operation IN ('tokenize', 'bulk_tokenize') THEN 1 ELSE 2 END) = 2
					  ) dual`
	if err := querier.QueryRowContext(ctx, dualRoleQuery, from, to, vaultID).Scan(&stats.DualRoleUsers); err != nil {
		return stats, apperrors.Wrap(err, "failed to aggregate dual-role users")
	}

	return stats, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func (p *PostgreSQLReportRepository) scanReport(row rowScanner) (*complianceDomain.ComplianceReport, error) {
	var report complianceDomain.ComplianceReport
	var ruleset, status string
	var riskBand *string
	var violationsJSON, recommendationsJSON []byte

	err := row.Scan(
		&report.ID,
		&ruleset,
		&report.VaultID,
		&report.PeriodStart,
		&report.PeriodEnd,
		&status,
		&report.Progress,
		&report.Score,
		&riskBand,
		&violationsJSON,
		&recommendationsJSON,
		&report.RecordCount,
		&report.ArtifactPath,
		&report.ArtifactHash,
		&report.ErrorMessage,
		&report.RequestedBy,
		&report.StartedAt,
		&report.CompletedAt,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, complianceDomain.ErrReportNotFound
		}
		return nil, apperrors.Wrap(err, "failed to scan compliance report")
	}

	report.Ruleset = complianceDomain.Ruleset(ruleset)
	report.Status = complianceDomain.ReportStatus(status)
	if riskBand != nil {
		band := complianceDomain.RiskBand(*riskBand)
		report.RiskBand = &band
	}

	if len(violationsJSON) > 0 {
		if err := json.Unmarshal(violationsJSON, &report.Violations); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal violations")
		}
	}
	if len(recommendationsJSON) > 0 {
		if err := json.Unmarshal(recommendationsJSON, &report.Recommendations); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal recommendations")
		}
	}

	return &report, nil
}
