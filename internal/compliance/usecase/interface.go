// Package usecase implements compliance report generation: synchronous window
// scoring and the queued batch report job with progress tracking and artifact
// storage.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	complianceDomain "github.com/allisson/tokenvault/internal/compliance/domain"
	queueDomain "github.com/allisson/tokenvault/internal/queue/domain"
)

// JobTypeComplianceReport names the queue job generating a report.
const JobTypeComplianceReport = "compliance_report"

// QueueReports is the queue compliance report jobs run on.
const QueueReports = "reports"

// ReportRepository defines the interface for report persistence and audit
// window aggregation.
type ReportRepository interface {
	Create(ctx context.Context, report *complianceDomain.ComplianceReport) error
	Get(ctx context.Context, reportID uuid.UUID) (*complianceDomain.ComplianceReport, error)
	Update(ctx context.Context, report *complianceDomain.ComplianceReport) error
	List(ctx context.Context, offset, limit int) ([]*complianceDomain.ComplianceReport, error)
	GatherWindowStats(ctx context.Context, from, to time.Time, vaultID *uuid.UUID) (complianceDomain.WindowStats, error)
}

// JobEnqueuer enqueues durable jobs.
type JobEnqueuer interface {
	Create(ctx context.Context, job *queueDomain.Job) error
}

// ArtifactStore persists report artifacts.
type ArtifactStore interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
	Hash(ctx context.Context, key string) (string, error)
}

// Notifier delivers report lifecycle notifications.
type Notifier interface {
	Notify(ctx context.Context, channel string, payload map[string]any) error
}

// GenerateReportInput holds the fields for requesting a report.
type GenerateReportInput struct {
	Ruleset     complianceDomain.Ruleset
	VaultID     *uuid.UUID
	PeriodStart time.Time
	PeriodEnd   time.Time
	RequestedBy string
}

// ComplianceData is the synchronous scoring result without persistence.
type ComplianceData struct {
	Ruleset     complianceDomain.Ruleset
	PeriodStart time.Time
	PeriodEnd   time.Time
	RecordCount int64
	Result      *complianceDomain.ScoringResult
}

// ComplianceUseCase defines the interface for compliance operations.
type ComplianceUseCase interface {
	// GenerateReport creates a pending report and enqueues the batch job.
	GenerateReport(ctx context.Context, input *GenerateReportInput) (*complianceDomain.ComplianceReport, error)

	// GenerateData scores a window synchronously without persisting a report.
	GenerateData(ctx context.Context, input *GenerateReportInput) (*ComplianceData, error)

	// ProcessReport runs the batch job: gather, score, store the artifact,
	// finalize. Worker-side; never leaves the report in progress.
	ProcessReport(ctx context.Context, reportID uuid.UUID) error

	// Get retrieves a report by ID.
	Get(ctx context.Context, reportID uuid.UUID) (*complianceDomain.ComplianceReport, error)

	// List retrieves reports newest first with pagination.
	List(ctx context.Context, offset, limit int) ([]*complianceDomain.ComplianceReport, error)
}
