// Package usecase implements the async audit pipeline: classify, enqueue,
// persist, detect, archive. Callers never block on audit persistence.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/tokenvault/internal/audit/domain"
	queueDomain "github.com/allisson/tokenvault/internal/queue/domain"
)

// JobTypeAuditLog names the queue job carrying a serialized audit record.
const JobTypeAuditLog = "audit_log"

// AuditLogRepository defines the interface for audit log persistence.
type AuditLogRepository interface {
	Create(ctx context.Context, log *auditDomain.AuditLog) error
	Get(ctx context.Context, logID uuid.UUID) (*auditDomain.AuditLog, error)
	List(ctx context.Context, filter auditDomain.ListFilter) ([]*auditDomain.AuditLog, error)
	CountFailuresByIPSince(ctx context.Context, ipAddress string, since time.Time) (int64, error)
	CountOperationsByIPSince(ctx context.Context, ipAddress string, since time.Time) (int64, error)
	HasActivityFromIPBefore(ctx context.Context, ipAddress string, before time.Time) (bool, error)
	Summary(ctx context.Context, from, to time.Time) (*auditDomain.Summary, error)
	MarkProcessed(ctx context.Context, logID uuid.UUID, processedAt time.Time) error
	CountUnarchivedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	ArchiveBefore(ctx context.Context, cutoff, archivedAt time.Time) (int64, error)
}

// JobEnqueuer enqueues durable jobs.
type JobEnqueuer interface {
	Create(ctx context.Context, job *queueDomain.Job) error
}

// Detector inspects a persisted audit record for suspicious patterns.
// Implementations raise alerts as a side effect.
type Detector interface {
	Inspect(ctx context.Context, log *auditDomain.AuditLog) error
}

// AuditUseCase defines the interface for the audit pipeline.
type AuditUseCase interface {
	// LogEvent classifies an event, assigns its audit identity, and enqueues
	// it for asynchronous persistence. Returns the audit record ID.
	LogEvent(ctx context.Context, event *auditDomain.Event) (uuid.UUID, error)

	// ProcessAuditLog persists a classified record, runs pattern detection,
	// and marks the record processed. Worker-side half of the pipeline.
	ProcessAuditLog(ctx context.Context, log *auditDomain.AuditLog) error

	// Get retrieves an audit record by ID.
	Get(ctx context.Context, logID uuid.UUID) (*auditDomain.AuditLog, error)

	// List retrieves audit records matching the filter, newest first.
	List(ctx context.Context, filter auditDomain.ListFilter) ([]*auditDomain.AuditLog, error)

	// GetSummary aggregates audit activity over a window.
	GetSummary(ctx context.Context, from, to time.Time) (*auditDomain.Summary, error)

	// ArchiveOldLogs archives records older than the retention window when the
	// unarchived backlog exceeds the configured threshold. Returns the number
	// of records archived.
	ArchiveOldLogs(ctx context.Context) (int64, error)
}
