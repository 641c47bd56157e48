package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/tokenvault/internal/audit/domain"
	apperrors "github.com/allisson/tokenvault/internal/errors"
	"github.com/allisson/tokenvault/internal/metrics"
	queueDomain "github.com/allisson/tokenvault/internal/queue/domain"
)

// Config holds audit pipeline configuration.
type Config struct {
	// ArchiveThreshold is the unarchived backlog size above which archival runs.
	ArchiveThreshold int64
	// ArchiveAfterDays is the age past which records are archived.
	ArchiveAfterDays int
}

// auditUseCase implements AuditUseCase.
type auditUseCase struct {
	config    Config
	auditRepo AuditLogRepository
	enqueuer  JobEnqueuer
	detector  Detector
	metrics   metrics.BusinessMetrics
	logger    *slog.Logger
}

// NewAuditUseCase creates a new AuditUseCase with injected dependencies.
func NewAuditUseCase(
	config Config,
	auditRepo AuditLogRepository,
	enqueuer JobEnqueuer,
	detector Detector,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) AuditUseCase {
	return &auditUseCase{
		config:    config,
		auditRepo: auditRepo,
		enqueuer:  enqueuer,
		detector:  detector,
		metrics:   businessMetrics,
		logger:    logger,
	}
}

// LogEvent classifies the event and enqueues the resulting record. The record
// gets its identity here so callers hold the audit ID before persistence
// happens. Persistence itself runs on the worker.
func (a *auditUseCase) LogEvent(ctx context.Context, event *auditDomain.Event) (uuid.UUID, error) {
	now := time.Now().UTC()
	logID := uuid.Must(uuid.NewV7())

	recentFailures := a.recentIPFailures(ctx, event.Context.IPAddress, now)

	riskLevel := auditDomain.ComputeRiskLevel(event, recentFailures)
	pciRelevant := auditDomain.IsPCIRelevant(event.Operation)

	log := &auditDomain.AuditLog{
		ID:                  logID,
		VaultID:             event.VaultID,
		TokenID:             event.TokenID,
		Operation:           event.Operation,
		Result:              event.Result,
		UserID:              defaultString(event.Context.UserID, "anonymous"),
		APIKeyID:            event.Context.APIKeyID,
		SessionID:           event.Context.SessionID,
		IPAddress:           defaultString(event.Context.IPAddress, "unknown"),
		UserAgent:           event.Context.UserAgent,
		RequestID:           event.Context.RequestID,
		RequestMetadata:     event.RequestMetadata,
		ResponseMetadata:    event.ResponseMetadata,
		ProcessingTimeMs:    event.ProcessingTime.Milliseconds(),
		RiskLevel:           riskLevel,
		PCIRelevant:         pciRelevant,
		ComplianceReference: auditDomain.NewComplianceReference(logID, now),
		CreatedAt:           now,
	}
	if event.ErrorMessage != "" {
		log.ErrorMessage = &event.ErrorMessage
	}

	payload, err := json.Marshal(log)
	if err != nil {
		return uuid.Nil, apperrors.Wrap(err, "failed to marshal audit log")
	}

	queue, priority := auditDomain.SelectQueue(riskLevel, event.Result, pciRelevant)
	job := queueDomain.NewJob(queue, JobTypeAuditLog, priority, payload)

	if err := a.enqueuer.Create(ctx, job); err != nil {
		return uuid.Nil, apperrors.Wrap(err, "failed to enqueue audit log")
	}

	return logID, nil
}

// recentIPFailures feeds risk classification. Lookup failures degrade to zero
// rather than blocking the event.
func (a *auditUseCase) recentIPFailures(ctx context.Context, ipAddress string, now time.Time) int64 {
	if ipAddress == "" {
		return 0
	}
	count, err := a.auditRepo.CountFailuresByIPSince(ctx, ipAddress, now.Add(-time.Hour))
	if err != nil {
		a.logger.Warn("failed to count recent ip failures", slog.Any("error", err))
		return 0
	}
	return count
}

// ProcessAuditLog is the worker-side half of the pipeline: persist, detect,
// bump the rolling operation counters, mark processed, and trim the archive
// backlog when it grows past the threshold. Detection failures are logged but
// do not fail the job; the record itself is already durable at that point.
func (a *auditUseCase) ProcessAuditLog(ctx context.Context, log *auditDomain.AuditLog) error {
	if err := a.auditRepo.Create(ctx, log); err != nil {
		return err
	}

	a.metrics.RecordOperation(ctx, "audit", log.Operation, string(log.Result))
	a.metrics.RecordOperation(ctx, "audit_risk", string(log.RiskLevel), string(log.Result))

	if a.detector != nil {
		if err := a.detector.Inspect(ctx, log); err != nil {
			a.logger.Error("pattern detection failed",
				slog.String("audit_log_id", log.ID.String()),
				slog.Any("error", err),
			)
		}
	}

	if err := a.auditRepo.MarkProcessed(ctx, log.ID, time.Now().UTC()); err != nil {
		return err
	}

	if archived, err := a.ArchiveOldLogs(ctx); err != nil {
		a.logger.Warn("audit archival failed", slog.Any("error", err))
	} else if archived > 0 {
		a.logger.Info("archived audit logs", slog.Int64("count", archived))
	}

	return nil
}

// Get retrieves an audit record by ID.
func (a *auditUseCase) Get(ctx context.Context, logID uuid.UUID) (*auditDomain.AuditLog, error) {
	return a.auditRepo.Get(ctx, logID)
}

// List retrieves audit records matching the filter.
func (a *auditUseCase) List(ctx context.Context, filter auditDomain.ListFilter) ([]*auditDomain.AuditLog, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return a.auditRepo.List(ctx, filter)
}

// GetSummary aggregates audit activity over a window.
func (a *auditUseCase) GetSummary(ctx context.Context, from, to time.Time) (*auditDomain.Summary, error) {
	return a.auditRepo.Summary(ctx, from, to)
}

// ArchiveOldLogs archives aged records once the unarchived backlog older than
// the retention window exceeds the threshold. Recent records never count
// toward the gate; they are not archivable yet.
func (a *auditUseCase) ArchiveOldLogs(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, -a.config.ArchiveAfterDays)

	count, err := a.auditRepo.CountUnarchivedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if count <= a.config.ArchiveThreshold {
		return 0, nil
	}

	return a.auditRepo.ArchiveBefore(ctx, cutoff, now)
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
