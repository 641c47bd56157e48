package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	complianceDomain "github.com/allisson/tokenvault/internal/compliance/domain"
	apperrors "github.com/allisson/tokenvault/internal/errors"
	"github.com/allisson/tokenvault/internal/notification"
	queueDomain "github.com/allisson/tokenvault/internal/queue/domain"
)

// complianceUseCase implements ComplianceUseCase.
type complianceUseCase struct {
	reportRepo ReportRepository
	enqueuer   JobEnqueuer
	artifacts  ArtifactStore
	notifier   Notifier
	logger     *slog.Logger
}

// NewComplianceUseCase creates a new ComplianceUseCase with injected dependencies.
func NewComplianceUseCase(
	reportRepo ReportRepository,
	enqueuer JobEnqueuer,
	artifacts ArtifactStore,
	notifier Notifier,
	logger *slog.Logger,
) ComplianceUseCase {
	return &complianceUseCase{
		reportRepo: reportRepo,
		enqueuer:   enqueuer,
		artifacts:  artifacts,
		notifier:   notifier,
		logger:     logger,
	}
}

// GenerateReport creates a pending report and enqueues the batch job.
func (c *complianceUseCase) GenerateReport(ctx context.Context, input *GenerateReportInput) (*complianceDomain.ComplianceReport, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	report := complianceDomain.NewComplianceReport(
		input.Ruleset, input.VaultID, input.PeriodStart, input.PeriodEnd, input.RequestedBy)

	if err := c.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]string{"report_id": report.ID.String()})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal report job payload")
	}

	job := queueDomain.NewJob(QueueReports, JobTypeComplianceReport, queueDomain.PriorityLow, payload)
	if err := c.enqueuer.Create(ctx, job); err != nil {
		return nil, apperrors.Wrap(err, "failed to enqueue report job")
	}

	return report, nil
}

// GenerateData scores a window synchronously without persisting a report.
func (c *complianceUseCase) GenerateData(ctx context.Context, input *GenerateReportInput) (*ComplianceData, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	stats, err := c.reportRepo.GatherWindowStats(ctx, input.PeriodStart, input.PeriodEnd, input.VaultID)
	if err != nil {
		return nil, err
	}

	return &ComplianceData{
		Ruleset:     input.Ruleset,
		PeriodStart: input.PeriodStart,
		PeriodEnd:   input.PeriodEnd,
		RecordCount: stats.Total,
		Result:      complianceDomain.Score(input.Ruleset, stats),
	}, nil
}

// ProcessReport runs the batch job. Any failure marks the report failed with
// the error recorded; it is never left in progress.
func (c *complianceUseCase) ProcessReport(ctx context.Context, reportID uuid.UUID) error {
	report, err := c.reportRepo.Get(ctx, reportID)
	if err != nil {
		return err
	}
	if report.Status == complianceDomain.ReportCompleted || report.Status == complianceDomain.ReportFailed {
		return nil
	}

	now := time.Now().UTC()
	report.Start(now)
	if err := c.reportRepo.Update(ctx, report); err != nil {
		return err
	}

	if err := c.generate(ctx, report); err != nil {
		report.Fail(err.Error(), time.Now().UTC())
		if updateErr := c.reportRepo.Update(ctx, report); updateErr != nil {
			c.logger.Error("failed to mark report failed",
				slog.String("report_id", report.ID.String()),
				slog.Any("error", updateErr),
			)
		}
		c.notifyReport(ctx, report, "report-failed")
		return err
	}

	if err := c.reportRepo.Update(ctx, report); err != nil {
		return err
	}
	c.notifyReport(ctx, report, "report-ready")
	return nil
}

func (c *complianceUseCase) generate(ctx context.Context, report *complianceDomain.ComplianceReport) error {
	stats, err := c.reportRepo.GatherWindowStats(ctx, report.PeriodStart, report.PeriodEnd, report.VaultID)
	if err != nil {
		return err
	}
	c.updateProgress(ctx, report, 40)

	result := complianceDomain.Score(report.Ruleset, stats)
	c.updateProgress(ctx, report, 70)

	artifact, err := json.MarshalIndent(map[string]any{
		"report_id":       report.ID.String(),
		"ruleset":         string(report.Ruleset),
		"period_start":    report.PeriodStart,
		"period_end":      report.PeriodEnd,
		"record_count":    stats.Total,
		"score":           result.Score,
		"risk_band":       string(result.Band),
		"violations":      result.Violations,
		"recommendations": result.Recommendations,
		"generated_at":    time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return apperrors.Wrap(err, "failed to render report artifact")
	}

	key := fmt.Sprintf("compliance/%s/%s.json", report.Ruleset, report.ID)
	path, err := c.artifacts.Write(ctx, key, artifact)
	if err != nil {
		return err
	}
	hash, err := c.artifacts.Hash(ctx, path)
	if err != nil {
		return err
	}
	c.updateProgress(ctx, report, 90)

	report.Complete(result, stats.Total, path, hash, time.Now().UTC())
	return nil
}

// updateProgress persists intermediate progress. Failures only log; progress
// is advisory and must not fail the job.
func (c *complianceUseCase) updateProgress(ctx context.Context, report *complianceDomain.ComplianceReport, progress int) {
	report.Progress = progress
	report.UpdatedAt = time.Now().UTC()
	if err := c.reportRepo.Update(ctx, report); err != nil {
		c.logger.Warn("failed to update report progress",
			slog.String("report_id", report.ID.String()),
			slog.Any("error", err),
		)
	}
}

func (c *complianceUseCase) notifyReport(ctx context.Context, report *complianceDomain.ComplianceReport, event string) {
	if c.notifier == nil {
		return
	}
	payload := map[string]any{
		"event":     event,
		"report_id": report.ID.String(),
		"ruleset":   string(report.Ruleset),
		"status":    string(report.Status),
	}
	if report.Score != nil {
		payload["score"] = *report.Score
	}
	if err := c.notifier.Notify(ctx, notification.ChannelReports, payload); err != nil {
		c.logger.Warn("failed to deliver report notification",
			slog.String("report_id", report.ID.String()),
			slog.Any("error", err),
		)
	}
}

// Get retrieves a report by ID.
func (c *complianceUseCase) Get(ctx context.Context, reportID uuid.UUID) (*complianceDomain.ComplianceReport, error) {
	return c.reportRepo.Get(ctx, reportID)
}

// List retrieves reports newest first with pagination.
func (c *complianceUseCase) List(ctx context.Context, offset, limit int) ([]*complianceDomain.ComplianceReport, error) {
	if limit <= 0 {
		limit = 50
	}
	return c.reportRepo.List(ctx, offset, limit)
}

func validateInput(input *GenerateReportInput) error {
	if err := input.Ruleset.Validate(); err != nil {
		return err
	}
	if !input.PeriodEnd.After(input.PeriodStart) {
		return complianceDomain.ErrInvalidPeriod
	}
	return nil
}
