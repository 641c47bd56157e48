package usecase

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	apperrors "github.com/allisson/tokenvault/internal/errors"
	queueDomain "github.com/allisson/tokenvault/internal/queue/domain"
)

// JobHandler adapts report generation to the queue worker.
type JobHandler struct {
	complianceUseCase ComplianceUseCase
}

// NewJobHandler creates a queue handler for compliance report jobs.
func NewJobHandler(complianceUseCase ComplianceUseCase) *JobHandler {
	return &JobHandler{complianceUseCase: complianceUseCase}
}

// Handle extracts the report ID and runs the batch job.
func (h *JobHandler) Handle(ctx context.Context, job *queueDomain.Job) error {
	var payload struct {
		ReportID string `json:"report_id"`
	}
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal report job payload")
	}

	reportID, err := uuid.Parse(payload.ReportID)
	if err != nil {
		return apperrors.Wrap(err, "invalid report id in job payload")
	}

	return h.complianceUseCase.ProcessReport(ctx, reportID)
}
