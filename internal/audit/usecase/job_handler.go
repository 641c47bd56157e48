package usecase

import (
	"context"
	"encoding/json"

	auditDomain "github.com/allisson/tokenvault/internal/audit/domain"
	apperrors "github.com/allisson/tokenvault/internal/errors"
	queueDomain "github.com/allisson/tokenvault/internal/queue/domain"
)

// JobHandler adapts the audit pipeline to the queue worker.
type JobHandler struct {
	auditUseCase AuditUseCase
}

// NewJobHandler creates a queue handler for audit log jobs.
func NewJobHandler(auditUseCase AuditUseCase) *JobHandler {
	return &JobHandler{auditUseCase: auditUseCase}
}

// Handle deserializes the audit record and runs the worker-side pipeline.
func (h *JobHandler) Handle(ctx context.Context, job *queueDomain.Job) error {
	var log auditDomain.AuditLog
	if err := json.Unmarshal(job.Payload, &log); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal audit log payload")
	}
	return h.auditUseCase.ProcessAuditLog(ctx, &log)
}
