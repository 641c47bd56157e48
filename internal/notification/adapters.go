package notification

import (
	"context"
	"log/slog"

	queueDomain "github.com/allisson/tokenvault/internal/queue/domain"
	securityDomain "github.com/allisson/tokenvault/internal/security/domain"
)

// AlertNotifier forwards newly raised security alerts to the security channel.
// Delivery failures are logged and swallowed; detection never depends on the
// notification path.
type AlertNotifier struct {
	notifier Notifier
	logger   *slog.Logger
}

// NewAlertNotifier creates an AlertNotifier.
func NewAlertNotifier(notifier Notifier, logger *slog.Logger) *AlertNotifier {
	return &AlertNotifier{notifier: notifier, logger: logger}
}

// AlertRaised notifies operators about a new alert. The payload carries alert
// identity and classification only, never token or plaintext material.
func (a *AlertNotifier) AlertRaised(ctx context.Context, alert *securityDomain.SecurityAlert) {
	payload := map[string]any{
		"alert_id":    alert.ID.String(),
		"alert_type":  string(alert.AlertType),
		"severity":    string(alert.Severity),
		"description": alert.Description,
	}
	if err := a.notifier.Notify(ctx, ChannelSecurity, payload); err != nil {
		a.logger.Warn("failed to deliver alert notification",
			slog.String("alert_id", alert.ID.String()),
			slog.Any("error", err),
		)
	}
}

// JobEscalator reports jobs whose retry budget is exhausted. Losing an audit
// record is a compliance failure, so exhaustion always reaches the operations
// channel rather than being silently dropped.
type JobEscalator struct {
	notifier Notifier
	logger   *slog.Logger
}

// NewJobEscalator creates a JobEscalator.
func NewJobEscalator(notifier Notifier, logger *slog.Logger) *JobEscalator {
	return &JobEscalator{notifier: notifier, logger: logger}
}

// JobExhausted escalates a permanently failed job.
func (j *JobEscalator) JobExhausted(ctx context.Context, job *queueDomain.Job) {
	payload := map[string]any{
		"job_id":   job.ID.String(),
		"job_type": job.JobType,
		"queue":    job.Queue,
		"attempts": job.Attempts,
	}
	if job.LastError != nil {
		payload["last_error"] = *job.LastError
	}
	if err := j.notifier.Notify(ctx, ChannelOperations, payload); err != nil {
		j.logger.Error("failed to escalate exhausted job",
			slog.String("job_id", job.ID.String()),
			slog.Any("error", err),
		)
	}
}
