// Package service implements the security pattern detector: it gathers
// aggregate signals from audit history, evaluates the detection rules, and
// raises or merges alerts.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/tokenvault/internal/audit/domain"
	"github.com/allisson/tokenvault/internal/database"
	securityDomain "github.com/allisson/tokenvault/internal/security/domain"
)

// AuditHistory provides the aggregate lookups the detection rules need.
type AuditHistory interface {
	CountFailuresByIPSince(ctx context.Context, ipAddress string, since time.Time) (int64, error)
	CountOperationsByIPSince(ctx context.Context, ipAddress string, since time.Time) (int64, error)
	HasActivityFromIPBefore(ctx context.Context, ipAddress string, before time.Time) (bool, error)
}

// AlertStore persists alerts with merge-window lookup.
type AlertStore interface {
	Create(ctx context.Context, alert *securityDomain.SecurityAlert) error
	GetOpenForMerge(ctx context.Context, alertType securityDomain.AlertType, vaultID *uuid.UUID, ipAddress string, since time.Time) (*securityDomain.SecurityAlert, error)
	Update(ctx context.Context, alert *securityDomain.SecurityAlert) error
}

// Notifier is told about newly created alerts.
type Notifier interface {
	AlertRaised(ctx context.Context, alert *securityDomain.SecurityAlert)
}

// PatternDetector inspects persisted audit records for suspicious patterns.
type PatternDetector struct {
	txManager  database.TxManager
	history    AuditHistory
	alertStore AlertStore
	notifier   Notifier
	logger     *slog.Logger
}

// NewPatternDetector creates a new PatternDetector with injected dependencies.
func NewPatternDetector(
	txManager database.TxManager,
	history AuditHistory,
	alertStore AlertStore,
	notifier Notifier,
	logger *slog.Logger,
) *PatternDetector {
	return &PatternDetector{
		txManager:  txManager,
		history:    history,
		alertStore: alertStore,
		notifier:   notifier,
		logger:     logger,
	}
}

// Inspect gathers signals for the record, evaluates the rules, and raises or
// merges an alert per finding.
func (d *PatternDetector) Inspect(ctx context.Context, log *auditDomain.AuditLog) error {
	signals, err := d.gatherSignals(ctx, log)
	if err != nil {
		return err
	}

	findings := securityDomain.EvaluateRules(log, signals)
	for _, finding := range findings {
		if err := d.raiseOrMerge(ctx, log, finding); err != nil {
			return err
		}
	}
	return nil
}

func (d *PatternDetector) gatherSignals(ctx context.Context, log *auditDomain.AuditLog) (securityDomain.Signals, error) {
	var signals securityDomain.Signals

	if log.IPAddress == "" || log.IPAddress == "unknown" {
		signals.EstablishedSourceIP = true
		return signals, nil
	}

	failures, err := d.history.CountFailuresByIPSince(ctx, log.IPAddress, log.CreatedAt.Add(-securityDomain.FailureWindow))
	if err != nil {
		return signals, err
	}
	signals.RecentIPFailures = failures

	operations, err := d.history.CountOperationsByIPSince(ctx, log.IPAddress, log.CreatedAt.Add(-securityDomain.VolumeWindow))
	if err != nil {
		return signals, err
	}
	signals.RecentIPOperations = operations

	established, err := d.history.HasActivityFromIPBefore(ctx, log.IPAddress, log.CreatedAt.Add(-securityDomain.NewIPLookback))
	if err != nil {
		return signals, err
	}
	signals.EstablishedSourceIP = established

	return signals, nil
}

// raiseOrMerge folds the finding into an open alert seen within the merge
// window, or creates a new one. The lookup's row lock serializes concurrent
// detections on the same source.
func (d *PatternDetector) raiseOrMerge(ctx context.Context, log *auditDomain.AuditLog, finding securityDomain.Finding) error {
	now := time.Now().UTC()
	var created *securityDomain.SecurityAlert

	err := d.txManager.WithTx(ctx, func(ctx context.Context) error {
		existing, err := d.alertStore.GetOpenForMerge(
			ctx, finding.AlertType, log.VaultID, log.IPAddress, now.Add(-securityDomain.MergeWindow))
		if err == nil {
			existing.Merge(finding, now)
			return d.alertStore.Update(ctx, existing)
		}
		if !errors.Is(err, securityDomain.ErrAlertNotFound) {
			return err
		}

		alert := securityDomain.NewSecurityAlert(finding, log.VaultID, &log.ID, log.UserID, log.IPAddress, now)
		if err := d.alertStore.Create(ctx, alert); err != nil {
			return err
		}
		created = alert
		return nil
	})
	if err != nil {
		return err
	}

	if created != nil {
		d.logger.Warn("security alert raised",
			slog.String("alert_id", created.ID.String()),
			slog.String("alert_type", string(created.AlertType)),
			slog.String("severity", string(created.Severity)),
		)
		if d.notifier != nil {
			d.notifier.AlertRaised(ctx, created)
		}
	}
	return nil
}
