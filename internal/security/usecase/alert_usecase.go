// Package usecase implements security alert management: triage transitions
// and the stale-alert auto-resolve sweep.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/tokenvault/internal/database"
	securityDomain "github.com/allisson/tokenvault/internal/security/domain"
)

// AlertRepository defines the interface for alert persistence.
type AlertRepository interface {
	Get(ctx context.Context, alertID uuid.UUID) (*securityDomain.SecurityAlert, error)
	Update(ctx context.Context, alert *securityDomain.SecurityAlert) error
	List(ctx context.Context, filter securityDomain.ListFilter) ([]*securityDomain.SecurityAlert, error)
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*securityDomain.SecurityAlert, error)
	CountBySeverity(ctx context.Context, since time.Time) (map[securityDomain.Severity]int64, error)
}

// AlertUseCase defines the interface for alert management operations.
type AlertUseCase interface {
	Get(ctx context.Context, alertID uuid.UUID) (*securityDomain.SecurityAlert, error)
	List(ctx context.Context, filter securityDomain.ListFilter) ([]*securityDomain.SecurityAlert, error)

	// Acknowledge transitions an open alert to acknowledged.
	Acknowledge(ctx context.Context, alertID uuid.UUID, by string) (*securityDomain.SecurityAlert, error)

	// Resolve closes an open or acknowledged alert.
	Resolve(ctx context.Context, alertID uuid.UUID, by, note string) (*securityDomain.SecurityAlert, error)

	// MarkFalsePositive closes an alert as mistaken detection.
	MarkFalsePositive(ctx context.Context, alertID uuid.UUID, by, note string) (*securityDomain.SecurityAlert, error)

	// CountBySeverity reports alert counts per severity since the given time.
	CountBySeverity(ctx context.Context, since time.Time) (map[securityDomain.Severity]int64, error)

	// AutoResolveStale closes alerts with no activity past the configured age.
	// Returns the number of alerts closed.
	AutoResolveStale(ctx context.Context) (int, error)
}

// Config holds alert management configuration.
type Config struct {
	// AutoResolveAfter is the inactivity age past which open alerts close.
	AutoResolveAfter time.Duration
	// SweepBatchSize bounds one auto-resolve sweep.
	SweepBatchSize int
}

// alertUseCase implements AlertUseCase.
type alertUseCase struct {
	config    Config
	txManager database.TxManager
	alertRepo AlertRepository
	logger    *slog.Logger
}

// NewAlertUseCase creates a new AlertUseCase with injected dependencies.
func NewAlertUseCase(
	config Config,
	txManager database.TxManager,
	alertRepo AlertRepository,
	logger *slog.Logger,
) AlertUseCase {
	return &alertUseCase{
		config:    config,
		txManager: txManager,
		alertRepo: alertRepo,
		logger:    logger,
	}
}

func (a *alertUseCase) Get(ctx context.Context, alertID uuid.UUID) (*securityDomain.SecurityAlert, error) {
	return a.alertRepo.Get(ctx, alertID)
}

func (a *alertUseCase) CountBySeverity(ctx context.Context, since time.Time) (map[securityDomain.Severity]int64, error) {
	return a.alertRepo.CountBySeverity(ctx, since)
}

func (a *alertUseCase) List(ctx context.Context, filter securityDomain.ListFilter) ([]*securityDomain.SecurityAlert, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return a.alertRepo.List(ctx, filter)
}

func (a *alertUseCase) Acknowledge(ctx context.Context, alertID uuid.UUID, by string) (*securityDomain.SecurityAlert, error) {
	return a.transition(ctx, alertID, func(alert *securityDomain.SecurityAlert, now time.Time) error {
		return alert.Acknowledge(by, now)
	})
}

func (a *alertUseCase) Resolve(ctx context.Context, alertID uuid.UUID, by, note string) (*securityDomain.SecurityAlert, error) {
	return a.transition(ctx, alertID, func(alert *securityDomain.SecurityAlert, now time.Time) error {
		return alert.Resolve(by, note, now)
	})
}

func (a *alertUseCase) MarkFalsePositive(ctx context.Context, alertID uuid.UUID, by, note string) (*securityDomain.SecurityAlert, error) {
	return a.transition(ctx, alertID, func(alert *securityDomain.SecurityAlert, now time.Time) error {
		return alert.MarkFalsePositive(by, note, now)
	})
}

func (a *alertUseCase) transition(
	ctx context.Context,
	alertID uuid.UUID,
	apply func(*securityDomain.SecurityAlert, time.Time) error,
) (*securityDomain.SecurityAlert, error) {
	var alert *securityDomain.SecurityAlert

	err := a.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		alert, err = a.alertRepo.Get(ctx, alertID)
		if err != nil {
			return err
		}
		if err := apply(alert, time.Now().UTC()); err != nil {
			return err
		}
		return a.alertRepo.Update(ctx, alert)
	})
	if err != nil {
		return nil, err
	}
	return alert, nil
}

// AutoResolveStale sweeps alerts with no activity past the configured age.
func (a *alertUseCase) AutoResolveStale(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	cutoff := now.Add(-a.config.AutoResolveAfter)

	alerts, err := a.alertRepo.ListStale(ctx, cutoff, a.config.SweepBatchSize)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for _, alert := range alerts {
		if err := alert.AutoResolve(now); err != nil {
			continue
		}
		if err := a.alertRepo.Update(ctx, alert); err != nil {
			a.logger.Warn("failed to auto-resolve alert",
				slog.String("alert_id", alert.ID.String()),
				slog.Any("error", err),
			)
			continue
		}
		resolved++
	}

	if resolved > 0 {
		a.logger.Info("auto-resolved stale alerts", slog.Int("count", resolved))
	}
	return resolved, nil
}
