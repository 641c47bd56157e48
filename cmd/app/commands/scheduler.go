package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/allisson/tokenvault/internal/app"
	"github.com/allisson/tokenvault/internal/config"
)

// RunScheduler runs the periodic maintenance loop: expired token cleanup,
// audit log archival, stale alert auto-resolve, token retention sweeps, and
// vault key rotation checks, each on its configured cron schedule. Blocks
// until receiving SIGINT/SIGTERM.
func RunScheduler(ctx context.Context, version string) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting scheduler", slog.String("version", version))

	defer closeContainer(container, logger)

	tokenizationUC, err := container.TokenizationUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize tokenization use case: %w", err)
	}

	auditUC, err := container.AuditUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize audit use case: %w", err)
	}

	alertUC, err := container.AlertUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize alert use case: %w", err)
	}

	vaultUC, err := container.VaultUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize vault use case: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	scheduler := cron.New()

	if _, err := scheduler.AddFunc(cfg.SchedulerTokenCleanupSpec, func() {
		expired, err := tokenizationUC.CleanupExpiredTokens(ctx, cfg.TokenCleanupBatchSize)
		if err != nil {
			logger.Error("expired token cleanup failed", slog.Any("error", err))
			return
		}
		if expired > 0 {
			logger.Info("expired tokens cleaned up", slog.Int("count", expired))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule token cleanup: %w", err)
	}

	if _, err := scheduler.AddFunc(cfg.SchedulerAuditArchiveSpec, func() {
		archived, err := auditUC.ArchiveOldLogs(ctx)
		if err != nil {
			logger.Error("audit log archival failed", slog.Any("error", err))
			return
		}
		if archived > 0 {
			logger.Info("audit logs archived", slog.Int64("count", archived))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule audit archival: %w", err)
	}

	if _, err := scheduler.AddFunc(cfg.SchedulerAlertSweepSpec, func() {
		resolved, err := alertUC.AutoResolveStale(ctx)
		if err != nil {
			logger.Error("alert auto-resolve sweep failed", slog.Any("error", err))
			return
		}
		if resolved > 0 {
			logger.Info("stale alerts auto-resolved", slog.Int("count", resolved))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule alert sweep: %w", err)
	}

	if _, err := scheduler.AddFunc(cfg.SchedulerRetentionSpec, func() {
		deleted, err := tokenizationUC.ApplyRetentionPolicies(ctx)
		if err != nil {
			logger.Error("token retention sweep failed", slog.Any("error", err))
			return
		}
		if deleted > 0 {
			logger.Info("retained tokens deleted", slog.Int64("count", deleted))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule retention sweep: %w", err)
	}

	if _, err := scheduler.AddFunc(cfg.SchedulerKeyRotationSpec, func() {
		rotated, err := rotateDueVaultKeys(ctx, vaultUC, logger)
		if err != nil {
			logger.Error("vault key rotation check failed", slog.Any("error", err))
			return
		}
		if rotated > 0 {
			logger.Info("vault keys rotated", slog.Int("count", rotated))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule key rotation: %w", err)
	}

	scheduler.Start()
	<-ctx.Done()
	logger.Info("shutdown signal received")

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()

	return nil
}
