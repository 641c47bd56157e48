package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/tokenvault/internal/app"
	"github.com/allisson/tokenvault/internal/config"
)

// RunArchiveAuditLogs archives audit records older than the retention window
// when the unarchived backlog exceeds the configured threshold.
func RunArchiveAuditLogs(ctx context.Context) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("archiving audit logs",
		slog.Int64("threshold", cfg.AuditArchiveThreshold),
		slog.Int("after_days", cfg.AuditArchiveAfterDays),
	)

	defer closeContainer(container, logger)

	auditUC, err := container.AuditUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize audit use case: %w", err)
	}

	archived, err := auditUC.ArchiveOldLogs(ctx)
	if err != nil {
		return fmt.Errorf("failed to archive audit logs: %w", err)
	}

	fmt.Printf("Archived %d audit log(s)\n", archived)

	logger.Info("archival completed", slog.Int64("count", archived))
	return nil
}
