package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/tokenvault/internal/app"
	"github.com/allisson/tokenvault/internal/config"
)

// RunAutoResolveAlerts closes security alerts with no activity past the
// configured auto-resolve age.
func RunAutoResolveAlerts(ctx context.Context) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("auto-resolving stale alerts",
		slog.Duration("after", cfg.AlertAutoResolveAfter),
	)

	defer closeContainer(container, logger)

	alertUC, err := container.AlertUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize alert use case: %w", err)
	}

	resolved, err := alertUC.AutoResolveStale(ctx)
	if err != nil {
		return fmt.Errorf("failed to auto-resolve alerts: %w", err)
	}

	fmt.Printf("Auto-resolved %d alert(s)\n", resolved)

	logger.Info("sweep completed", slog.Int("count", resolved))
	return nil
}
