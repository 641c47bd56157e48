package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/tokenvault/internal/app"
	"github.com/allisson/tokenvault/internal/config"
)

// RunCleanExpiredTokens transitions elapsed active tokens to expired and
// releases their vault capacity slots.
func RunCleanExpiredTokens(ctx context.Context, batchSize int) error {
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be a positive number, got: %d", batchSize)
	}

	cfg := config.Load()

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("cleaning expired tokens", slog.Int("batch_size", batchSize))

	defer closeContainer(container, logger)

	tokenizationUC, err := container.TokenizationUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize tokenization use case: %w", err)
	}

	expired, err := tokenizationUC.CleanupExpiredTokens(ctx, batchSize)
	if err != nil {
		return fmt.Errorf("failed to cleanup expired tokens: %w", err)
	}

	fmt.Printf("Expired %d token(s)\n", expired)

	logger.Info("cleanup completed", slog.Int("count", expired))
	return nil
}
