package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/allisson/tokenvault/internal/app"
	"github.com/allisson/tokenvault/internal/config"
	vaultUseCase "github.com/allisson/tokenvault/internal/vault/usecase"
)

// RunRotateVaultKeys rotates the encryption key of a single vault, or of every
// vault whose rotation interval has elapsed when no vault ID is given.
func RunRotateVaultKeys(ctx context.Context, vaultID string) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)

	logger := container.Logger()

	defer closeContainer(container, logger)

	vaultUC, err := container.VaultUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize vault use case: %w", err)
	}

	if vaultID != "" {
		id, err := uuid.Parse(vaultID)
		if err != nil {
			return fmt.Errorf("invalid vault id: %w", err)
		}
		key, err := vaultUC.RotateKey(ctx, id, cliRequestContext())
		if err != nil {
			return fmt.Errorf("failed to rotate vault key: %w", err)
		}
		fmt.Printf("Rotated key for vault %s to version %d\n", id, key.KeyVersion)
		return nil
	}

	rotated, err := rotateDueVaultKeys(ctx, vaultUC, logger)
	if err != nil {
		return err
	}

	fmt.Printf("Rotated keys for %d vault(s)\n", rotated)
	return nil
}

// rotateDueVaultKeys rotates every vault whose rotation interval elapsed.
// Failures are logged per vault and do not stop the sweep.
func rotateDueVaultKeys(ctx context.Context, vaultUC vaultUseCase.VaultUseCase, logger *slog.Logger) (int, error) {
	vaults, err := vaultUC.ListNeedingRotation(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list vaults needing rotation: %w", err)
	}

	rotated := 0
	for _, vault := range vaults {
		if _, err := vaultUC.RotateKey(ctx, vault.ID, cliRequestContext()); err != nil {
			logger.Error("failed to rotate vault key",
				slog.String("vault_id", vault.ID.String()),
				slog.Any("error", err),
			)
			continue
		}
		rotated++
	}

	return rotated, nil
}
