package commands

import (
	"context"
	"fmt"
	"time"

	apikeyDomain "github.com/allisson/tokenvault/internal/apikey/domain"
	"github.com/allisson/tokenvault/internal/app"
	"github.com/allisson/tokenvault/internal/config"
)

// RunCreateAPIKey issues a new API key and prints it. The plain key is shown
// exactly once and never stored.
func RunCreateAPIKey(ctx context.Context, name, role string, expiresInDays int, format string) error {
	keyRole := apikeyDomain.Role(role)
	if err := keyRole.Validate(); err != nil {
		return fmt.Errorf("invalid role: %s (valid options: admin, operator, auditor)", role)
	}

	var expiresAt *time.Time
	if expiresInDays > 0 {
		expiry := time.Now().AddDate(0, 0, expiresInDays)
		expiresAt = &expiry
	}

	cfg := config.Load()

	container := app.NewContainer(cfg)

	logger := container.Logger()

	defer closeContainer(container, logger)

	apiKeyUC, err := container.APIKeyUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize api key use case: %w", err)
	}

	plainKey, key, err := apiKeyUC.Create(ctx, name, keyRole, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to create api key: %w", err)
	}

	if format == "json" {
		outputJSON(map[string]any{
			"id":         key.ID,
			"name":       key.Name,
			"role":       key.Role,
			"key":        plainKey,
			"expires_at": key.ExpiresAt,
		})
		return nil
	}

	fmt.Printf("Created API key %s (%s)\n", key.Name, key.ID)
	fmt.Printf("Role: %s\n", key.Role)
	if key.ExpiresAt != nil {
		fmt.Printf("Expires: %s\n", key.ExpiresAt.Format(time.RFC3339))
	}
	fmt.Printf("\nKey (store it now, it will not be shown again):\n%s\n", plainKey)

	return nil
}
