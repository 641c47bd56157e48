package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/allisson/tokenvault/internal/app"
	"github.com/allisson/tokenvault/internal/config"
	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
	vaultDomain "github.com/allisson/tokenvault/internal/vault/domain"
	vaultUseCase "github.com/allisson/tokenvault/internal/vault/usecase"
)

// CreateVaultOptions holds the flag values for the create-vault command.
type CreateVaultOptions struct {
	Name                    string
	Description             string
	DataType                string
	Algorithm               string
	Operations              string
	MaxTokens               int64
	RetentionDays           int
	KeyRotationIntervalDays int
	Format                  string
}

// RunCreateVault provisions a new active vault with key version 1.
func RunCreateVault(ctx context.Context, opts CreateVaultOptions) error {
	dataType := vaultDomain.DataType(opts.DataType)
	if err := dataType.Validate(); err != nil {
		return fmt.Errorf("invalid data type: %s (valid options: card, ssn, bank_account, custom)", opts.DataType)
	}

	algorithm := cryptoDomain.AESGCM
	if opts.Algorithm != "" {
		algorithm = cryptoDomain.Algorithm(opts.Algorithm)
		if err := algorithm.Validate(); err != nil {
			return fmt.Errorf(
				"invalid algorithm: %s (valid options: aes-256-gcm, aes-256-cbc, chacha20-poly1305)",
				opts.Algorithm,
			)
		}
	}

	operations, err := parseOperations(opts.Operations)
	if err != nil {
		return err
	}

	cfg := config.Load()

	container := app.NewContainer(cfg)

	logger := container.Logger()

	defer closeContainer(container, logger)

	vaultUC, err := container.VaultUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize vault use case: %w", err)
	}

	input := &vaultUseCase.CreateVaultInput{
		Name:                    opts.Name,
		Description:             opts.Description,
		DataType:                dataType,
		EncryptionAlgorithm:     algorithm,
		AllowedOperations:       operations,
		MaxTokens:               opts.MaxTokens,
		RetentionDays:           opts.RetentionDays,
		KeyRotationIntervalDays: opts.KeyRotationIntervalDays,
	}

	vault, err := vaultUC.Create(ctx, input, cliRequestContext())
	if err != nil {
		return fmt.Errorf("failed to create vault: %w", err)
	}

	if opts.Format == "json" {
		outputJSON(map[string]any{
			"id":        vault.ID,
			"name":      vault.Name,
			"data_type": vault.DataType,
			"status":    vault.Status,
		})
	} else {
		fmt.Printf("Created vault %s (%s)\n", vault.Name, vault.ID)
	}

	return nil
}

// parseOperations converts a comma-separated operation list to domain operations.
// An empty list means the vault allows every operation.
func parseOperations(list string) ([]vaultDomain.Operation, error) {
	if list == "" {
		return nil, nil
	}

	var operations []vaultDomain.Operation
	for _, item := range strings.Split(list, ",") {
		op := vaultDomain.Operation(strings.TrimSpace(item))
		if err := op.Validate(); err != nil {
			return nil, fmt.Errorf(
				"invalid operation: %s (valid options: tokenize, detokenize, bulk_tokenize, bulk_detokenize, search, revoke, export)",
				item,
			)
		}
		operations = append(operations, op)
	}
	return operations, nil
}

// outputJSON prints the value as indented JSON for machine consumption.
func outputJSON(value any) {
	jsonBytes, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}
	fmt.Println(string(jsonBytes))
}
