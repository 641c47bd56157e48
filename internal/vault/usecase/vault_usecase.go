package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/tokenvault/internal/audit/domain"
	cryptoService "github.com/allisson/tokenvault/internal/crypto/service"
	"github.com/allisson/tokenvault/internal/database"
	apperrors "github.com/allisson/tokenvault/internal/errors"
	vaultDomain "github.com/allisson/tokenvault/internal/vault/domain"
)

// vaultUseCase implements VaultUseCase.
type vaultUseCase struct {
	txManager   database.TxManager
	vaultRepo   VaultRepository
	keyRepo     VaultKeyRepository
	keyMaterial cryptoService.KeyMaterialService
	auditLogger AuditLogger
	logger      *slog.Logger
}

// NewVaultUseCase creates a new VaultUseCase with injected dependencies.
func NewVaultUseCase(
	txManager database.TxManager,
	vaultRepo VaultRepository,
	keyRepo VaultKeyRepository,
	keyMaterial cryptoService.KeyMaterialService,
	auditLogger AuditLogger,
	logger *slog.Logger,
) VaultUseCase {
	return &vaultUseCase{
		txManager:   txManager,
		vaultRepo:   vaultRepo,
		keyRepo:     keyRepo,
		keyMaterial: keyMaterial,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// Create provisions a new active vault with key version 1.
func (v *vaultUseCase) Create(
	ctx context.Context,
	input *CreateVaultInput,
	reqCtx auditDomain.RequestContext,
) (*vaultDomain.Vault, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	vaultID := uuid.Must(uuid.NewV7())
	keyReference := vaultDomain.NewKeyReference(vaultID, 1)

	wrapped, keyHash, err := v.keyMaterial.Generate(ctx, keyReference)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to provision vault key material")
	}

	vault := &vaultDomain.Vault{
		ID:                      vaultID,
		Name:                    input.Name,
		Description:             input.Description,
		DataType:                input.DataType,
		Status:                  vaultDomain.StatusActive,
		EncryptionAlgorithm:     input.EncryptionAlgorithm,
		EncryptionKeyReference:  keyReference,
		MaxTokens:               input.MaxTokens,
		CurrentTokenCount:       0,
		AllowedOperations:       input.AllowedOperations,
		AccessRestrictions:      input.AccessRestrictions,
		RetentionDays:           input.RetentionDays,
		KeyRotationIntervalDays: input.KeyRotationIntervalDays,
		LastKeyRotation:         &now,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	key := &vaultDomain.VaultKey{
		ID:           uuid.Must(uuid.NewV7()),
		VaultID:      vaultID,
		KeyVersion:   1,
		KeyReference: keyReference,
		EncryptedKey: wrapped,
		KeyHash:      keyHash,
		Status:       vaultDomain.KeyStatusActive,
		ActivatedAt:  now,
	}

	err = v.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := v.vaultRepo.Create(ctx, vault); err != nil {
			return err
		}
		return v.keyRepo.Create(ctx, key)
	})
	if err != nil {
		return nil, err
	}

	v.emitAudit(ctx, &auditDomain.Event{
		VaultID:   &vault.ID,
		Operation: auditDomain.OpVaultCreate,
		Result:    auditDomain.ResultSuccess,
		ResponseMetadata: map[string]any{
			"vault_name": vault.Name,
			"data_type":  string(vault.DataType),
		},
		Context: reqCtx,
	})

	return vault, nil
}

// Update applies mutable field changes to a vault.
func (v *vaultUseCase) Update(
	ctx context.Context,
	vaultID uuid.UUID,
	input *UpdateVaultInput,
	reqCtx auditDomain.RequestContext,
) (*vaultDomain.Vault, error) {
	vault, err := v.vaultRepo.Get(ctx, vaultID)
	if err != nil {
		return nil, err
	}

	if input.Description != nil {
		vault.Description = *input.Description
	}
	if input.AllowedOperations != nil {
		for _, op := range input.AllowedOperations {
			if err := op.Validate(); err != nil {
				return nil, err
			}
		}
		vault.AllowedOperations = input.AllowedOperations
	}
	if input.AccessRestrictions != nil {
		vault.AccessRestrictions = input.AccessRestrictions
	}
	if input.MaxTokens != nil {
		if *input.MaxTokens < vault.CurrentTokenCount {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "max_tokens below current token count")
		}
		vault.MaxTokens = *input.MaxTokens
	}
	if input.RetentionDays != nil {
		vault.RetentionDays = *input.RetentionDays
	}
	if input.KeyRotationIntervalDays != nil {
		vault.KeyRotationIntervalDays = *input.KeyRotationIntervalDays
	}
	vault.UpdatedAt = time.Now().UTC()

	if err := v.vaultRepo.Update(ctx, vault); err != nil {
		return nil, err
	}

	v.emitAudit(ctx, &auditDomain.Event{
		VaultID:   &vault.ID,
		Operation: auditDomain.OpVaultUpdate,
		Result:    auditDomain.ResultSuccess,
		Context:   reqCtx,
	})

	return vault, nil
}

// Get retrieves a vault by ID.
func (v *vaultUseCase) Get(ctx context.Context, vaultID uuid.UUID) (*vaultDomain.Vault, error) {
	return v.vaultRepo.Get(ctx, vaultID)
}

// List retrieves vaults ordered by name with pagination.
func (v *vaultUseCase) List(ctx context.Context, offset, limit int) ([]*vaultDomain.Vault, error) {
	return v.vaultRepo.List(ctx, offset, limit)
}

// Activate transitions the vault to active status.
func (v *vaultUseCase) Activate(
	ctx context.Context,
	vaultID uuid.UUID,
	reqCtx auditDomain.RequestContext,
) (*vaultDomain.Vault, error) {
	return v.applyTransition(ctx, vaultID, reqCtx, "activated",
		func(vault *vaultDomain.Vault, now time.Time) (*vaultDomain.StatusEvent, error) {
			return vault.Activate(now)
		})
}

// Deactivate transitions the vault to inactive status.
func (v *vaultUseCase) Deactivate(
	ctx context.Context,
	vaultID uuid.UUID,
	reqCtx auditDomain.RequestContext,
) (*vaultDomain.Vault, error) {
	return v.applyTransition(ctx, vaultID, reqCtx, "deactivated",
		func(vault *vaultDomain.Vault, now time.Time) (*vaultDomain.StatusEvent, error) {
			return vault.Deactivate(now)
		})
}

// Archive transitions the vault to archived status.
func (v *vaultUseCase) Archive(
	ctx context.Context,
	vaultID uuid.UUID,
	reqCtx auditDomain.RequestContext,
) (*vaultDomain.Vault, error) {
	return v.applyTransition(ctx, vaultID, reqCtx, "archived",
		func(vault *vaultDomain.Vault, now time.Time) (*vaultDomain.StatusEvent, error) {
			return vault.Archive(now)
		})
}

func (v *vaultUseCase) applyTransition(
	ctx context.Context,
	vaultID uuid.UUID,
	reqCtx auditDomain.RequestContext,
	action string,
	transition func(*vaultDomain.Vault, time.Time) (*vaultDomain.StatusEvent, error),
) (*vaultDomain.Vault, error) {
	vault, err := v.vaultRepo.Get(ctx, vaultID)
	if err != nil {
		return nil, err
	}

	event, err := transition(vault, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := v.vaultRepo.Update(ctx, vault); err != nil {
		return nil, err
	}

	v.emitAudit(ctx, &auditDomain.Event{
		VaultID:   &vault.ID,
		Operation: auditDomain.OpVaultStatus,
		Result:    auditDomain.ResultSuccess,
		ResponseMetadata: map[string]any{
			"action":      action,
			"from_status": string(event.FromStatus),
			"to_status":   string(event.ToStatus),
		},
		Context: reqCtx,
	})

	return vault, nil
}

// RotateKey retires the active key version and activates the next one in a
// single transaction, so no reader observes a half-rotated key state.
func (v *vaultUseCase) RotateKey(
	ctx context.Context,
	vaultID uuid.UUID,
	reqCtx auditDomain.RequestContext,
) (*vaultDomain.VaultKey, error) {
	var newKey *vaultDomain.VaultKey

	err := v.txManager.WithTx(ctx, func(ctx context.Context) error {
		vault, err := v.vaultRepo.Get(ctx, vaultID)
		if err != nil {
			return err
		}
		if !vault.IsActive() {
			return vaultDomain.ErrVaultNotActive
		}

		currentKey, err := v.keyRepo.GetActive(ctx, vaultID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		nextVersion := currentKey.KeyVersion + 1
		keyReference := vaultDomain.NewKeyReference(vaultID, nextVersion)

		wrapped, keyHash, err := v.keyMaterial.Generate(ctx, keyReference)
		if err != nil {
			return apperrors.Wrap(err, "failed to provision vault key material")
		}

		if err := v.keyRepo.Retire(ctx, currentKey.ID, now); err != nil {
			return err
		}

		newKey = &vaultDomain.VaultKey{
			ID:           uuid.Must(uuid.NewV7()),
			VaultID:      vaultID,
			KeyVersion:   nextVersion,
			KeyReference: keyReference,
			EncryptedKey: wrapped,
			KeyHash:      keyHash,
			Status:       vaultDomain.KeyStatusActive,
			ActivatedAt:  now,
		}
		if err := v.keyRepo.Create(ctx, newKey); err != nil {
			return err
		}

		vault.EncryptionKeyReference = keyReference
		vault.LastKeyRotation = &now
		vault.UpdatedAt = now
		return v.vaultRepo.Update(ctx, vault)
	})
	if err != nil {
		v.emitAudit(ctx, &auditDomain.Event{
			VaultID:      &vaultID,
			Operation:    auditDomain.OpKeyRotation,
			Result:       auditDomain.ResultFailure,
			ErrorMessage: err.Error(),
			Context:      reqCtx,
		})
		return nil, err
	}

	v.emitAudit(ctx, &auditDomain.Event{
		VaultID:   &vaultID,
		Operation: auditDomain.OpKeyRotation,
		Result:    auditDomain.ResultSuccess,
		ResponseMetadata: map[string]any{
			"key_version": newKey.KeyVersion,
		},
		Context: reqCtx,
	})

	return newKey, nil
}

// GetStatistics summarizes vault utilization and key state.
func (v *vaultUseCase) GetStatistics(ctx context.Context, vaultID uuid.UUID) (*Statistics, error) {
	vault, err := v.vaultRepo.Get(ctx, vaultID)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{
		VaultID:           vault.ID,
		Name:              vault.Name,
		Status:            vault.Status,
		DataType:          vault.DataType,
		MaxTokens:         vault.MaxTokens,
		CurrentTokenCount: vault.CurrentTokenCount,
		LastKeyRotation:   vault.LastKeyRotation,
		NeedsKeyRotation:  vault.NeedsKeyRotation(time.Now().UTC()),
	}
	if vault.MaxTokens > 0 {
		stats.UtilizationPct = float64(vault.CurrentTokenCount) / float64(vault.MaxTokens) * 100
	}

	if key, err := v.keyRepo.GetActive(ctx, vaultID); err == nil {
		stats.ActiveKeyVersion = key.KeyVersion
	}

	return stats, nil
}

// ValidateForOperation is the gate every vault-scoped operation passes first.
func (v *vaultUseCase) ValidateForOperation(
	ctx context.Context,
	vaultID uuid.UUID,
	op vaultDomain.Operation,
	reqCtx auditDomain.RequestContext,
) (*vaultDomain.Vault, error) {
	vault, err := v.vaultRepo.Get(ctx, vaultID)
	if err != nil {
		return nil, err
	}
	if !vault.IsActive() {
		return nil, vaultDomain.ErrVaultNotFound
	}
	if !vault.IsOperationAllowed(op) {
		return nil, vaultDomain.ErrOperationNotAllowed
	}
	if !vault.AccessRestrictions.Allows(reqCtx.IPAddress, time.Now()) {
		return nil, vaultDomain.ErrAccessRestricted
	}
	return vault, nil
}

// ListNeedingRotation returns active vaults whose rotation interval elapsed.
func (v *vaultUseCase) ListNeedingRotation(ctx context.Context) ([]*vaultDomain.Vault, error) {
	return v.vaultRepo.ListNeedingRotation(ctx, time.Now().UTC())
}

// emitAudit forwards an event to the audit pipeline. Audit enqueue failures are
// logged and swallowed: tokenization correctness must not depend on audit
// availability.
func (v *vaultUseCase) emitAudit(ctx context.Context, event *auditDomain.Event) {
	if v.auditLogger == nil {
		return
	}
	if _, err := v.auditLogger.LogEvent(ctx, event); err != nil {
		v.logger.Warn("failed to enqueue audit event",
			slog.String("operation", event.Operation),
			slog.Any("error", err),
		)
	}
}

func validateCreateInput(input *CreateVaultInput) error {
	if input.Name == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "vault name is required")
	}
	if err := input.DataType.Validate(); err != nil {
		return err
	}
	if err := input.EncryptionAlgorithm.Validate(); err != nil {
		return err
	}
	if input.MaxTokens <= 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "max_tokens must be positive")
	}
	if len(input.AllowedOperations) == 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "at least one allowed operation is required")
	}
	for _, op := range input.AllowedOperations {
		if err := op.Validate(); err != nil {
			return err
		}
	}
	return nil
}
