package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/tokenvault/internal/audit/domain"
	"github.com/allisson/tokenvault/internal/metrics"
	vaultDomain "github.com/allisson/tokenvault/internal/vault/domain"
)

// vaultUseCaseWithMetrics decorates VaultUseCase with metrics instrumentation.
type vaultUseCaseWithMetrics struct {
	next    VaultUseCase
	metrics metrics.BusinessMetrics
}

// NewVaultUseCaseWithMetrics wraps a VaultUseCase with metrics recording.
func NewVaultUseCaseWithMetrics(useCase VaultUseCase, m metrics.BusinessMetrics) VaultUseCase {
	return &vaultUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (v *vaultUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	v.metrics.RecordOperation(ctx, "vault", operation, status)
	v.metrics.RecordDuration(ctx, "vault", operation, time.Since(start), status)
}

// Create records metrics for vault creation operations.
func (v *vaultUseCaseWithMetrics) Create(
	ctx context.Context,
	input *CreateVaultInput,
	reqCtx auditDomain.RequestContext,
) (*vaultDomain.Vault, error) {
	start := time.Now()
	vault, err := v.next.Create(ctx, input, reqCtx)
	v.record(ctx, "create", start, err)
	return vault, err
}

// Update records metrics for vault update operations.
func (v *vaultUseCaseWithMetrics) Update(
	ctx context.Context,
	vaultID uuid.UUID,
	input *UpdateVaultInput,
	reqCtx auditDomain.RequestContext,
) (*vaultDomain.Vault, error) {
	start := time.Now()
	vault, err := v.next.Update(ctx, vaultID, input, reqCtx)
	v.record(ctx, "update", start, err)
	return vault, err
}

// Get records metrics for vault retrieval operations.
func (v *vaultUseCaseWithMetrics) Get(ctx context.Context, vaultID uuid.UUID) (*vaultDomain.Vault, error) {
	start := time.Now()
	vault, err := v.next.Get(ctx, vaultID)
	v.record(ctx, "get", start, err)
	return vault, err
}

// List records metrics for vault listing operations.
func (v *vaultUseCaseWithMetrics) List(ctx context.Context, offset, limit int) ([]*vaultDomain.Vault, error) {
	start := time.Now()
	vaults, err := v.next.List(ctx, offset, limit)
	v.record(ctx, "list", start, err)
	return vaults, err
}

// Activate records metrics for vault activation operations.
func (v *vaultUseCaseWithMetrics) Activate(
	ctx context.Context,
	vaultID uuid.UUID,
	reqCtx auditDomain.RequestContext,
) (*vaultDomain.Vault, error) {
	start := time.Now()
	vault, err := v.next.Activate(ctx, vaultID, reqCtx)
	v.record(ctx, "activate", start, err)
	return vault, err
}

// Deactivate records metrics for vault deactivation operations.
func (v *vaultUseCaseWithMetrics) Deactivate(
	ctx context.Context,
	vaultID uuid.UUID,
	reqCtx auditDomain.RequestContext,
) (*vaultDomain.Vault, error) {
	start := time.Now()
	vault, err := v.next.Deactivate(ctx, vaultID, reqCtx)
	v.record(ctx, "deactivate", start, err)
	return vault, err
}

// Archive records metrics for vault archival operations.
func (v *vaultUseCaseWithMetrics) Archive(
	ctx context.Context,
	vaultID uuid.UUID,
	reqCtx auditDomain.RequestContext,
) (*vaultDomain.Vault, error) {
	start := time.Now()
	vault, err := v.next.Archive(ctx, vaultID, reqCtx)
	v.record(ctx, "archive", start, err)
	return vault, err
}

// RotateKey records metrics for vault key rotation operations.
func (v *vaultUseCaseWithMetrics) RotateKey(
	ctx context.Context,
	vaultID uuid.UUID,
	reqCtx auditDomain.RequestContext,
) (*vaultDomain.VaultKey, error) {
	start := time.Now()
	key, err := v.next.RotateKey(ctx, vaultID, reqCtx)
	v.record(ctx, "rotate_key", start, err)
	return key, err
}

// GetStatistics records metrics for vault statistics operations.
func (v *vaultUseCaseWithMetrics) GetStatistics(ctx context.Context, vaultID uuid.UUID) (*Statistics, error) {
	start := time.Now()
	stats, err := v.next.GetStatistics(ctx, vaultID)
	v.record(ctx, "get_statistics", start, err)
	return stats, err
}

// ValidateForOperation records metrics for vault operation gate checks.
func (v *vaultUseCaseWithMetrics) ValidateForOperation(
	ctx context.Context,
	vaultID uuid.UUID,
	op vaultDomain.Operation,
	reqCtx auditDomain.RequestContext,
) (*vaultDomain.Vault, error) {
	start := time.Now()
	vault, err := v.next.ValidateForOperation(ctx, vaultID, op, reqCtx)
	v.record(ctx, "validate_for_operation", start, err)
	return vault, err
}

// ListNeedingRotation records metrics for rotation candidate listing.
func (v *vaultUseCaseWithMetrics) ListNeedingRotation(ctx context.Context) ([]*vaultDomain.Vault, error) {
	start := time.Now()
	vaults, err := v.next.ListNeedingRotation(ctx)
	v.record(ctx, "list_needing_rotation", start, err)
	return vaults, err
}
