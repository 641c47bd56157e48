// Package usecase implements vault management business logic: lifecycle,
// allowed-operations policy, capacity accounting, and key rotation.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/tokenvault/internal/audit/domain"
	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
	vaultDomain "github.com/allisson/tokenvault/internal/vault/domain"
)

// VaultRepository defines the interface for vault persistence.
type VaultRepository interface {
	Create(ctx context.Context, vault *vaultDomain.Vault) error
	Get(ctx context.Context, vaultID uuid.UUID) (*vaultDomain.Vault, error)
	GetByName(ctx context.Context, name string) (*vaultDomain.Vault, error)
	Update(ctx context.Context, vault *vaultDomain.Vault) error

	// IncrementTokenCount enforces the capacity invariant atomically, returning
	// ErrVaultCapacityExceeded when the vault is at max_tokens.
	IncrementTokenCount(ctx context.Context, vaultID uuid.UUID) error
	DecrementTokenCount(ctx context.Context, vaultID uuid.UUID) error

	List(ctx context.Context, offset, limit int) ([]*vaultDomain.Vault, error)
	ListNeedingRotation(ctx context.Context, now time.Time) ([]*vaultDomain.Vault, error)
}

// VaultKeyRepository defines the interface for vault key persistence.
type VaultKeyRepository interface {
	Create(ctx context.Context, key *vaultDomain.VaultKey) error
	GetActive(ctx context.Context, vaultID uuid.UUID) (*vaultDomain.VaultKey, error)
	GetByVaultAndVersion(ctx context.Context, vaultID uuid.UUID, version uint) (*vaultDomain.VaultKey, error)
	Retire(ctx context.Context, keyID uuid.UUID, retiredAt time.Time) error
}

// AuditLogger enqueues operational events into the audit pipeline. Enqueueing
// never blocks on persistence; failures must not fail the calling operation.
type AuditLogger interface {
	LogEvent(ctx context.Context, event *auditDomain.Event) (uuid.UUID, error)
}

// CreateVaultInput holds the fields for creating a vault.
type CreateVaultInput struct {
	Name                    string
	Description             string
	DataType                vaultDomain.DataType
	EncryptionAlgorithm     cryptoDomain.Algorithm
	AllowedOperations       []vaultDomain.Operation
	AccessRestrictions      *vaultDomain.AccessRestrictions
	MaxTokens               int64
	RetentionDays           int
	KeyRotationIntervalDays int
}

// UpdateVaultInput holds the mutable fields for updating a vault. Nil pointers
// leave the current value unchanged.
type UpdateVaultInput struct {
	Description             *string
	AllowedOperations       []vaultDomain.Operation
	AccessRestrictions      *vaultDomain.AccessRestrictions
	MaxTokens               *int64
	RetentionDays           *int
	KeyRotationIntervalDays *int
}

// Statistics summarizes a vault's utilization and key state.
type Statistics struct {
	VaultID           uuid.UUID
	Name              string
	Status            vaultDomain.Status
	DataType          vaultDomain.DataType
	MaxTokens         int64
	CurrentTokenCount int64
	UtilizationPct    float64
	ActiveKeyVersion  uint
	LastKeyRotation   *time.Time
	NeedsKeyRotation  bool
}

// VaultUseCase defines the interface for vault management operations.
type VaultUseCase interface {
	// Create provisions a new active vault with key version 1.
	Create(ctx context.Context, input *CreateVaultInput, reqCtx auditDomain.RequestContext) (*vaultDomain.Vault, error)

	// Update applies mutable field changes to a vault.
	Update(ctx context.Context, vaultID uuid.UUID, input *UpdateVaultInput, reqCtx auditDomain.RequestContext) (*vaultDomain.Vault, error)

	// Get retrieves a vault by ID.
	Get(ctx context.Context, vaultID uuid.UUID) (*vaultDomain.Vault, error)

	// List retrieves vaults ordered by name with pagination.
	List(ctx context.Context, offset, limit int) ([]*vaultDomain.Vault, error)

	// Activate, Deactivate, and Archive transition vault status, emitting a
	// status-change audit event distinguishing the transition.
	Activate(ctx context.Context, vaultID uuid.UUID, reqCtx auditDomain.RequestContext) (*vaultDomain.Vault, error)
	Deactivate(ctx context.Context, vaultID uuid.UUID, reqCtx auditDomain.RequestContext) (*vaultDomain.Vault, error)
	Archive(ctx context.Context, vaultID uuid.UUID, reqCtx auditDomain.RequestContext) (*vaultDomain.Vault, error)

	// RotateKey retires the active key version and activates the next one
	// atomically, stamping last_key_rotation.
	RotateKey(ctx context.Context, vaultID uuid.UUID, reqCtx auditDomain.RequestContext) (*vaultDomain.VaultKey, error)

	// GetStatistics summarizes vault utilization and key state.
	GetStatistics(ctx context.Context, vaultID uuid.UUID) (*Statistics, error)

	// ValidateForOperation is the single gate every tokenize/detokenize/search/
	// bulk/revoke call passes first: it resolves the vault, requires active
	// status, checks the allowed-operations policy and access restrictions.
	ValidateForOperation(ctx context.Context, vaultID uuid.UUID, op vaultDomain.Operation, reqCtx auditDomain.RequestContext) (*vaultDomain.Vault, error)

	// ListNeedingRotation returns active vaults whose rotation interval elapsed.
	ListNeedingRotation(ctx context.Context) ([]*vaultDomain.Vault, error)
}
