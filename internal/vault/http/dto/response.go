package dto

import (
	"time"

	"github.com/google/uuid"

	vaultDomain "github.com/allisson/tokenvault/internal/vault/domain"
	vaultUseCase "github.com/allisson/tokenvault/internal/vault/usecase"
)

// VaultResponse represents a vault in API responses. Encryption key material
// and references are never exposed.
type VaultResponse struct {
	ID                      uuid.UUID                  `json:"id"`
	Name                    string                     `json:"name"`
	Description             string                     `json:"description,omitempty"`
	DataType                string                     `json:"data_type"`
	Status                  string                     `json:"status"`
	EncryptionAlgorithm     string                     `json:"encryption_algorithm"`
	MaxTokens               int64                      `json:"max_tokens"`
	CurrentTokenCount       int64                      `json:"current_token_count"`
	AllowedOperations       []string                   `json:"allowed_operations"`
	AccessRestrictions      *AccessRestrictionsRequest `json:"access_restrictions,omitempty"`
	RetentionDays           int                        `json:"retention_days"`
	KeyRotationIntervalDays int                        `json:"key_rotation_interval_days"`
	LastKeyRotation         *time.Time                 `json:"last_key_rotation,omitempty"`
	CreatedAt               time.Time                  `json:"created_at"`
	UpdatedAt               time.Time                  `json:"updated_at"`
}

// MapVaultToResponse converts a domain vault to its API representation.
func MapVaultToResponse(vault *vaultDomain.Vault) VaultResponse {
	operations := make([]string, 0, len(vault.AllowedOperations))
	for _, op := range vault.AllowedOperations {
		operations = append(operations, string(op))
	}

	var restrictions *AccessRestrictionsRequest
	if vault.AccessRestrictions != nil {
		restrictions = &AccessRestrictionsRequest{
			AllowedIPs:       vault.AccessRestrictions.AllowedIPs,
			AllowedHourStart: vault.AccessRestrictions.AllowedHourStart,
			AllowedHourEnd:   vault.AccessRestrictions.AllowedHourEnd,
		}
	}

	return VaultResponse{
		ID:                      vault.ID,
		Name:                    vault.Name,
		Description:             vault.Description,
		DataType:                string(vault.DataType),
		Status:                  string(vault.Status),
		EncryptionAlgorithm:     vault.EncryptionAlgorithm.String(),
		MaxTokens:               vault.MaxTokens,
		CurrentTokenCount:       vault.CurrentTokenCount,
		AllowedOperations:       operations,
		AccessRestrictions:      restrictions,
		RetentionDays:           vault.RetentionDays,
		KeyRotationIntervalDays: vault.KeyRotationIntervalDays,
		LastKeyRotation:         vault.LastKeyRotation,
		CreatedAt:               vault.CreatedAt,
		UpdatedAt:               vault.UpdatedAt,
	}
}

// ListVaultsResponse wraps a page of vaults.
type ListVaultsResponse struct {
	Vaults []VaultResponse `json:"vaults"`
	Offset int             `json:"offset"`
	Limit  int             `json:"limit"`
}

// MapVaultsToListResponse converts a page of domain vaults to the API representation.
func MapVaultsToListResponse(vaults []*vaultDomain.Vault, offset, limit int) ListVaultsResponse {
	items := make([]VaultResponse, 0, len(vaults))
	for _, vault := range vaults {
		items = append(items, MapVaultToResponse(vault))
	}
	return ListVaultsResponse{Vaults: items, Offset: offset, Limit: limit}
}

// RotateKeyResponse reports the outcome of a key rotation.
type RotateKeyResponse struct {
	VaultID     uuid.UUID `json:"vault_id"`
	KeyVersion  uint      `json:"key_version"`
	ActivatedAt time.Time `json:"activated_at"`
}

// StatisticsResponse summarizes vault utilization and key state.
type StatisticsResponse struct {
	VaultID           uuid.UUID  `json:"vault_id"`
	Name              string     `json:"name"`
	Status            string     `json:"status"`
	DataType          string     `json:"data_type"`
	MaxTokens         int64      `json:"max_tokens"`
	CurrentTokenCount int64      `json:"current_token_count"`
	UtilizationPct    float64    `json:"utilization_pct"`
	ActiveKeyVersion  uint       `json:"active_key_version"`
	LastKeyRotation   *time.Time `json:"last_key_rotation,omitempty"`
	NeedsKeyRotation  bool       `json:"needs_key_rotation"`
}

// MapStatisticsToResponse converts vault statistics to the API representation.
func MapStatisticsToResponse(stats *vaultUseCase.Statistics) StatisticsResponse {
	return StatisticsResponse{
		VaultID:           stats.VaultID,
		Name:              stats.Name,
		Status:            string(stats.Status),
		DataType:          string(stats.DataType),
		MaxTokens:         stats.MaxTokens,
		CurrentTokenCount: stats.CurrentTokenCount,
		UtilizationPct:    stats.UtilizationPct,
		ActiveKeyVersion:  stats.ActiveKeyVersion,
		LastKeyRotation:   stats.LastKeyRotation,
		NeedsKeyRotation:  stats.NeedsKeyRotation,
	}
}
