// Package dto provides data transfer objects for vault HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
	customValidation "github.com/allisson/tokenvault/internal/validation"
	vaultDomain "github.com/allisson/tokenvault/internal/vault/domain"
	vaultUseCase "github.com/allisson/tokenvault/internal/vault/usecase"
)

// AccessRestrictionsRequest mirrors the vault access restriction policy.
type AccessRestrictionsRequest struct {
	AllowedIPs       []string `json:"allowed_ips,omitempty"`
	AllowedHourStart int      `json:"allowed_hour_start,omitempty"`
	AllowedHourEnd   int      `json:"allowed_hour_end,omitempty"`
}

// CreateVaultRequest contains the parameters for creating a new vault.
type CreateVaultRequest struct {
	Name                    string                     `json:"name"`
	Description             string                     `json:"description,omitempty"`
	DataType                string                     `json:"data_type"`
	EncryptionAlgorithm     string                     `json:"encryption_algorithm,omitempty"`
	AllowedOperations       []string                   `json:"allowed_operations,omitempty"`
	AccessRestrictions      *AccessRestrictionsRequest `json:"access_restrictions,omitempty"`
	MaxTokens               int64                      `json:"max_tokens"`
	RetentionDays           int                        `json:"retention_days,omitempty"`
	KeyRotationIntervalDays int                        `json:"key_rotation_interval_days,omitempty"`
}

// Validate checks if the create vault request is valid.
func (r *CreateVaultRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.DataType,
			validation.Required,
			customValidation.OneOf("card", "ssn", "bank_account", "custom"),
		),
		validation.Field(&r.EncryptionAlgorithm,
			customValidation.OneOf("aes-256-gcm", "aes-256-cbc", "chacha20-poly1305"),
		),
		validation.Field(&r.MaxTokens,
			validation.Required,
			validation.Min(1),
		),
		validation.Field(&r.RetentionDays,
			validation.Min(0),
		),
		validation.Field(&r.KeyRotationIntervalDays,
			validation.Min(0),
		),
	)
}

// ToInput converts the request to the use case input.
func (r *CreateVaultRequest) ToInput() *vaultUseCase.CreateVaultInput {
	algorithm := cryptoDomain.AESGCM
	if r.EncryptionAlgorithm != "" {
		algorithm = cryptoDomain.Algorithm(r.EncryptionAlgorithm)
	}

	operations := make([]vaultDomain.Operation, 0, len(r.AllowedOperations))
	for _, op := range r.AllowedOperations {
		operations = append(operations, vaultDomain.Operation(op))
	}

	return &vaultUseCase.CreateVaultInput{
		Name:                    r.Name,
		Description:             r.Description,
		DataType:                vaultDomain.DataType(r.DataType),
		EncryptionAlgorithm:     algorithm,
		AllowedOperations:       operations,
		AccessRestrictions:      r.AccessRestrictions.toDomain(),
		MaxTokens:               r.MaxTokens,
		RetentionDays:           r.RetentionDays,
		KeyRotationIntervalDays: r.KeyRotationIntervalDays,
	}
}

// UpdateVaultRequest contains the mutable parameters for updating a vault.
// Omitted fields leave the current value unchanged.
type UpdateVaultRequest struct {
	Description             *string                    `json:"description,omitempty"`
	AllowedOperations       []string                   `json:"allowed_operations,omitempty"`
	AccessRestrictions      *AccessRestrictionsRequest `json:"access_restrictions,omitempty"`
	MaxTokens               *int64                     `json:"max_tokens,omitempty"`
	RetentionDays           *int                       `json:"retention_days,omitempty"`
	KeyRotationIntervalDays *int                       `json:"key_rotation_interval_days,omitempty"`
}

// Validate checks if the update vault request is valid.
func (r *UpdateVaultRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.MaxTokens,
			validation.When(r.MaxTokens != nil, validation.Min(int64(1))),
		),
		validation.Field(&r.RetentionDays,
			validation.When(r.RetentionDays != nil, validation.Min(0)),
		),
		validation.Field(&r.KeyRotationIntervalDays,
			validation.When(r.KeyRotationIntervalDays != nil, validation.Min(0)),
		),
	)
}

// ToInput converts the request to the use case input.
func (r *UpdateVaultRequest) ToInput() *vaultUseCase.UpdateVaultInput {
	var operations []vaultDomain.Operation
	for _, op := range r.AllowedOperations {
		operations = append(operations, vaultDomain.Operation(op))
	}

	return &vaultUseCase.UpdateVaultInput{
		Description:             r.Description,
		AllowedOperations:       operations,
		AccessRestrictions:      r.AccessRestrictions.toDomain(),
		MaxTokens:               r.MaxTokens,
		RetentionDays:           r.RetentionDays,
		KeyRotationIntervalDays: r.KeyRotationIntervalDays,
	}
}

func (r *AccessRestrictionsRequest) toDomain() *vaultDomain.AccessRestrictions {
	if r == nil {
		return nil
	}
	return &vaultDomain.AccessRestrictions{
		AllowedIPs:       r.AllowedIPs,
		AllowedHourStart: r.AllowedHourStart,
		AllowedHourEnd:   r.AllowedHourEnd,
	}
}
