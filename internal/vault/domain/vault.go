package domain

import (
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
)

// AccessRestrictions is an optional IP/time access policy for a vault.
// Empty fields mean unrestricted.
type AccessRestrictions struct {
	// AllowedIPs is an allow-list of client IP addresses.
	AllowedIPs []string `json:"allowed_ips,omitempty"`
	// AllowedHourStart and AllowedHourEnd bound the local hours (0-23) during
	// which operations are permitted. Both zero means unrestricted.
	AllowedHourStart int `json:"allowed_hour_start,omitempty"`
	AllowedHourEnd   int `json:"allowed_hour_end,omitempty"`
}

// Allows checks the caller IP and local time against the policy.
func (r *AccessRestrictions) Allows(ip string, now time.Time) bool {
	if r == nil {
		return true
	}

	if len(r.AllowedIPs) > 0 {
		found := false
		for _, allowed := range r.AllowedIPs {
			if allowed == ip {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if r.AllowedHourStart != 0 || r.AllowedHourEnd != 0 {
		hour := now.Hour()
		if r.AllowedHourStart <= r.AllowedHourEnd {
			if hour < r.AllowedHourStart || hour >= r.AllowedHourEnd {
				return false
			}
		} else {
			// Window wraps midnight (e.g., 22 to 6).
			if hour < r.AllowedHourStart && hour >= r.AllowedHourEnd {
				return false
			}
		}
	}

	return true
}

// Vault is a named, policy-scoped collection of tokens sharing an encryption
// key lineage. It owns capacity, the allowed-operations policy, encryption
// configuration, and key-rotation state.
type Vault struct {
	ID                      uuid.UUID
	Name                    string
	Description             string
	DataType                DataType
	Status                  Status
	EncryptionAlgorithm     cryptoDomain.Algorithm
	EncryptionKeyReference  string
	MaxTokens               int64
	CurrentTokenCount       int64
	AllowedOperations       []Operation
	AccessRestrictions      *AccessRestrictions
	RetentionDays           int
	KeyRotationIntervalDays int
	LastKeyRotation         *time.Time
	CreatedAt               time.Time
	UpdatedAt               time.Time
	DeletedAt               *time.Time
}

// IsActive reports whether the vault can serve operations.
func (v *Vault) IsActive() bool {
	return v.Status == StatusActive && v.DeletedAt == nil
}

// IsOperationAllowed checks op against the vault's allowed-operations set.
func (v *Vault) IsOperationAllowed(op Operation) bool {
	for _, allowed := range v.AllowedOperations {
		if allowed == op {
			return true
		}
	}
	return false
}

// HasCapacity reports whether the vault can accept another token.
func (v *Vault) HasCapacity() bool {
	return v.CurrentTokenCount < v.MaxTokens
}

// NeedsKeyRotation reports whether the rotation interval has elapsed since the
// last rotation. A vault that has never rotated needs rotation immediately.
func (v *Vault) NeedsKeyRotation(now time.Time) bool {
	if v.KeyRotationIntervalDays <= 0 {
		return false
	}
	if v.LastKeyRotation == nil {
		return true
	}
	due := v.LastKeyRotation.AddDate(0, 0, v.KeyRotationIntervalDays)
	return !now.Before(due)
}

// EncryptionConfig returns the vault's encryption configuration for the given
// key reference. Tokens record the key version they were encrypted under, so
// detokenize passes the reference captured at issuance.
func (v *Vault) EncryptionConfig(keyReference string) cryptoDomain.EncryptionConfig {
	return cryptoDomain.EncryptionConfig{
		Algorithm:    v.EncryptionAlgorithm,
		KeyReference: keyReference,
	}
}

// StatusEvent describes a vault status transition for audit consumers.
type StatusEvent struct {
	VaultID    uuid.UUID
	FromStatus Status
	ToStatus   Status
	OccurredAt time.Time
}

// Activate transitions the vault to active status.
func (v *Vault) Activate(now time.Time) (*StatusEvent, error) {
	return v.transition(StatusActive, now)
}

// Deactivate transitions the vault to inactive status.
func (v *Vault) Deactivate(now time.Time) (*StatusEvent, error) {
	return v.transition(StatusInactive, now)
}

// Archive transitions the vault to archived status. Archived is terminal.
func (v *Vault) Archive(now time.Time) (*StatusEvent, error) {
	return v.transition(StatusArchived, now)
}

func (v *Vault) transition(to Status, now time.Time) (*StatusEvent, error) {
	if v.Status == to {
		return nil, ErrInvalidStatusTransition
	}
	if v.Status == StatusArchived {
		return nil, ErrInvalidStatusTransition
	}

	event := &StatusEvent{
		VaultID:    v.ID,
		FromStatus: v.Status,
		ToStatus:   to,
		OccurredAt: now,
	}
	v.Status = to
	v.UpdatedAt = now
	return event, nil
}
