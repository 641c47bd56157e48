// Package domain defines API key entities used for request authentication
// and role-based authorization.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role determines which operations an API key may perform.
type Role string

const (
	// RoleAdmin may manage vaults, keys, and perform all token operations.
	RoleAdmin Role = "admin"
	// RoleOperator may perform token operations but not manage vaults.
	RoleOperator Role = "operator"
	// RoleAuditor has read-only access to audit, security, and compliance data.
	RoleAuditor Role = "auditor"
)

// Validate checks if the role is valid.
func (r Role) Validate() error {
	switch r {
	case RoleAdmin, RoleOperator, RoleAuditor:
		return nil
	default:
		return ErrInvalidRole
	}
}

// Capability names an authorization capability checked per route.
type Capability string

const (
	// CapabilityVaultAdmin covers vault lifecycle and key rotation.
	CapabilityVaultAdmin Capability = "vault_admin"
	// CapabilityTokenOps covers tokenize, detokenize, bulk, search, and revoke.
	CapabilityTokenOps Capability = "token_ops"
	// CapabilityAuditRead covers audit logs, security alerts, and compliance reports.
	CapabilityAuditRead Capability = "audit_read"
)

// rolePermissions maps each role to its granted capabilities.
var rolePermissions = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapabilityVaultAdmin: true,
		CapabilityTokenOps:   true,
		CapabilityAuditRead:  true,
	},
	RoleOperator: {
		CapabilityTokenOps: true,
	},
	RoleAuditor: {
		CapabilityAuditRead: true,
	},
}

// Status represents the lifecycle state of an API key.
type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// APIKey represents an authentication credential for the API.
// The plain key is shown once at creation; only the Argon2id hash of its
// secret half is stored alongside the plaintext lookup prefix.
type APIKey struct {
	ID         uuid.UUID
	Name       string
	Prefix     string
	SecretHash string
	Role       Role
	Status     Status
	ExpiresAt  *time.Time
	LastUsedAt *time.Time
	CreatedAt  time.Time
	RevokedAt  *time.Time
}

// NewAPIKey creates an active API key with the given identity material.
func NewAPIKey(name, prefix, secretHash string, role Role, expiresAt *time.Time, now time.Time) *APIKey {
	return &APIKey{
		ID:         uuid.Must(uuid.NewV7()),
		Name:       name,
		Prefix:     prefix,
		SecretHash: secretHash,
		Role:       role,
		Status:     StatusActive,
		ExpiresAt:  expiresAt,
		CreatedAt:  now,
	}
}

// Can reports whether the key's role grants the capability.
func (k *APIKey) Can(capability Capability) bool {
	perms, ok := rolePermissions[k.Role]
	if !ok {
		return false
	}
	return perms[capability]
}

// IsUsable reports whether the key may authenticate requests at the given time.
func (k *APIKey) IsUsable(now time.Time) bool {
	if k.Status != StatusActive {
		return false
	}
	if k.ExpiresAt != nil && !now.Before(*k.ExpiresAt) {
		return false
	}
	return true
}

// Revoke permanently disables the key.
func (k *APIKey) Revoke(now time.Time) error {
	if k.Status == StatusRevoked {
		return ErrAlreadyRevoked
	}
	k.Status = StatusRevoked
	k.RevokedAt = &now
	return nil
}

// RecordUsage stamps the last successful authentication time.
func (k *APIKey) RecordUsage(now time.Time) {
	k.LastUsedAt = &now
}
