package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VaultKey is one version of a vault's encryption key lineage. At most one key
// per vault is active at any time; rotation retires the active version and
// activates the next one atomically.
type VaultKey struct {
	ID           uuid.UUID
	VaultID      uuid.UUID
	KeyVersion   uint
	KeyReference string
	// EncryptedKey holds the KMS-wrapped key material. Empty when the local
	// HKDF resolver derives keys from the key reference alone.
	EncryptedKey []byte
	// KeyHash is the SHA-256 hex digest of the raw key material, used to detect
	// stored-key corruption without unwrapping.
	KeyHash     string
	Status      KeyStatus
	ActivatedAt time.Time
	RetiredAt   *time.Time
}

// IsActive reports whether this key version can encrypt new payloads.
func (k *VaultKey) IsActive() bool {
	return k.Status == KeyStatusActive
}

// Retire marks the key as retired. Retired keys still decrypt old payloads.
func (k *VaultKey) Retire(now time.Time) {
	k.Status = KeyStatusRetired
	k.RetiredAt = &now
}

// NewKeyReference builds the deterministic opaque key reference for a vault
// key version. References are stable identifiers, not secrets.
func NewKeyReference(vaultID uuid.UUID, version uint) string {
	return fmt.Sprintf("vk-%s-v%d", vaultID, version)
}
