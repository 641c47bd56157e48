package domain

import (
	"time"

	"github.com/google/uuid"
)

// Token maps an opaque token value to an encrypted original value within a
// vault. Every status transition appends a timestamped reason into metadata;
// the row itself is destroyed only by retention-policy execution.
type Token struct {
	ID         uuid.UUID
	VaultID    uuid.UUID
	TokenValue string
	// FormatPreservedToken mirrors TokenValue for format-preserving tokens,
	// nil for other types.
	FormatPreservedToken *string
	TokenType            TokenType
	// Metadata stores optional unencrypted context (e.g., batch ids, transition
	// reasons). Never store sensitive data here: it is NOT encrypted.
	Metadata  map[string]any
	ExpiresAt *time.Time
	// KeyVersion is the vault key version used to encrypt this token's payload.
	KeyVersion    uint
	Status        Status
	EncryptedData []byte
	Nonce         []byte
	// DataHash is the SHA-256 hex digest of the plaintext, the dedup key within
	// a vault.
	DataHash string
	// Checksum binds TokenValue to DataHash under a server secret so row
	// tampering is detectable without decryption.
	Checksum   string
	UsageCount int64
	LastUsedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsExpired checks if the token has passed its expiry. All comparisons use UTC.
func (t *Token) IsExpired(now time.Time) bool {
	if t.ExpiresAt == nil {
		return false
	}
	return now.UTC().After(t.ExpiresAt.UTC())
}

// IsUsable reports whether the token can serve detokenize/usage operations.
func (t *Token) IsUsable(now time.Time) bool {
	return t.Status == StatusActive && !t.IsExpired(now)
}

// WillExpireWithin reports whether the token expires inside the window.
// Pre-alert policy hook for external schedulers.
func (t *Token) WillExpireWithin(window time.Duration, now time.Time) bool {
	if t.ExpiresAt == nil {
		return false
	}
	return t.ExpiresAt.UTC().Before(now.UTC().Add(window))
}

// RecordUsage bumps the usage counter. Fails with ErrTokenNotUsable unless the
// token is active and not expired.
func (t *Token) RecordUsage(now time.Time) error {
	if !t.IsUsable(now) {
		return ErrTokenNotUsable
	}
	t.UsageCount++
	used := now.UTC()
	t.LastUsedAt = &used
	t.UpdatedAt = used
	return nil
}

// Revoke transitions the token to revoked. Fails with ErrTokenNotRevocable
// unless the token is active.
func (t *Token) Revoke(reason string, now time.Time) error {
	if t.Status != StatusActive {
		return ErrTokenNotRevocable
	}
	t.Status = StatusRevoked
	t.appendTransition("revoked", reason, now)
	return nil
}

// Expire transitions the token to expired. Unconditional: scheduled sweeps and
// expiry deduced from expires_at both land here.
func (t *Token) Expire(now time.Time) {
	t.Status = StatusExpired
	t.appendTransition("expired", "expiry elapsed", now)
}

// MarkCompromised transitions the token to compromised. Unconditional: used on
// integrity-check failure or operator flag.
func (t *Token) MarkCompromised(reason string, now time.Time) {
	t.Status = StatusCompromised
	t.appendTransition("compromised", reason, now)
}

// appendTransition records an immutable reason/timestamp entry in metadata.
func (t *Token) appendTransition(state, reason string, now time.Time) {
	if t.Metadata == nil {
		t.Metadata = make(map[string]any)
	}
	t.Metadata[state+"_reason"] = reason
	t.Metadata[state+"_at"] = now.UTC().Format(time.RFC3339)
	t.UpdatedAt = now.UTC()
}

// ValidateTokenValue enforces token value constraints: length bounds and a
// rejection of all-identical-character values.
func ValidateTokenValue(value string) error {
	if len(value) < MinTokenLength || len(value) > MaxTokenLength {
		return ErrInvalidTokenValue
	}

	first := value[0]
	allSame := true
	for i := 1; i < len(value); i++ {
		if value[i] != first {
			allSame = false
			break
		}
	}
	if allSame {
		return ErrInvalidTokenValue
	}
	return nil
}
