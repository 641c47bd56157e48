package domain

import (
	"time"

	"github.com/google/uuid"
)

// SearchCriteria filters token lookups. Search never touches encrypted data:
// it matches only on unencrypted columns and metadata.
type SearchCriteria struct {
	VaultID       uuid.UUID
	TokenType     *TokenType
	Status        *Status
	Metadata      map[string]any
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Limit         int
}

// StatusCounts aggregates token counts per status for a vault.
type StatusCounts struct {
	Active      int64
	Revoked     int64
	Expired     int64
	Compromised int64
}

// Total returns the sum across all statuses.
func (c StatusCounts) Total() int64 {
	return c.Active + c.Revoked + c.Expired + c.Compromised
}
