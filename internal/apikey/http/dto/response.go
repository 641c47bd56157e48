package dto

import (
	"time"

	"github.com/google/uuid"

	apikeyDomain "github.com/allisson/tokenvault/internal/apikey/domain"
)

// APIKeyResponse represents an API key in API responses. Secret hashes are
// never exposed.
type APIKeyResponse struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Prefix     string     `json:"prefix"`
	Role       string     `json:"role"`
	Status     string     `json:"status"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
}

// MapAPIKeyToResponse converts a domain API key to its API representation.
func MapAPIKeyToResponse(key *apikeyDomain.APIKey) APIKeyResponse {
	return APIKeyResponse{
		ID:         key.ID,
		Name:       key.Name,
		Prefix:     key.Prefix,
		Role:       string(key.Role),
		Status:     string(key.Status),
		ExpiresAt:  key.ExpiresAt,
		LastUsedAt: key.LastUsedAt,
		CreatedAt:  key.CreatedAt,
		RevokedAt:  key.RevokedAt,
	}
}

// CreateAPIKeyResponse carries the plain key exactly once at creation.
type CreateAPIKeyResponse struct {
	APIKeyResponse
	Key string `json:"key"`
}

// ListAPIKeysResponse wraps a page of API keys.
type ListAPIKeysResponse struct {
	APIKeys []APIKeyResponse `json:"api_keys"`
	Offset  int              `json:"offset"`
	Limit   int              `json:"limit"`
}

// MapAPIKeysToListResponse converts a page of domain API keys to the API representation.
func MapAPIKeysToListResponse(keys []*apikeyDomain.APIKey, offset, limit int) ListAPIKeysResponse {
	items := make([]APIKeyResponse, 0, len(keys))
	for _, key := range keys {
		items = append(items, MapAPIKeyToResponse(key))
	}
	return ListAPIKeysResponse{APIKeys: items, Offset: offset, Limit: limit}
}
