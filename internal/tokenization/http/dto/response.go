package dto

import (
	"encoding/base64"
	"time"

	"github.com/google/uuid"

	tokenizationDomain "github.com/allisson/tokenvault/internal/tokenization/domain"
	tokenizationUseCase "github.com/allisson/tokenvault/internal/tokenization/usecase"
)

// TokenResponse represents a token in API responses. Encrypted payloads,
// nonces, and data hashes are never exposed.
type TokenResponse struct {
	ID         uuid.UUID      `json:"id"`
	VaultID    uuid.UUID      `json:"vault_id"`
	Token      string         `json:"token"`
	TokenType  string         `json:"token_type"`
	Status     string         `json:"status"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	ExpiresAt  *time.Time     `json:"expires_at,omitempty"`
	UsageCount int64          `json:"usage_count"`
	LastUsedAt *time.Time     `json:"last_used_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// MapTokenToResponse converts a domain token to its API representation.
func MapTokenToResponse(token *tokenizationDomain.Token) TokenResponse {
	return TokenResponse{
		ID:         token.ID,
		VaultID:    token.VaultID,
		Token:      token.TokenValue,
		TokenType:  token.TokenType.String(),
		Status:     string(token.Status),
		Metadata:   token.Metadata,
		ExpiresAt:  token.ExpiresAt,
		UsageCount: token.UsageCount,
		LastUsedAt: token.LastUsedAt,
		CreatedAt:  token.CreatedAt,
	}
}

// TokenizeResponse reports the outcome of a tokenize call.
type TokenizeResponse struct {
	TokenResponse
	Deduplicated bool `json:"deduplicated"`
}

// MapTokenizeResultToResponse converts a tokenize result to the API representation.
func MapTokenizeResultToResponse(result *tokenizationUseCase.TokenizeResult) TokenizeResponse {
	return TokenizeResponse{
		TokenResponse: MapTokenToResponse(result.Token),
		Deduplicated:  result.Deduplicated,
	}
}

// DetokenizeResponse carries the recovered value, base64-encoded.
type DetokenizeResponse struct {
	Value string `json:"value"`
}

// BulkTokenizeItemResponse is the per-item outcome of a bulk tokenize call.
type BulkTokenizeItemResponse struct {
	Index        int            `json:"index"`
	Token        *TokenResponse `json:"token,omitempty"`
	Deduplicated bool           `json:"deduplicated,omitempty"`
	Error        string         `json:"error,omitempty"`
}

// BulkTokenizeResponse wraps a bulk tokenize outcome.
type BulkTokenizeResponse struct {
	Items     []BulkTokenizeItemResponse `json:"items"`
	Succeeded int                        `json:"succeeded"`
	Failed    int                        `json:"failed"`
}

// MapBulkTokenizeResultsToResponse converts bulk tokenize results to the API representation.
func MapBulkTokenizeResultsToResponse(results []tokenizationUseCase.BulkTokenizeItemResult) BulkTokenizeResponse {
	response := BulkTokenizeResponse{
		Items: make([]BulkTokenizeItemResponse, 0, len(results)),
	}
	for _, result := range results {
		item := BulkTokenizeItemResponse{
			Index:        result.Index,
			Deduplicated: result.Deduplicated,
			Error:        result.Error,
		}
		if result.Token != nil {
			mapped := MapTokenToResponse(result.Token)
			item.Token = &mapped
		}
		if result.Error == "" {
			response.Succeeded++
		} else {
			response.Failed++
		}
		response.Items = append(response.Items, item)
	}
	return response
}

// BulkDetokenizeItemResponse is the per-item outcome of a bulk detokenize call.
type BulkDetokenizeItemResponse struct {
	Index int    `json:"index"`
	Token string `json:"token"`
	Value string `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

// BulkDetokenizeResponse wraps a bulk detokenize outcome.
type BulkDetokenizeResponse struct {
	Items     []BulkDetokenizeItemResponse `json:"items"`
	Succeeded int                          `json:"succeeded"`
	Failed    int                          `json:"failed"`
}

// MapBulkDetokenizeResultsToResponse converts bulk detokenize results to the API representation.
func MapBulkDetokenizeResultsToResponse(results []tokenizationUseCase.BulkDetokenizeItemResult) BulkDetokenizeResponse {
	response := BulkDetokenizeResponse{
		Items: make([]BulkDetokenizeItemResponse, 0, len(results)),
	}
	for _, result := range results {
		item := BulkDetokenizeItemResponse{
			Index: result.Index,
			Token: result.TokenValue,
			Error: result.Error,
		}
		if result.Error == "" {
			item.Value = base64.StdEncoding.EncodeToString(result.Value)
			response.Succeeded++
		} else {
			response.Failed++
		}
		response.Items = append(response.Items, item)
	}
	return response
}

// SearchTokensResponse wraps a token search result set.
type SearchTokensResponse struct {
	Tokens []TokenResponse `json:"tokens"`
	Count  int             `json:"count"`
}

// MapTokensToSearchResponse converts a token result set to the API representation.
func MapTokensToSearchResponse(tokens []*tokenizationDomain.Token) SearchTokensResponse {
	items := make([]TokenResponse, 0, len(tokens))
	for _, token := range tokens {
		items = append(items, MapTokenToResponse(token))
	}
	return SearchTokensResponse{Tokens: items, Count: len(items)}
}

// StatusCountsResponse aggregates per-status token counts for a vault.
type StatusCountsResponse struct {
	Active      int64 `json:"active"`
	Revoked     int64 `json:"revoked"`
	Expired     int64 `json:"expired"`
	Compromised int64 `json:"compromised"`
	Total       int64 `json:"total"`
}

// MapStatusCountsToResponse converts status counts to the API representation.
func MapStatusCountsToResponse(counts tokenizationDomain.StatusCounts) StatusCountsResponse {
	return StatusCountsResponse{
		Active:      counts.Active,
		Revoked:     counts.Revoked,
		Expired:     counts.Expired,
		Compromised: counts.Compromised,
		Total:       counts.Total(),
	}
}
