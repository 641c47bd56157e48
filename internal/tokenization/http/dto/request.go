// Package dto provides data transfer objects for tokenization HTTP request and response handling.
package dto

import (
	"encoding/base64"
	"time"

	validation "github.com/jellydator/validation"

	tokenizationDomain "github.com/allisson/tokenvault/internal/tokenization/domain"
	tokenizationUseCase "github.com/allisson/tokenvault/internal/tokenization/usecase"
	customValidation "github.com/allisson/tokenvault/internal/validation"
)

// TokenizeRequest contains the parameters for tokenizing a value.
type TokenizeRequest struct {
	Value     string         `json:"value"` // Base64-encoded sensitive value
	TokenType string         `json:"token_type,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
}

// Validate checks if the tokenize request is valid.
func (r *TokenizeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Value,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Base64,
		),
		validation.Field(&r.TokenType,
			customValidation.OneOf("random", "format_preserving", "sequential"),
		),
	)
}

// ToInput converts the request to the use case input. The caller has already
// validated the base64 encoding.
func (r *TokenizeRequest) ToInput() (*tokenizationUseCase.TokenizeInput, error) {
	value, err := base64.StdEncoding.DecodeString(r.Value)
	if err != nil {
		return nil, err
	}

	tokenType := tokenizationDomain.TypeRandom
	if r.TokenType != "" {
		tokenType = tokenizationDomain.TokenType(r.TokenType)
	}

	return &tokenizationUseCase.TokenizeInput{
		Value:     value,
		TokenType: tokenType,
		Metadata:  r.Metadata,
		ExpiresAt: r.ExpiresAt,
	}, nil
}

// BulkTokenizeRequest contains a batch of tokenize items.
type BulkTokenizeRequest struct {
	Items []TokenizeRequest `json:"items"`
}

// Validate checks if the bulk tokenize request is valid.
func (r *BulkTokenizeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Items,
			validation.Required,
			validation.Length(1, 0),
		),
	)
}

// DetokenizeRequest contains the parameters for detokenizing a value.
type DetokenizeRequest struct {
	Token string `json:"token"`
}

// Validate checks if the detokenize request is valid.
func (r *DetokenizeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// BulkDetokenizeRequest contains a batch of token values to detokenize.
type BulkDetokenizeRequest struct {
	Tokens []string `json:"tokens"`
}

// Validate checks if the bulk detokenize request is valid.
func (r *BulkDetokenizeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Tokens,
			validation.Required,
			validation.Length(1, 0),
			validation.Each(customValidation.NotBlank),
		),
	)
}

// RevokeTokenRequest contains the parameters for revoking a token.
type RevokeTokenRequest struct {
	Token  string `json:"token"`
	Reason string `json:"reason,omitempty"`
}

// Validate checks if the revoke token request is valid.
func (r *RevokeTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// SearchTokensRequest contains search criteria over unencrypted token attributes.
type SearchTokensRequest struct {
	TokenType     string         `json:"token_type,omitempty"`
	Status        string         `json:"status,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAfter  *time.Time     `json:"created_after,omitempty"`
	CreatedBefore *time.Time     `json:"created_before,omitempty"`
	Limit         int            `json:"limit,omitempty"`
}

// Validate checks if the search request is valid.
func (r *SearchTokensRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TokenType,
			customValidation.OneOf("random", "format_preserving", "sequential"),
		),
		validation.Field(&r.Status,
			customValidation.OneOf("active", "revoked", "expired", "compromised"),
		),
		validation.Field(&r.Limit,
			validation.Min(0),
		),
	)
}

// ToCriteria converts the request to domain search criteria for the vault.
func (r *SearchTokensRequest) ToCriteria(maxResults int) tokenizationDomain.SearchCriteria {
	criteria := tokenizationDomain.SearchCriteria{
		Metadata:      r.Metadata,
		CreatedAfter:  r.CreatedAfter,
		CreatedBefore: r.CreatedBefore,
		Limit:         r.Limit,
	}

	if r.TokenType != "" {
		tokenType := tokenizationDomain.TokenType(r.TokenType)
		criteria.TokenType = &tokenType
	}
	if r.Status != "" {
		status := tokenizationDomain.Status(r.Status)
		criteria.Status = &status
	}
	if criteria.Limit <= 0 || criteria.Limit > maxResults {
		criteria.Limit = maxResults
	}

	return criteria
}
