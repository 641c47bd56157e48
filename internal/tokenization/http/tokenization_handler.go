// Package http provides HTTP handlers for token operations.
package http

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apikeyHTTP "github.com/allisson/tokenvault/internal/apikey/http"
	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
	"github.com/allisson/tokenvault/internal/httputil"
	"github.com/allisson/tokenvault/internal/tokenization/http/dto"
	tokenizationUseCase "github.com/allisson/tokenvault/internal/tokenization/usecase"
	customValidation "github.com/allisson/tokenvault/internal/validation"
)

// TokenizationHandler handles HTTP requests for token operations.
// All routes are vault-scoped; the vault gate runs inside the use case.
type TokenizationHandler struct {
	tokenizationUseCase tokenizationUseCase.TokenizationUseCase
	searchMaxResults    int
	logger              *slog.Logger
}

// NewTokenizationHandler creates a new tokenization handler with required dependencies.
func NewTokenizationHandler(
	tokenizationUseCase tokenizationUseCase.TokenizationUseCase,
	searchMaxResults int,
	logger *slog.Logger,
) *TokenizationHandler {
	return &TokenizationHandler{
		tokenizationUseCase: tokenizationUseCase,
		searchMaxResults:    searchMaxResults,
		logger:              logger,
	}
}

// TokenizeHandler issues a token for a sensitive value, deduplicating against
// existing active tokens for the same plaintext.
// POST /v1/vaults/:id/tokenize - Requires token operations capability.
func (h *TokenizationHandler) TokenizeHandler(c *gin.Context) {
	vaultID, err := parseVaultID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var req dto.TokenizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input, err := req.ToInput()
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("value must be valid base64"), h.logger)
		return
	}
	defer cryptoDomain.Zero(input.Value)

	result, err := h.tokenizationUseCase.Tokenize(
		c.Request.Context(),
		vaultID,
		input,
		apikeyHTTP.BuildRequestContext(c),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	status := http.StatusCreated
	if result.Deduplicated {
		status = http.StatusOK
	}
	c.JSON(status, dto.MapTokenizeResultToResponse(result))
}

// DetokenizeHandler recovers the original value for a token.
// POST /v1/vaults/:id/detokenize - Requires token operations capability.
func (h *TokenizationHandler) DetokenizeHandler(c *gin.Context) {
	vaultID, err := parseVaultID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var req dto.DetokenizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	value, err := h.tokenizationUseCase.Detokenize(
		c.Request.Context(),
		vaultID,
		req.Token,
		apikeyHTTP.BuildRequestContext(c),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	// SECURITY: Zero plaintext from memory after encoding
	defer cryptoDomain.Zero(value)

	c.JSON(http.StatusOK, dto.DetokenizeResponse{
		Value: base64.StdEncoding.EncodeToString(value),
	})
}

// BulkTokenizeHandler tokenizes a batch with per-item isolation.
// POST /v1/vaults/:id/bulk-tokenize - Requires token operations capability.
func (h *TokenizationHandler) BulkTokenizeHandler(c *gin.Context) {
	vaultID, err := parseVaultID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var req dto.BulkTokenizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	inputs := make([]*tokenizationUseCase.TokenizeInput, 0, len(req.Items))
	for i, item := range req.Items {
		if err := item.Validate(); err != nil {
			httputil.HandleValidationErrorGin(
				c,
				customValidation.WrapValidationError(fmt.Errorf("item %d: %w", i, err)),
				h.logger,
			)
			return
		}
		input, err := item.ToInput()
		if err != nil {
			httputil.HandleBadRequestGin(c, fmt.Errorf("item %d: value must be valid base64", i), h.logger)
			return
		}
		inputs = append(inputs, input)
	}
	defer func() {
		for _, input := range inputs {
			cryptoDomain.Zero(input.Value)
		}
	}()

	results, err := h.tokenizationUseCase.BulkTokenize(
		c.Request.Context(),
		vaultID,
		inputs,
		apikeyHTTP.BuildRequestContext(c),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapBulkTokenizeResultsToResponse(results))
}

// BulkDetokenizeHandler detokenizes a batch with per-item isolation.
// POST /v1/vaults/:id/bulk-detokenize - Requires token operations capability.
func (h *TokenizationHandler) BulkDetokenizeHandler(c *gin.Context) {
	vaultID, err := parseVaultID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var req dto.BulkDetokenizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	results, err := h.tokenizationUseCase.BulkDetokenize(
		c.Request.Context(),
		vaultID,
		req.Tokens,
		apikeyHTTP.BuildRequestContext(c),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapBulkDetokenizeResultsToResponse(results)
	for _, result := range results {
		cryptoDomain.Zero(result.Value)
	}

	c.JSON(http.StatusOK, response)
}

// SearchHandler filters tokens by unencrypted attributes and metadata.
// POST /v1/vaults/:id/tokens/search - Requires token operations capability.
func (h *TokenizationHandler) SearchHandler(c *gin.Context) {
	vaultID, err := parseVaultID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var req dto.SearchTokensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	criteria := req.ToCriteria(h.searchMaxResults)
	criteria.VaultID = vaultID

	tokens, err := h.tokenizationUseCase.Search(
		c.Request.Context(),
		vaultID,
		criteria,
		apikeyHTTP.BuildRequestContext(c),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTokensToSearchResponse(tokens))
}

// RevokeHandler revokes an active token and releases its capacity slot.
// POST /v1/vaults/:id/tokens/revoke - Requires token operations capability.
func (h *TokenizationHandler) RevokeHandler(c *gin.Context) {
	vaultID, err := parseVaultID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var req dto.RevokeTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	token, err := h.tokenizationUseCase.RevokeToken(
		c.Request.Context(),
		vaultID,
		req.Token,
		req.Reason,
		apikeyHTTP.BuildRequestContext(c),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTokenToResponse(token))
}

// GetTokenHandler retrieves token attributes by value without decrypting.
// GET /v1/vaults/:id/tokens/:value - Requires token operations capability.
func (h *TokenizationHandler) GetTokenHandler(c *gin.Context) {
	vaultID, err := parseVaultID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	tokenValue := c.Param("value")
	if tokenValue == "" {
		httputil.HandleBadRequestGin(c, fmt.Errorf("token value is required in URL path"), h.logger)
		return
	}

	token, err := h.tokenizationUseCase.GetToken(c.Request.Context(), vaultID, tokenValue)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTokenToResponse(token))
}

// StatisticsHandler aggregates per-status token counts for a vault.
// GET /v1/vaults/:id/tokens/stats - Requires token operations capability.
func (h *TokenizationHandler) StatisticsHandler(c *gin.Context) {
	vaultID, err := parseVaultID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	counts, err := h.tokenizationUseCase.GetStatistics(c.Request.Context(), vaultID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapStatusCountsToResponse(counts))
}

func parseVaultID(c *gin.Context) (uuid.UUID, error) {
	vaultID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid vault id: must be a valid UUID")
	}
	return vaultID, nil
}
