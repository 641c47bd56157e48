package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apikeyDomain "github.com/allisson/tokenvault/internal/apikey/domain"
	"github.com/allisson/tokenvault/internal/apikey/http/dto"
	apikeyUseCase "github.com/allisson/tokenvault/internal/apikey/usecase"
	"github.com/allisson/tokenvault/internal/httputil"
	customValidation "github.com/allisson/tokenvault/internal/validation"
)

// APIKeyHandler handles HTTP requests for API key management.
type APIKeyHandler struct {
	keyUseCase apikeyUseCase.APIKeyUseCase
	logger     *slog.Logger
}

// NewAPIKeyHandler creates a new API key handler with required dependencies.
func NewAPIKeyHandler(keyUseCase apikeyUseCase.APIKeyUseCase, logger *slog.Logger) *APIKeyHandler {
	return &APIKeyHandler{
		keyUseCase: keyUseCase,
		logger:     logger,
	}
}

// CreateHandler issues a new API key. The plain key appears in this response
// exactly once and is never retrievable afterwards.
// POST /v1/api-keys - Requires vault admin capability.
func (h *APIKeyHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateAPIKeyRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	plainKey, key, err := h.keyUseCase.Create(
		c.Request.Context(),
		req.Name,
		apikeyDomain.Role(req.Role),
		req.ExpiresAt,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateAPIKeyResponse{
		APIKeyResponse: dto.MapAPIKeyToResponse(key),
		Key:            plainKey,
	})
}

// GetHandler retrieves an API key by ID.
// GET /v1/api-keys/:id - Requires vault admin capability.
func (h *APIKeyHandler) GetHandler(c *gin.Context) {
	keyID, err := parseKeyID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	key, err := h.keyUseCase.Get(c.Request.Context(), keyID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAPIKeyToResponse(key))
}

// ListHandler retrieves API keys newest first with pagination.
// GET /v1/api-keys - Requires vault admin capability.
func (h *APIKeyHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	keys, err := h.keyUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAPIKeysToListResponse(keys, offset, limit))
}

// RevokeHandler permanently disables an API key.
// POST /v1/api-keys/:id/revoke - Requires vault admin capability.
func (h *APIKeyHandler) RevokeHandler(c *gin.Context) {
	keyID, err := parseKeyID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	key, err := h.keyUseCase.Revoke(c.Request.Context(), keyID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAPIKeyToResponse(key))
}

func parseKeyID(c *gin.Context) (uuid.UUID, error) {
	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid api key id: must be a valid UUID")
	}
	return keyID, nil
}
