// Package http provides HTTP handlers for vault management operations.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apikeyHTTP "github.com/allisson/tokenvault/internal/apikey/http"
	auditDomain "github.com/allisson/tokenvault/internal/audit/domain"
	"github.com/allisson/tokenvault/internal/httputil"
	customValidation "github.com/allisson/tokenvault/internal/validation"
	vaultDomain "github.com/allisson/tokenvault/internal/vault/domain"
	"github.com/allisson/tokenvault/internal/vault/http/dto"
	vaultUseCase "github.com/allisson/tokenvault/internal/vault/usecase"
)

// VaultHandler handles HTTP requests for vault lifecycle and key rotation.
type VaultHandler struct {
	vaultUseCase vaultUseCase.VaultUseCase
	logger       *slog.Logger
}

// NewVaultHandler creates a new vault handler with required dependencies.
func NewVaultHandler(vaultUseCase vaultUseCase.VaultUseCase, logger *slog.Logger) *VaultHandler {
	return &VaultHandler{
		vaultUseCase: vaultUseCase,
		logger:       logger,
	}
}

// CreateHandler provisions a new vault with key version 1.
// POST /v1/vaults - Requires vault admin capability.
func (h *VaultHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateVaultRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	vault, err := h.vaultUseCase.Create(c.Request.Context(), req.ToInput(), apikeyHTTP.BuildRequestContext(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapVaultToResponse(vault))
}

// GetHandler retrieves a vault by ID.
// GET /v1/vaults/:id - Requires vault admin capability.
func (h *VaultHandler) GetHandler(c *gin.Context) {
	vaultID, err := parseVaultID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	vault, err := h.vaultUseCase.Get(c.Request.Context(), vaultID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapVaultToResponse(vault))
}

// ListHandler retrieves vaults ordered by name with pagination.
// GET /v1/vaults - Requires vault admin capability.
func (h *VaultHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	vaults, err := h.vaultUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapVaultsToListResponse(vaults, offset, limit))
}

// UpdateHandler applies mutable field changes to a vault.
// PATCH /v1/vaults/:id - Requires vault admin capability.
func (h *VaultHandler) UpdateHandler(c *gin.Context) {
	vaultID, err := parseVaultID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var req dto.UpdateVaultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	vault, err := h.vaultUseCase.Update(c.Request.Context(), vaultID, req.ToInput(), apikeyHTTP.BuildRequestContext(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapVaultToResponse(vault))
}

// ActivateHandler transitions a vault to active status.
// POST /v1/vaults/:id/activate - Requires vault admin capability.
func (h *VaultHandler) ActivateHandler(c *gin.Context) {
	h.transition(c, h.vaultUseCase.Activate)
}

// DeactivateHandler transitions a vault to inactive status.
// POST /v1/vaults/:id/deactivate - Requires vault admin capability.
func (h *VaultHandler) DeactivateHandler(c *gin.Context) {
	h.transition(c, h.vaultUseCase.Deactivate)
}

// ArchiveHandler transitions a vault to archived status.
// POST /v1/vaults/:id/archive - Requires vault admin capability.
func (h *VaultHandler) ArchiveHandler(c *gin.Context) {
	h.transition(c, h.vaultUseCase.Archive)
}

// RotateKeyHandler retires the active key version and activates the next one.
// POST /v1/vaults/:id/rotate-key - Requires vault admin capability.
func (h *VaultHandler) RotateKeyHandler(c *gin.Context) {
	vaultID, err := parseVaultID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	key, err := h.vaultUseCase.RotateKey(c.Request.Context(), vaultID, apikeyHTTP.BuildRequestContext(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.RotateKeyResponse{
		VaultID:     key.VaultID,
		KeyVersion:  key.KeyVersion,
		ActivatedAt: key.ActivatedAt,
	})
}

// StatisticsHandler summarizes vault utilization and key state.
// GET /v1/vaults/:id/stats - Requires vault admin capability.
func (h *VaultHandler) StatisticsHandler(c *gin.Context) {
	vaultID, err := parseVaultID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	stats, err := h.vaultUseCase.GetStatistics(c.Request.Context(), vaultID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapStatisticsToResponse(stats))
}

// transitionFn matches the Activate/Deactivate/Archive use case signatures.
type transitionFn func(ctx context.Context, vaultID uuid.UUID, reqCtx auditDomain.RequestContext) (*vaultDomain.Vault, error)

func (h *VaultHandler) transition(c *gin.Context, fn transitionFn) {
	vaultID, err := parseVaultID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	vault, err := fn(c.Request.Context(), vaultID, apikeyHTTP.BuildRequestContext(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapVaultToResponse(vault))
}

func parseVaultID(c *gin.Context) (uuid.UUID, error) {
	vaultID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid vault id: must be a valid UUID")
	}
	return vaultID, nil
}
