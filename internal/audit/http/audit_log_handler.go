// Package http provides HTTP handlers for audit log queries.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditDomain "github.com/allisson/tokenvault/internal/audit/domain"
	"github.com/allisson/tokenvault/internal/audit/http/dto"
	auditUseCase "github.com/allisson/tokenvault/internal/audit/usecase"
	"github.com/allisson/tokenvault/internal/httputil"
)

// AuditLogHandler handles HTTP requests for audit log queries.
// Audit records are read-only over HTTP; writes happen only through the
// asynchronous pipeline.
type AuditLogHandler struct {
	auditUseCase auditUseCase.AuditUseCase
	logger       *slog.Logger
}

// NewAuditLogHandler creates a new audit log handler with required dependencies.
func NewAuditLogHandler(auditUseCase auditUseCase.AuditUseCase, logger *slog.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		auditUseCase: auditUseCase,
		logger:       logger,
	}
}

// ListHandler retrieves audit records matching query filters, newest first.
// GET /v1/audit-logs - Requires audit read capability.
func (h *AuditLogHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	filter, err := buildListFilter(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	filter.Offset = offset
	filter.Limit = limit

	logs, err := h.auditUseCase.List(c.Request.Context(), filter)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuditLogsToListResponse(logs, offset, limit))
}

// GetHandler retrieves an audit record by ID.
// GET /v1/audit-logs/:id - Requires audit read capability.
func (h *AuditLogHandler) GetHandler(c *gin.Context) {
	logID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid audit log id: must be a valid UUID"), h.logger)
		return
	}

	log, err := h.auditUseCase.Get(c.Request.Context(), logID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuditLogToResponse(log))
}

// SummaryHandler aggregates audit activity over a window. Defaults to the
// last 24 hours when no window is given.
// GET /v1/audit-logs/summary - Requires audit read capability.
func (h *AuditLogHandler) SummaryHandler(c *gin.Context) {
	from, to, err := parseWindow(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	summary, err := h.auditUseCase.GetSummary(c.Request.Context(), from, to)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSummaryToResponse(summary))
}

// buildListFilter assembles the audit list filter from query parameters.
func buildListFilter(c *gin.Context) (auditDomain.ListFilter, error) {
	var filter auditDomain.ListFilter

	if v := c.Query("vault_id"); v != "" {
		vaultID, err := uuid.Parse(v)
		if err != nil {
			return filter, fmt.Errorf("invalid vault_id parameter: must be a valid UUID")
		}
		filter.VaultID = &vaultID
	}
	if v := c.Query("operation"); v != "" {
		filter.Operation = &v
	}
	if v := c.Query("result"); v != "" {
		result := auditDomain.Result(v)
		filter.Result = &result
	}
	if v := c.Query("risk_level"); v != "" {
		riskLevel := auditDomain.RiskLevel(v)
		filter.RiskLevel = &riskLevel
	}
	if v := c.Query("ip_address"); v != "" {
		filter.IPAddress = &v
	}
	if v := c.Query("user_id"); v != "" {
		filter.UserID = &v
	}
	if c.Query("pci_only") == "true" {
		filter.PCIOnly = true
	}
	if v := c.Query("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, fmt.Errorf("invalid from parameter: must be an RFC 3339 timestamp")
		}
		filter.From = &from
	}
	if v := c.Query("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, fmt.Errorf("invalid to parameter: must be an RFC 3339 timestamp")
		}
		filter.To = &to
	}

	return filter, nil
}

// parseWindow parses from/to query parameters, defaulting to the last 24 hours.
func parseWindow(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.Add(-24 * time.Hour)
	to := now

	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from parameter: must be an RFC 3339 timestamp")
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to parameter: must be an RFC 3339 timestamp")
		}
		to = parsed
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid window: from must be before to")
	}

	return from, to, nil
}
