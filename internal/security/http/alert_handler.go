// Package http provides HTTP handlers for security alert management.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/tokenvault/internal/httputil"
	securityDomain "github.com/allisson/tokenvault/internal/security/domain"
	"github.com/allisson/tokenvault/internal/security/http/dto"
	securityUseCase "github.com/allisson/tokenvault/internal/security/usecase"
	customValidation "github.com/allisson/tokenvault/internal/validation"
)

// AlertHandler handles HTTP requests for security alert triage.
type AlertHandler struct {
	alertUseCase securityUseCase.AlertUseCase
	logger       *slog.Logger
}

// NewAlertHandler creates a new alert handler with required dependencies.
func NewAlertHandler(alertUseCase securityUseCase.AlertUseCase, logger *slog.Logger) *AlertHandler {
	return &AlertHandler{
		alertUseCase: alertUseCase,
		logger:       logger,
	}
}

// ListHandler retrieves alerts matching query filters, newest first.
// GET /v1/security-alerts - Requires audit read capability.
func (h *AlertHandler) ListHandler(c *gin.Context) {
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

	alerts, err := h.alertUseCase.List(c.Request.Context(), filter)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAlertsToListResponse(alerts, offset, limit))
}

// GetHandler retrieves an alert by ID.
// GET /v1/security-alerts/:id - Requires audit read capability.
func (h *AlertHandler) GetHandler(c *gin.Context) {
	alertID, err := parseAlertID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	alert, err := h.alertUseCase.Get(c.Request.Context(), alertID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAlertToResponse(alert))
}

// AcknowledgeHandler transitions an open alert to acknowledged.
// POST /v1/security-alerts/:id/acknowledge - Requires audit read capability.
func (h *AlertHandler) AcknowledgeHandler(c *gin.Context) {
	alertID, err := parseAlertID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var req dto.AcknowledgeAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	alert, err := h.alertUseCase.Acknowledge(c.Request.Context(), alertID, req.By)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAlertToResponse(alert))
}

// ResolveHandler closes an open or acknowledged alert.
// POST /v1/security-alerts/:id/resolve - Requires audit read capability.
func (h *AlertHandler) ResolveHandler(c *gin.Context) {
	h.close(c, h.alertUseCase.Resolve)
}

// FalsePositiveHandler closes an alert as mistaken detection.
// POST /v1/security-alerts/:id/false-positive - Requires audit read capability.
func (h *AlertHandler) FalsePositiveHandler(c *gin.Context) {
	h.close(c, h.alertUseCase.MarkFalsePositive)
}

// BulkAcknowledgeHandler acknowledges a batch of alerts with per-item isolation.
// POST /v1/security-alerts/bulk-acknowledge - Requires audit read capability.
func (h *AlertHandler) BulkAcknowledgeHandler(c *gin.Context) {
	h.bulkAction(c, func(ctx context.Context, alertID uuid.UUID, by, _ string) error {
		_, err := h.alertUseCase.Acknowledge(ctx, alertID, by)
		return err
	})
}

// BulkResolveHandler resolves a batch of alerts with per-item isolation.
// POST /v1/security-alerts/bulk-resolve - Requires audit read capability.
func (h *AlertHandler) BulkResolveHandler(c *gin.Context) {
	h.bulkAction(c, func(ctx context.Context, alertID uuid.UUID, by, note string) error {
		_, err := h.alertUseCase.Resolve(ctx, alertID, by, note)
		return err
	})
}

// SeverityCountsHandler reports alert counts per severity over the last 24 hours.
// GET /v1/security-alerts/severity-counts - Requires audit read capability.
func (h *AlertHandler) SeverityCountsHandler(c *gin.Context) {
	since := time.Now().UTC().Add(-24 * time.Hour)
	if v := c.Query("since"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httputil.HandleBadRequestGin(c, fmt.Errorf("invalid since parameter: must be an RFC 3339 timestamp"), h.logger)
			return
		}
		since = parsed
	}

	counts, err := h.alertUseCase.CountBySeverity(c.Request.Context(), since)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.SeverityCountsResponse{
		Counts: make(map[string]int64, len(counts)),
		Since:  since,
	}
	for severity, count := range counts {
		response.Counts[string(severity)] = count
	}

	c.JSON(http.StatusOK, response)
}

// closeFn matches the Resolve/MarkFalsePositive use case signatures.
type closeFn func(ctx context.Context, alertID uuid.UUID, by, note string) (*securityDomain.SecurityAlert, error)

func (h *AlertHandler) close(c *gin.Context, fn closeFn) {
	alertID, err := parseAlertID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var req dto.ResolveAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	alert, err := fn(c.Request.Context(), alertID, req.By, req.Note)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAlertToResponse(alert))
}

// bulkActionFn applies one alert transition inside a bulk request.
type bulkActionFn func(ctx context.Context, alertID uuid.UUID, by, note string) error

func (h *AlertHandler) bulkAction(c *gin.Context, fn bulkActionFn) {
	var req dto.BulkAlertActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	response := dto.BulkAlertActionResponse{
		Items: make([]dto.BulkAlertActionItemResponse, 0, len(req.AlertIDs)),
	}
	for _, idStr := range req.AlertIDs {
		item := dto.BulkAlertActionItemResponse{AlertID: idStr}

		alertID, err := uuid.Parse(idStr)
		if err != nil {
			item.Error = "invalid alert id"
		} else if err := fn(c.Request.Context(), alertID, req.By, req.Note); err != nil {
			item.Error = err.Error()
		}

		if item.Error == "" {
			response.Succeeded++
		} else {
			response.Failed++
		}
		response.Items = append(response.Items, item)
	}

	c.JSON(http.StatusOK, response)
}

// buildListFilter assembles the alert list filter from query parameters.
func buildListFilter(c *gin.Context) (securityDomain.ListFilter, error) {
	var filter securityDomain.ListFilter

	if v := c.Query("status"); v != "" {
		status := securityDomain.AlertStatus(v)
		filter.Status = &status
	}
	if v := c.Query("severity"); v != "" {
		severity := securityDomain.Severity(v)
		filter.Severity = &severity
	}
	if v := c.Query("alert_type"); v != "" {
		alertType := securityDomain.AlertType(v)
		filter.AlertType = &alertType
	}
	if v := c.Query("vault_id"); v != "" {
		vaultID, err := uuid.Parse(v)
		if err != nil {
			return filter, fmt.Errorf("invalid vault_id parameter: must be a valid UUID")
		}
		filter.VaultID = &vaultID
	}
	if v := c.Query("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, fmt.Errorf("invalid from parameter: must be an RFC 3339 timestamp")
		}
		filter.From = &from
	}

	return filter, nil
}

func parseAlertID(c *gin.Context) (uuid.UUID, error) {
	alertID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid alert id: must be a valid UUID")
	}
	return alertID, nil
}
