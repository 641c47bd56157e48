// Package http provides HTTP handlers for compliance reporting.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/tokenvault/internal/compliance/http/dto"
	complianceUseCase "github.com/allisson/tokenvault/internal/compliance/usecase"
	"github.com/allisson/tokenvault/internal/httputil"
	customValidation "github.com/allisson/tokenvault/internal/validation"
)

// ReportHandler handles HTTP requests for compliance reports.
type ReportHandler struct {
	complianceUseCase complianceUseCase.ComplianceUseCase
	logger            *slog.Logger
}

// NewReportHandler creates a new report handler with required dependencies.
func NewReportHandler(complianceUseCase complianceUseCase.ComplianceUseCase, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		complianceUseCase: complianceUseCase,
		logger:            logger,
	}
}

// GenerateHandler creates a pending report and enqueues the batch job.
// POST /v1/compliance/reports - Requires audit read capability.
// Returns 202 Accepted; poll the report until it reaches a terminal state.
func (h *ReportHandler) GenerateHandler(c *gin.Context) {
	input, ok := h.bindInput(c)
	if !ok {
		return
	}

	report, err := h.complianceUseCase.GenerateReport(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusAccepted, dto.MapReportToResponse(report))
}

// DataHandler scores a window synchronously without persisting a report.
// POST /v1/compliance/data - Requires audit read capability.
func (h *ReportHandler) DataHandler(c *gin.Context) {
	input, ok := h.bindInput(c)
	if !ok {
		return
	}

	data, err := h.complianceUseCase.GenerateData(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapComplianceDataToResponse(data))
}

// GetHandler retrieves a report by ID.
// GET /v1/compliance/reports/:id - Requires audit read capability.
func (h *ReportHandler) GetHandler(c *gin.Context) {
	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid report id: must be a valid UUID"), h.logger)
		return
	}

	report, err := h.complianceUseCase.Get(c.Request.Context(), reportID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapReportToResponse(report))
}

// ListHandler retrieves reports newest first with pagination.
// GET /v1/compliance/reports - Requires audit read capability.
func (h *ReportHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	reports, err := h.complianceUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapReportsToListResponse(reports, offset, limit))
}

// bindInput parses and validates the shared generate/data request body.
func (h *ReportHandler) bindInput(c *gin.Context) (*complianceUseCase.GenerateReportInput, bool) {
	var req dto.GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return nil, false
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return nil, false
	}

	input, err := req.ToInput()
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid vault_id: must be a valid UUID"), h.logger)
		return nil, false
	}

	return input, true
}
