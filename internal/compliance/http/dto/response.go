package dto

import (
	"time"

	"github.com/google/uuid"

	complianceDomain "github.com/allisson/tokenvault/internal/compliance/domain"
	complianceUseCase "github.com/allisson/tokenvault/internal/compliance/usecase"
)

// ReportResponse represents a compliance report in API responses.
type ReportResponse struct {
	ID              uuid.UUID                    `json:"id"`
	Ruleset         string                       `json:"ruleset"`
	VaultID         *uuid.UUID                   `json:"vault_id,omitempty"`
	PeriodStart     time.Time                    `json:"period_start"`
	PeriodEnd       time.Time                    `json:"period_end"`
	Status          string                       `json:"status"`
	Progress        int                          `json:"progress"`
	Score           *int                         `json:"score,omitempty"`
	RiskBand        *string                      `json:"risk_band,omitempty"`
	Violations      []complianceDomain.Violation `json:"violations,omitempty"`
	Recommendations []string                     `json:"recommendations,omitempty"`
	RecordCount     int64                        `json:"record_count"`
	ArtifactPath    *string                      `json:"artifact_path,omitempty"`
	ArtifactHash    *string                      `json:"artifact_hash,omitempty"`
	ErrorMessage    *string                      `json:"error_message,omitempty"`
	RequestedBy     string                       `json:"requested_by"`
	StartedAt       *time.Time                   `json:"started_at,omitempty"`
	CompletedAt     *time.Time                   `json:"completed_at,omitempty"`
	CreatedAt       time.Time                    `json:"created_at"`
	UpdatedAt       time.Time                    `json:"updated_at"`
}

// MapReportToResponse converts a domain report to its API representation.
func MapReportToResponse(report *complianceDomain.ComplianceReport) ReportResponse {
	var riskBand *string
	if report.RiskBand != nil {
		band := string(*report.RiskBand)
		riskBand = &band
	}

	return ReportResponse{
		ID:              report.ID,
		Ruleset:         string(report.Ruleset),
		VaultID:         report.VaultID,
		PeriodStart:     report.PeriodStart,
		PeriodEnd:       report.PeriodEnd,
		Status:          string(report.Status),
		Progress:        report.Progress,
		Score:           report.Score,
		RiskBand:        riskBand,
		Violations:      report.Violations,
		Recommendations: report.Recommendations,
		RecordCount:     report.RecordCount,
		ArtifactPath:    report.ArtifactPath,
		ArtifactHash:    report.ArtifactHash,
		ErrorMessage:    report.ErrorMessage,
		RequestedBy:     report.RequestedBy,
		StartedAt:       report.StartedAt,
		CompletedAt:     report.CompletedAt,
		CreatedAt:       report.CreatedAt,
		UpdatedAt:       report.UpdatedAt,
	}
}

// ListReportsResponse wraps a page of reports.
type ListReportsResponse struct {
	Reports []ReportResponse `json:"reports"`
	Offset  int              `json:"offset"`
	Limit   int              `json:"limit"`
}

// MapReportsToListResponse converts a page of domain reports to the API representation.
func MapReportsToListResponse(reports []*complianceDomain.ComplianceReport, offset, limit int) ListReportsResponse {
	items := make([]ReportResponse, 0, len(reports))
	for _, report := range reports {
		items = append(items, MapReportToResponse(report))
	}
	return ListReportsResponse{Reports: items, Offset: offset, Limit: limit}
}

// ComplianceDataResponse is the synchronous scoring result without persistence.
type ComplianceDataResponse struct {
	Ruleset         string                       `json:"ruleset"`
	PeriodStart     time.Time                    `json:"period_start"`
	PeriodEnd       time.Time                    `json:"period_end"`
	RecordCount     int64                        `json:"record_count"`
	Score           int                          `json:"score"`
	RiskBand        string                       `json:"risk_band"`
	Violations      []complianceDomain.Violation `json:"violations,omitempty"`
	Recommendations []string                     `json:"recommendations,omitempty"`
}

// MapComplianceDataToResponse converts a synchronous scoring result to the API representation.
func MapComplianceDataToResponse(data *complianceUseCase.ComplianceData) ComplianceDataResponse {
	return ComplianceDataResponse{
		Ruleset:         string(data.Ruleset),
		PeriodStart:     data.PeriodStart,
		PeriodEnd:       data.PeriodEnd,
		RecordCount:     data.RecordCount,
		Score:           data.Result.Score,
		RiskBand:        string(data.Result.Band),
		Violations:      data.Result.Violations,
		Recommendations: data.Result.Recommendations,
	}
}
