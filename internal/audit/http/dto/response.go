// Package dto provides data transfer objects for audit HTTP responses.
package dto

import (
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/tokenvault/internal/audit/domain"
)

// AuditLogResponse represents an audit record in API responses.
type AuditLogResponse struct {
	ID                  uuid.UUID      `json:"id"`
	VaultID             *uuid.UUID     `json:"vault_id,omitempty"`
	TokenID             *uuid.UUID     `json:"token_id,omitempty"`
	Operation           string         `json:"operation"`
	Result              string         `json:"result"`
	ErrorMessage        *string        `json:"error_message,omitempty"`
	UserID              string         `json:"user_id"`
	APIKeyID            string         `json:"api_key_id,omitempty"`
	SessionID           string         `json:"session_id,omitempty"`
	IPAddress           string         `json:"ip_address"`
	UserAgent           string         `json:"user_agent,omitempty"`
	RequestID           string         `json:"request_id,omitempty"`
	RequestMetadata     map[string]any `json:"request_metadata,omitempty"`
	ResponseMetadata    map[string]any `json:"response_metadata,omitempty"`
	ProcessingTimeMs    int64          `json:"processing_time_ms"`
	RiskLevel           string         `json:"risk_level"`
	PCIRelevant         bool           `json:"pci_relevant"`
	ComplianceReference string         `json:"compliance_reference"`
	CreatedAt           time.Time      `json:"created_at"`
	ProcessedAt         *time.Time     `json:"processed_at,omitempty"`
	ArchivedAt          *time.Time     `json:"archived_at,omitempty"`
}

// MapAuditLogToResponse converts a domain audit log to its API representation.
func MapAuditLogToResponse(log *auditDomain.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:                  log.ID,
		VaultID:             log.VaultID,
		TokenID:             log.TokenID,
		Operation:           log.Operation,
		Result:              string(log.Result),
		ErrorMessage:        log.ErrorMessage,
		UserID:              log.UserID,
		APIKeyID:            log.APIKeyID,
		SessionID:           log.SessionID,
		IPAddress:           log.IPAddress,
		UserAgent:           log.UserAgent,
		RequestID:           log.RequestID,
		RequestMetadata:     log.RequestMetadata,
		ResponseMetadata:    log.ResponseMetadata,
		ProcessingTimeMs:    log.ProcessingTimeMs,
		RiskLevel:           string(log.RiskLevel),
		PCIRelevant:         log.PCIRelevant,
		ComplianceReference: log.ComplianceReference,
		CreatedAt:           log.CreatedAt,
		ProcessedAt:         log.ProcessedAt,
		ArchivedAt:          log.ArchivedAt,
	}
}

// ListAuditLogsResponse wraps a page of audit records.
type ListAuditLogsResponse struct {
	AuditLogs []AuditLogResponse `json:"audit_logs"`
	Offset    int                `json:"offset"`
	Limit     int                `json:"limit"`
}

// MapAuditLogsToListResponse converts a page of audit records to the API representation.
func MapAuditLogsToListResponse(logs []*auditDomain.AuditLog, offset, limit int) ListAuditLogsResponse {
	items := make([]AuditLogResponse, 0, len(logs))
	for _, log := range logs {
		items = append(items, MapAuditLogToResponse(log))
	}
	return ListAuditLogsResponse{AuditLogs: items, Offset: offset, Limit: limit}
}

// SummaryResponse aggregates audit activity over a window.
type SummaryResponse struct {
	From                time.Time        `json:"from"`
	To                  time.Time        `json:"to"`
	Total               int64            `json:"total"`
	ByOperation         map[string]int64 `json:"by_operation"`
	ByResult            map[string]int64 `json:"by_result"`
	ByRiskLevel         map[string]int64 `json:"by_risk_level"`
	PCIRelevantCount    int64            `json:"pci_relevant_count"`
	AvgProcessingTimeMs float64          `json:"avg_processing_time_ms"`
}

// MapSummaryToResponse converts a domain summary to the API representation.
func MapSummaryToResponse(summary *auditDomain.Summary) SummaryResponse {
	return SummaryResponse{
		From:                summary.From,
		To:                  summary.To,
		Total:               summary.Total,
		ByOperation:         summary.ByOperation,
		ByResult:            summary.ByResult,
		ByRiskLevel:         summary.ByRiskLevel,
		PCIRelevantCount:    summary.PCIRelevantCount,
		AvgProcessingTimeMs: summary.AvgProcessingTimeMs,
	}
}
