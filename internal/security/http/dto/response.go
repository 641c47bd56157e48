package dto

import (
	"time"

	"github.com/google/uuid"

	securityDomain "github.com/allisson/tokenvault/internal/security/domain"
)

// AlertResponse represents a security alert in API responses.
type AlertResponse struct {
	ID                   uuid.UUID      `json:"id"`
	AlertType            string         `json:"alert_type"`
	Severity             string         `json:"severity"`
	Status               string         `json:"status"`
	VaultID              *uuid.UUID     `json:"vault_id,omitempty"`
	UserID               string         `json:"user_id,omitempty"`
	IPAddress            string         `json:"ip_address,omitempty"`
	Description          string         `json:"description"`
	Details              map[string]any `json:"details,omitempty"`
	TriggeringAuditLogID *uuid.UUID     `json:"triggering_audit_log_id,omitempty"`
	OccurrenceCount      int64          `json:"occurrence_count"`
	FirstSeenAt          time.Time      `json:"first_seen_at"`
	LastSeenAt           time.Time      `json:"last_seen_at"`
	AcknowledgedBy       *string        `json:"acknowledged_by,omitempty"`
	AcknowledgedAt       *time.Time     `json:"acknowledged_at,omitempty"`
	ResolvedBy           *string        `json:"resolved_by,omitempty"`
	ResolvedAt           *time.Time     `json:"resolved_at,omitempty"`
	ResolutionNote       *string        `json:"resolution_note,omitempty"`
	AutoResolved         bool           `json:"auto_resolved"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// MapAlertToResponse converts a domain alert to its API representation.
func MapAlertToResponse(alert *securityDomain.SecurityAlert) AlertResponse {
	return AlertResponse{
		ID:                   alert.ID,
		AlertType:            string(alert.AlertType),
		Severity:             string(alert.Severity),
		Status:               string(alert.Status),
		VaultID:              alert.VaultID,
		UserID:               alert.UserID,
		IPAddress:            alert.IPAddress,
		Description:          alert.Description,
		Details:              alert.Details,
		TriggeringAuditLogID: alert.TriggeringAuditLogID,
		OccurrenceCount:      alert.OccurrenceCount,
		FirstSeenAt:          alert.FirstSeenAt,
		LastSeenAt:           alert.LastSeenAt,
		AcknowledgedBy:       alert.AcknowledgedBy,
		AcknowledgedAt:       alert.AcknowledgedAt,
		ResolvedBy:           alert.ResolvedBy,
		ResolvedAt:           alert.ResolvedAt,
		ResolutionNote:       alert.ResolutionNote,
		AutoResolved:         alert.AutoResolved,
		CreatedAt:            alert.CreatedAt,
		UpdatedAt:            alert.UpdatedAt,
	}
}

// ListAlertsResponse wraps a page of alerts.
type ListAlertsResponse struct {
	Alerts []AlertResponse `json:"alerts"`
	Offset int             `json:"offset"`
	Limit  int             `json:"limit"`
}

// MapAlertsToListResponse converts a page of domain alerts to the API representation.
func MapAlertsToListResponse(alerts []*securityDomain.SecurityAlert, offset, limit int) ListAlertsResponse {
	items := make([]AlertResponse, 0, len(alerts))
	for _, alert := range alerts {
		items = append(items, MapAlertToResponse(alert))
	}
	return ListAlertsResponse{Alerts: items, Offset: offset, Limit: limit}
}

// BulkAlertActionItemResponse is the per-item outcome of a bulk alert action.
type BulkAlertActionItemResponse struct {
	AlertID string `json:"alert_id"`
	Error   string `json:"error,omitempty"`
}

// BulkAlertActionResponse wraps a bulk alert action outcome.
type BulkAlertActionResponse struct {
	Items     []BulkAlertActionItemResponse `json:"items"`
	Succeeded int                           `json:"succeeded"`
	Failed    int                           `json:"failed"`
}

// SeverityCountsResponse reports open alert counts per severity.
type SeverityCountsResponse struct {
	Counts map[string]int64 `json:"counts"`
	Since  time.Time        `json:"since"`
}
