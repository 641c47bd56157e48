// Package domain defines security alerts, their lifecycle, and the pure
// detection rules that raise them from audit activity.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// AlertType names a detection rule.
type AlertType string

const (
	AlertRepeatedFailures AlertType = "repeated_access_failures"
	AlertNewSourceIP      AlertType = "new_source_ip"
	AlertUnusualVolume    AlertType = "unusual_volume"
	AlertOffHoursAccess   AlertType = "off_hours_access"
	AlertLargeBulk        AlertType = "large_bulk_operation"
	AlertHighRiskOp       AlertType = "high_risk_operation"
)

// Severity classifies alert urgency.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AlertStatus is the alert lifecycle state. Open and acknowledged are the only
// non-terminal states.
type AlertStatus string

const (
	StatusOpen          AlertStatus = "open"
	StatusAcknowledged  AlertStatus = "acknowledged"
	StatusResolved      AlertStatus = "resolved"
	StatusFalsePositive AlertStatus = "false_positive"
)

// SecurityAlert is a deduplicated record of suspicious activity. Repeated
// findings within the merge window fold into one alert, bumping the
// occurrence counter instead of flooding the table.
type SecurityAlert struct {
	ID          uuid.UUID
	AlertType   AlertType
	Severity    Severity
	Status      AlertStatus
	VaultID     *uuid.UUID
	UserID      string
	IPAddress   string
	Description string
	Details     map[string]any
	// TriggeringAuditLogID references the audit record whose processing first
	// raised this alert.
	TriggeringAuditLogID *uuid.UUID
	OccurrenceCount      int64
	FirstSeenAt          time.Time
	LastSeenAt           time.Time
	AcknowledgedBy       *string
	AcknowledgedAt       *time.Time
	ResolvedBy           *string
	ResolvedAt           *time.Time
	ResolutionNote       *string
	AutoResolved         bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NewSecurityAlert creates an open alert from a finding. The occurrence count
// starts at the finding's observed event count, so a threshold rule firing on
// the sixth failure yields an alert already counting six.
func NewSecurityAlert(finding Finding, vaultID, auditLogID *uuid.UUID, userID, ipAddress string, now time.Time) *SecurityAlert {
	now = now.UTC()
	occurrences := finding.Occurrences
	if occurrences < 1 {
		occurrences = 1
	}
	return &SecurityAlert{
		ID:                   uuid.Must(uuid.NewV7()),
		AlertType:            finding.AlertType,
		Severity:             finding.Severity,
		Status:               StatusOpen,
		VaultID:              vaultID,
		UserID:               userID,
		IPAddress:            ipAddress,
		Description:          finding.Description,
		Details:              finding.Details,
		TriggeringAuditLogID: auditLogID,
		OccurrenceCount:      occurrences,
		FirstSeenAt:          now,
		LastSeenAt:           now,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// Merge folds a repeated finding into the alert. When the finding carries a
// larger observed event count the counter catches up to it; otherwise one more
// occurrence is recorded.
func (a *SecurityAlert) Merge(finding Finding, now time.Time) {
	if finding.Occurrences > a.OccurrenceCount {
		a.OccurrenceCount = finding.Occurrences
	} else {
		a.OccurrenceCount++
	}
	a.LastSeenAt = now.UTC()
	a.UpdatedAt = now.UTC()
}

// Acknowledge transitions open to acknowledged.
func (a *SecurityAlert) Acknowledge(by string, now time.Time) error {
	if a.Status != StatusOpen {
		return ErrInvalidAlertTransition
	}
	a.Status = StatusAcknowledged
	a.AcknowledgedBy = &by
	at := now.UTC()
	a.AcknowledgedAt = &at
	a.UpdatedAt = at
	return nil
}

// Resolve closes an open or acknowledged alert.
func (a *SecurityAlert) Resolve(by, note string, now time.Time) error {
	return a.close(StatusResolved, by, note, now)
}

// MarkFalsePositive closes an open or acknowledged alert as a false positive.
func (a *SecurityAlert) MarkFalsePositive(by, note string, now time.Time) error {
	return a.close(StatusFalsePositive, by, note, now)
}

// AutoResolve closes a stale alert without operator involvement.
func (a *SecurityAlert) AutoResolve(now time.Time) error {
	if err := a.close(StatusResolved, "system", "auto-resolved after inactivity", now); err != nil {
		return err
	}
	a.AutoResolved = true
	return nil
}

func (a *SecurityAlert) close(status AlertStatus, by, note string, now time.Time) error {
	if a.Status != StatusOpen && a.Status != StatusAcknowledged {
		return ErrInvalidAlertTransition
	}
	a.Status = status
	a.ResolvedBy = &by
	at := now.UTC()
	a.ResolvedAt = &at
	if note != "" {
		a.ResolutionNote = &note
	}
	a.UpdatedAt = at
	return nil
}

// IsOpen reports whether the alert still needs attention.
func (a *SecurityAlert) IsOpen() bool {
	return a.Status == StatusOpen || a.Status == StatusAcknowledged
}
