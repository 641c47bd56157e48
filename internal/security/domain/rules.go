package domain

import (
	"fmt"
	"time"

	auditDomain "github.com/allisson/tokenvault/internal/audit/domain"
)

// Detection thresholds.
const (
	// FailureSpikeThreshold is the failed-operation count per IP within
	// FailureWindow that raises a repeated-failures alert.
	FailureSpikeThreshold = 5
	FailureWindow         = 15 * time.Minute

	// VolumeThreshold is the operation count per IP within VolumeWindow that
	// raises an unusual-volume alert.
	VolumeThreshold = 100
	VolumeWindow    = time.Hour

	// BulkItemThreshold is the bulk batch size above which a large-bulk alert
	// is raised.
	BulkItemThreshold = 1000

	// NewIPLookback is how far back an IP must have prior activity before it
	// stops counting as a new source.
	NewIPLookback = 7 * 24 * time.Hour

	// Off-hours window boundaries, UTC hours. The window wraps midnight.
	OffHoursStart = 22
	OffHoursEnd   = 6

	// MergeWindow is how far back an open alert of the same type and source
	// absorbs a repeated finding instead of creating a new alert.
	MergeWindow = 24 * time.Hour
)

// Signals carries the aggregate context a single audit record cannot provide
// on its own. The detector gathers them from audit history before evaluating.
type Signals struct {
	// RecentIPFailures is the failed-operation count for the record's IP
	// within FailureWindow.
	RecentIPFailures int64

	// RecentIPOperations is the operation count for the record's IP within
	// VolumeWindow.
	RecentIPOperations int64

	// EstablishedSourceIP reports whether the record's IP has activity older
	// than NewIPLookback. A fresh IP without such history counts as new.
	EstablishedSourceIP bool
}

// Finding is one detection rule firing for an audit record.
type Finding struct {
	AlertType   AlertType
	Severity    Severity
	Description string
	Details     map[string]any

	// Occurrences is the observed event count behind the finding. Threshold
	// rules report the full in-window count so alert counters track events,
	// not rule firings. Zero means a single occurrence.
	Occurrences int64
}

// EvaluateRules runs every detection rule against a record and its signals.
// Pure function: same inputs, same findings.
func EvaluateRules(log *auditDomain.AuditLog, signals Signals) []Finding {
	var findings []Finding

	if signals.RecentIPFailures >= FailureSpikeThreshold {
		findings = append(findings, Finding{
			AlertType:   AlertRepeatedFailures,
			Severity:    SeverityHigh,
			Description: fmt.Sprintf("%d failed operations from %s within %s", signals.RecentIPFailures, log.IPAddress, FailureWindow),
			Details: map[string]any{
				"failure_count": signals.RecentIPFailures,
				"window":        FailureWindow.String(),
			},
			Occurrences: signals.RecentIPFailures,
		})
	}

	if log.Operation == auditDomain.OpTokenize && !signals.EstablishedSourceIP {
		findings = append(findings, Finding{
			AlertType:   AlertNewSourceIP,
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("tokenize activity from new source ip %s", log.IPAddress),
			Details: map[string]any{
				"ip_address": log.IPAddress,
			},
		})
	}

	if signals.RecentIPOperations >= VolumeThreshold {
		findings = append(findings, Finding{
			AlertType:   AlertUnusualVolume,
			Severity:    SeverityHigh,
			Description: fmt.Sprintf("%d operations from %s within %s", signals.RecentIPOperations, log.IPAddress, VolumeWindow),
			Details: map[string]any{
				"operation_count": signals.RecentIPOperations,
				"window":          VolumeWindow.String(),
			},
			Occurrences: signals.RecentIPOperations,
		})
	}

	if isOffHours(log.CreatedAt) {
		findings = append(findings, Finding{
			AlertType:   AlertOffHoursAccess,
			Severity:    SeverityLow,
			Description: fmt.Sprintf("%s performed at %s UTC", log.Operation, log.CreatedAt.UTC().Format("15:04")),
			Details: map[string]any{
				"operation": log.Operation,
				"hour":      log.CreatedAt.UTC().Hour(),
			},
		})
	}

	if count, ok := bulkItemCount(log); ok && count > BulkItemThreshold {
		findings = append(findings, Finding{
			AlertType:   AlertLargeBulk,
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("%s with %d items", log.Operation, count),
			Details: map[string]any{
				"item_count": count,
			},
		})
	}

	if log.RiskLevel == auditDomain.RiskHigh || log.RiskLevel == auditDomain.RiskCritical {
		findings = append(findings, Finding{
			AlertType:   AlertHighRiskOp,
			Severity:    SeverityHigh,
			Description: fmt.Sprintf("%s classified as %s risk", log.Operation, log.RiskLevel),
			Details: map[string]any{
				"operation":  log.Operation,
				"risk_level": string(log.RiskLevel),
			},
		})
	}

	return findings
}

// isOffHours reports whether the instant falls in the off-hours window,
// which wraps midnight.
func isOffHours(t time.Time) bool {
	hour := t.UTC().Hour()
	return hour >= OffHoursStart || hour < OffHoursEnd
}

// bulkItemCount extracts the batch size from a bulk operation's metadata.
func bulkItemCount(log *auditDomain.AuditLog) (int64, bool) {
	if log.Operation != auditDomain.OpBulkTokenize && log.Operation != auditDomain.OpBulkDetokenize {
		return 0, false
	}
	raw, ok := log.RequestMetadata["item_count"]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
