// Package domain defines compliance reports and the pure scoring rules that
// grade a window of audit activity against a regulatory ruleset.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Ruleset names a regulatory ruleset.
type Ruleset string

const (
	RulesetPCIDSS Ruleset = "pci_dss"
	RulesetSOX    Ruleset = "sox"
	RulesetGDPR   Ruleset = "gdpr"
)

// Validate checks if the ruleset is supported.
func (r Ruleset) Validate() error {
	switch r {
	case RulesetPCIDSS, RulesetSOX, RulesetGDPR:
		return nil
	default:
		return ErrInvalidRuleset
	}
}

// ReportStatus is the report job lifecycle state.
type ReportStatus string

const (
	ReportPending    ReportStatus = "pending"
	ReportInProgress ReportStatus = "in_progress"
	ReportCompleted  ReportStatus = "completed"
	ReportFailed     ReportStatus = "failed"
)

// RiskBand is the qualitative band a numeric score maps to.
type RiskBand string

const (
	BandLow      RiskBand = "LOW"
	BandMedium   RiskBand = "MEDIUM"
	BandHigh     RiskBand = "HIGH"
	BandCritical RiskBand = "CRITICAL"
)

// Violation is one detected rule breach within the scored window.
type Violation struct {
	RequirementID string `json:"requirement_id"`
	Description   string `json:"description"`
	Severity      string `json:"severity"`
	Count         int64  `json:"count"`
	Penalty       int    `json:"penalty"`
}

// ComplianceReport is a persisted report job and, once completed, its result.
// A report is never left perpetually in progress: terminal states are
// completed and failed.
type ComplianceReport struct {
	ID              uuid.UUID
	Ruleset         Ruleset
	VaultID         *uuid.UUID
	PeriodStart     time.Time
	PeriodEnd       time.Time
	Status          ReportStatus
	Progress        int
	Score           *int
	RiskBand        *RiskBand
	Violations      []Violation
	Recommendations []string
	RecordCount     int64
	ArtifactPath    *string
	ArtifactHash    *string
	ErrorMessage    *string
	RequestedBy     string
	StartedAt       *time.Time
	CompletedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewComplianceReport creates a pending report job.
func NewComplianceReport(ruleset Ruleset, vaultID *uuid.UUID, periodStart, periodEnd time.Time, requestedBy string) *ComplianceReport {
	now := time.Now().UTC()
	return &ComplianceReport{
		ID:          uuid.Must(uuid.NewV7()),
		Ruleset:     ruleset,
		VaultID:     vaultID,
		PeriodStart: periodStart.UTC(),
		PeriodEnd:   periodEnd.UTC(),
		Status:      ReportPending,
		RequestedBy: requestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Start transitions the report to in progress.
func (r *ComplianceReport) Start(now time.Time) {
	r.Status = ReportInProgress
	started := now.UTC()
	r.StartedAt = &started
	r.Progress = 0
	r.UpdatedAt = started
}

// Complete records the scored result and artifact location.
func (r *ComplianceReport) Complete(result *ScoringResult, recordCount int64, artifactPath, artifactHash string, now time.Time) {
	r.Status = ReportCompleted
	r.Progress = 100
	r.Score = &result.Score
	band := result.Band
	r.RiskBand = &band
	r.Violations = result.Violations
	r.Recommendations = result.Recommendations
	r.RecordCount = recordCount
	r.ArtifactPath = &artifactPath
	r.ArtifactHash = &artifactHash
	completed := now.UTC()
	r.CompletedAt = &completed
	r.UpdatedAt = completed
}

// Fail records a permanent failure with its cause.
func (r *ComplianceReport) Fail(errMsg string, now time.Time) {
	r.Status = ReportFailed
	r.ErrorMessage = &errMsg
	completed := now.UTC()
	r.CompletedAt = &completed
	r.UpdatedAt = completed
}
