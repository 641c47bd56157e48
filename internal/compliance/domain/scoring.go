package domain

import "fmt"

// WindowStats aggregates the audit activity the scoring rules consume. All
// counts cover the report window and vault scope.
type WindowStats struct {
	Total    int64
	Failures int64
	HighRisk int64
	OffHours int64
	// MaxBulkDetokenizePerUser is the largest bulk_detokenize count any single
	// user accumulated within the window.
	MaxBulkDetokenizePerUser int64
	// DualRoleUsers counts users who both tokenized and detokenized within the
	// window, a segregation-of-duties signal for SOX.
	DualRoleUsers int64
}

// Penalties per violation category.
const (
	PenaltyOffHours          = 10
	PenaltyExcessiveFailures = 15
	PenaltyHighRiskShare     = 20
	PenaltyBulkDetokenize    = 15
	PenaltyDutySegregation   = 20
	PenaltyMissingLogs       = 30
)

// Rule thresholds.
const (
	// FailureRateThreshold is the failed share of the window above which the
	// excessive-failures violation fires.
	FailureRateThreshold = 0.10

	// HighRiskShareThreshold is the high-risk share of the window above which
	// the disproportionate-high-risk violation fires.
	HighRiskShareThreshold = 0.25

	// BulkDetokenizeBurstThreshold is the per-user bulk_detokenize count above
	// which the burst violation fires.
	BulkDetokenizeBurstThreshold = 5
)

// ScoringResult is the outcome of grading a window against a ruleset.
type ScoringResult struct {
	Score           int
	Band            RiskBand
	Violations      []Violation
	Recommendations []string
}

// Score grades the window deterministically: start at 100, subtract a fixed
// penalty per detected violation, clamp at 0, and map to a band. Pure
// function of the stats and ruleset.
func Score(ruleset Ruleset, stats WindowStats) *ScoringResult {
	var violations []Violation
	var recommendations []string

	if stats.OffHours > 0 {
		violations = append(violations, Violation{
			RequirementID: "AC-OFF-HOURS",
			Description:   "sensitive operations performed outside business hours",
			Severity:      "medium",
			Count:         stats.OffHours,
			Penalty:       PenaltyOffHours,
		})
		recommendations = append(recommendations,
			"restrict vault access windows or require approval for off-hours operations")
	}

	if stats.Total > 0 && float64(stats.Failures)/float64(stats.Total) > FailureRateThreshold {
		violations = append(violations, Violation{
			RequirementID: "AC-FAILED-ATTEMPTS",
			Description:   fmt.Sprintf("failed operations exceed %.0f%% of activity", FailureRateThreshold*100),
			Severity:      "high",
			Count:         stats.Failures,
			Penalty:       PenaltyExcessiveFailures,
		})
		recommendations = append(recommendations,
			"investigate repeated failures and tighten credential or IP restrictions")
	}

	if stats.Total > 0 && float64(stats.HighRisk)/float64(stats.Total) > HighRiskShareThreshold {
		violations = append(violations, Violation{
			RequirementID: "OP-HIGH-RISK-SHARE",
			Description:   fmt.Sprintf("high-risk operations exceed %.0f%% of activity", HighRiskShareThreshold*100),
			Severity:      "high",
			Count:         stats.HighRisk,
			Penalty:       PenaltyHighRiskShare,
		})
		recommendations = append(recommendations,
			"review detokenization access and prefer token-scoped integrations")
	}

	if stats.MaxBulkDetokenizePerUser > BulkDetokenizeBurstThreshold {
		violations = append(violations, Violation{
			RequirementID: "OP-BULK-DETOKENIZE",
			Description:   "bulk detokenization bursts concentrated on a single user",
			Severity:      "high",
			Count:         stats.MaxBulkDetokenizePerUser,
			Penalty:       PenaltyBulkDetokenize,
		})
		recommendations = append(recommendations,
			"rate-limit bulk detokenization and require dual approval for large exports")
	}

	if ruleset == RulesetSOX && stats.DualRoleUsers > 0 {
		violations = append(violations, Violation{
			RequirementID: "SOX-SEG-DUTIES",
			Description:   "users perform both tokenization and detokenization",
			Severity:      "high",
			Count:         stats.DualRoleUsers,
			Penalty:       PenaltyDutySegregation,
		})
		recommendations = append(recommendations,
			"separate tokenize and detokenize privileges across distinct roles")
	}

	if ruleset == RulesetGDPR && stats.Total == 0 {
		violations = append(violations, Violation{
			RequirementID: "GDPR-ACCESS-LOGS",
			Description:   "no access logs recorded for the report window",
			Severity:      "critical",
			Count:         0,
			Penalty:       PenaltyMissingLogs,
		})
		recommendations = append(recommendations,
			"verify audit pipeline health; processing records without access logs breaches accountability requirements")
	}

	score := 100
	for _, v := range violations {
		score -= v.Penalty
	}
	if score < 0 {
		score = 0
	}

	return &ScoringResult{
		Score:           score,
		Band:            BandFor(score),
		Violations:      violations,
		Recommendations: recommendations,
	}
}

// BandFor maps a numeric score to its qualitative band.
func BandFor(score int) RiskBand {
	switch {
	case score >= 90:
		return BandLow
	case score >= 70:
		return BandMedium
	case score >= 50:
		return BandHigh
	default:
		return BandCritical
	}
}
