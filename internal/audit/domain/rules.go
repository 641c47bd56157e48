package domain

// Queue names, highest priority first. Priority selection is a pure function of
// the classified event so it can be tested without any queue machinery.
const (
	QueueCritical = "audit-critical"
	QueueHigh     = "audit-high"
	QueueDefault  = "audit-default"
)

// Queue priorities; lower claims first.
const (
	PriorityCritical = 0
	PriorityHigh     = 1
	PriorityDefault  = 2
)

// highRiskOperations always classify as high risk regardless of outcome.
var highRiskOperations = map[string]bool{
	OpDetokenize:     true,
	OpBulkDetokenize: true,
	OpExport:         true,
}

// pciRelevantOperations is the fixed allow-list of operations subject to
// PCI-DSS audit requirements.
var pciRelevantOperations = map[string]bool{
	OpTokenize:       true,
	OpDetokenize:     true,
	OpBulkTokenize:   true,
	OpBulkDetokenize: true,
	OpExport:         true,
	OpKeyRotation:    true,
}

// recentFailureEscalation is the per-IP failure count in the prior hour above
// which any event from that IP escalates to high risk.
const recentFailureEscalation = 3

// ComputeRiskLevel classifies an event deterministically. recentIPFailures is
// the number of failed operations recorded for the event's source IP within
// the prior hour, supplied by the caller from audit history.
func ComputeRiskLevel(event *Event, recentIPFailures int64) RiskLevel {
	if event.Operation == OpTokenCompromised {
		return RiskCritical
	}

	level := RiskLow
	if highRiskOperations[event.Operation] {
		level = RiskHigh
	}

	if event.Result == ResultFailure && level != RiskHigh {
		level = RiskMedium
	}

	if recentIPFailures > recentFailureEscalation {
		level = RiskHigh
	}

	return level
}

// IsPCIRelevant reports whether the operation is on the PCI allow-list.
func IsPCIRelevant(operation string) bool {
	return pciRelevantOperations[operation]
}

// SelectQueue picks the queue and priority for a classified audit record.
// Critical risk or failed result goes to the critical queue; high risk or
// PCI-relevant records to the high queue; everything else to default.
func SelectQueue(risk RiskLevel, result Result, pciRelevant bool) (queue string, priority int) {
	switch {
	case risk == RiskCritical || result == ResultFailure:
		return QueueCritical, PriorityCritical
	case risk == RiskHigh || pciRelevant:
		return QueueHigh, PriorityHigh
	default:
		return QueueDefault, PriorityDefault
	}
}
