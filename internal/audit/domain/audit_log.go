// Package domain defines audit records and the pure classification rules that
// map operational events to risk levels, PCI relevance, and queue priorities.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Result classifies an operation outcome.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
	ResultPartial Result = "partial"
)

// RiskLevel classifies an audit record for detection and compliance scoring.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Audited operation names.
const (
	OpTokenize         = "tokenize"
	OpDetokenize       = "detokenize"
	OpBulkTokenize     = "bulk_tokenize"
	OpBulkDetokenize   = "bulk_detokenize"
	OpSearch           = "search"
	OpRevokeToken      = "revoke_token"
	OpExport           = "export"
	OpVaultCreate      = "vault_create"
	OpVaultUpdate      = "vault_update"
	OpVaultStatus      = "vault_status_change"
	OpKeyRotation      = "key_rotation"
	OpCleanupExpired   = "cleanup_expired_tokens"
	OpRetentionSweep   = "retention_sweep"
	OpTokenCompromised = "token_compromised"
	OpManualEntry      = "manual_entry"
)

// RequestContext carries the ambient request identity explicitly, so the core
// is runnable and testable outside any web framework.
type RequestContext struct {
	UserID    string
	APIKeyID  string
	SessionID string
	IPAddress string
	UserAgent string
	RequestID string
}

// Event is the operational event callers hand to the audit pipeline. The
// pipeline fills defaults, classifies it, and enqueues it for persistence.
type Event struct {
	VaultID          *uuid.UUID
	TokenID          *uuid.UUID
	Operation        string
	Result           Result
	ErrorMessage     string
	RequestMetadata  map[string]any
	ResponseMetadata map[string]any
	ProcessingTime   time.Duration
	Context          RequestContext
}

// AuditLog is the durable, append-only audit record. Business fields are
// immutable once written; only archival bookkeeping fields may change.
type AuditLog struct {
	ID                  uuid.UUID
	VaultID             *uuid.UUID
	TokenID             *uuid.UUID
	Operation           string
	Result              Result
	ErrorMessage        *string
	UserID              string
	APIKeyID            string
	SessionID           string
	IPAddress           string
	UserAgent           string
	RequestID           string
	RequestMetadata     map[string]any
	ResponseMetadata    map[string]any
	ProcessingTimeMs    int64
	RiskLevel           RiskLevel
	PCIRelevant         bool
	ComplianceReference string
	CreatedAt           time.Time
	ProcessedAt         *time.Time
	ArchivedAt          *time.Time
}

// NewComplianceReference builds the audit compliance reference:
// AUDIT-{yyyymmdd}-{8-char-uppercase-id-fragment}.
func NewComplianceReference(id uuid.UUID, createdAt time.Time) string {
	fragment := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:8]
	return fmt.Sprintf("AUDIT-%s-%s", createdAt.UTC().Format("20060102"), fragment)
}
