// Package usecase implements the tokenize/detokenize pipeline: deduplicated
// token issuance, capacity accounting, integrity-verified detokenization, bulk
// operations, search, revocation, and expiry cleanup.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/tokenvault/internal/audit/domain"
	tokenizationDomain "github.com/allisson/tokenvault/internal/tokenization/domain"
	vaultDomain "github.com/allisson/tokenvault/internal/vault/domain"
)

// TokenRepository defines the interface for token persistence.
type TokenRepository interface {
	// Create inserts a token, returning ErrDuplicateData when another active
	// token already covers the same (vault, data hash) pair and
	// ErrDuplicateTokenValue on a token value collision.
	Create(ctx context.Context, token *tokenizationDomain.Token) error

	Get(ctx context.Context, tokenID uuid.UUID) (*tokenizationDomain.Token, error)
	GetByValue(ctx context.Context, vaultID uuid.UUID, tokenValue string) (*tokenizationDomain.Token, error)
	GetActiveByVaultAndHash(ctx context.Context, vaultID uuid.UUID, dataHash string) (*tokenizationDomain.Token, error)
	Update(ctx context.Context, token *tokenizationDomain.Token) error
	Search(ctx context.Context, criteria tokenizationDomain.SearchCriteria) ([]*tokenizationDomain.Token, error)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*tokenizationDomain.Token, error)
	CountByStatus(ctx context.Context, vaultID uuid.UUID) (tokenizationDomain.StatusCounts, error)
	DeleteOlderThan(ctx context.Context, vaultID uuid.UUID, cutoff time.Time) (int64, error)
}

// VaultGate validates a vault for an operation: active status, allowed
// operations, access restrictions.
type VaultGate interface {
	ValidateForOperation(ctx context.Context, vaultID uuid.UUID, op vaultDomain.Operation, reqCtx auditDomain.RequestContext) (*vaultDomain.Vault, error)
}

// VaultCounter maintains the vault token counter under the capacity invariant.
type VaultCounter interface {
	IncrementTokenCount(ctx context.Context, vaultID uuid.UUID) error
	DecrementTokenCount(ctx context.Context, vaultID uuid.UUID) error
}

// RetentionSource lists the vaults whose retention policy the sweep enforces.
type RetentionSource interface {
	ListWithRetentionPolicy(ctx context.Context) ([]*vaultDomain.Vault, error)
}

// KeyProvider resolves the active vault key, carrying the key version new
// tokens are stamped with.
type KeyProvider interface {
	GetActive(ctx context.Context, vaultID uuid.UUID) (*vaultDomain.VaultKey, error)
}

// AuditLogger enqueues operational events into the audit pipeline.
type AuditLogger interface {
	LogEvent(ctx context.Context, event *auditDomain.Event) (uuid.UUID, error)
}

// TokenizeInput holds the fields for tokenizing a single value.
type TokenizeInput struct {
	Value     []byte
	TokenType tokenizationDomain.TokenType
	Metadata  map[string]any
	ExpiresAt *time.Time
}

// TokenizeResult is the outcome of a tokenize call. Deduplicated reports that
// an existing active token for the same plaintext was returned instead of a
// newly issued one.
type TokenizeResult struct {
	Token        *tokenizationDomain.Token
	Deduplicated bool
}

// BulkTokenizeItemResult is the per-item outcome of a bulk tokenize call.
// Failed items carry Error and a nil token; the batch continues past them.
type BulkTokenizeItemResult struct {
	Index        int
	Token        *tokenizationDomain.Token
	Deduplicated bool
	Error        string
}

// BulkDetokenizeItemResult is the per-item outcome of a bulk detokenize call.
type BulkDetokenizeItemResult struct {
	Index      int
	TokenValue string
	Value      []byte
	Error      string
}

// TokenizationUseCase defines the interface for token operations. Every call
// validates the vault first and emits exactly one audit event, success or not.
type TokenizationUseCase interface {
	// Tokenize issues a token for a value, or returns the existing active token
	// when the same plaintext was already tokenized in this vault.
	Tokenize(ctx context.Context, vaultID uuid.UUID, input *TokenizeInput, reqCtx auditDomain.RequestContext) (*TokenizeResult, error)

	// Detokenize returns the original value for a token after verifying the
	// stored checksum. An integrity mismatch marks the token compromised.
	Detokenize(ctx context.Context, vaultID uuid.UUID, tokenValue string, reqCtx auditDomain.RequestContext) ([]byte, error)

	// BulkTokenize tokenizes a batch with per-item isolation under one batch id.
	BulkTokenize(ctx context.Context, vaultID uuid.UUID, inputs []*TokenizeInput, reqCtx auditDomain.RequestContext) ([]BulkTokenizeItemResult, error)

	// BulkDetokenize detokenizes a batch with per-item isolation.
	BulkDetokenize(ctx context.Context, vaultID uuid.UUID, tokenValues []string, reqCtx auditDomain.RequestContext) ([]BulkDetokenizeItemResult, error)

	// Search filters tokens by unencrypted attributes and metadata.
	Search(ctx context.Context, vaultID uuid.UUID, criteria tokenizationDomain.SearchCriteria, reqCtx auditDomain.RequestContext) ([]*tokenizationDomain.Token, error)

	// RevokeToken revokes an active token and releases its capacity slot.
	RevokeToken(ctx context.Context, vaultID uuid.UUID, tokenValue, reason string, reqCtx auditDomain.RequestContext) (*tokenizationDomain.Token, error)

	// GetToken retrieves token attributes by value without decrypting.
	GetToken(ctx context.Context, vaultID uuid.UUID, tokenValue string) (*tokenizationDomain.Token, error)

	// GetStatistics aggregates per-status token counts for a vault.
	GetStatistics(ctx context.Context, vaultID uuid.UUID) (tokenizationDomain.StatusCounts, error)

	// CleanupExpiredTokens transitions elapsed active tokens to expired and
	// releases their capacity slots. Returns the number of tokens expired.
	CleanupExpiredTokens(ctx context.Context, batchSize int) (int, error)

	// ApplyRetentionPolicies deletes non-active tokens older than each vault's
	// retention window. Returns the number of tokens deleted.
	ApplyRetentionPolicies(ctx context.Context) (int64, error)
}
