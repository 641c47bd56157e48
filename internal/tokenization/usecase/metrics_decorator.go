package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/tokenvault/internal/audit/domain"
	"github.com/allisson/tokenvault/internal/metrics"
	tokenizationDomain "github.com/allisson/tokenvault/internal/tokenization/domain"
)

// tokenizationUseCaseWithMetrics decorates TokenizationUseCase with metrics instrumentation.
type tokenizationUseCaseWithMetrics struct {
	next    TokenizationUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenizationUseCaseWithMetrics wraps a TokenizationUseCase with metrics recording.
func NewTokenizationUseCaseWithMetrics(useCase TokenizationUseCase, m metrics.BusinessMetrics) TokenizationUseCase {
	return &tokenizationUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (t *tokenizationUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	t.metrics.RecordOperation(ctx, "tokenization", operation, status)
	t.metrics.RecordDuration(ctx, "tokenization", operation, time.Since(start), status)
}

// Tokenize records metrics for tokenize operations.
func (t *tokenizationUseCaseWithMetrics) Tokenize(
	ctx context.Context,
	vaultID uuid.UUID,
	input *TokenizeInput,
	reqCtx auditDomain.RequestContext,
) (*TokenizeResult, error) {
	start := time.Now()
	result, err := t.next.Tokenize(ctx, vaultID, input, reqCtx)
	t.record(ctx, "tokenize", start, err)
	return result, err
}

// Detokenize records metrics for detokenize operations.
func (t *tokenizationUseCaseWithMetrics) Detokenize(
	ctx context.Context,
	vaultID uuid.UUID,
	tokenValue string,
	reqCtx auditDomain.RequestContext,
) ([]byte, error) {
	start := time.Now()
	value, err := t.next.Detokenize(ctx, vaultID, tokenValue, reqCtx)
	t.record(ctx, "detokenize", start, err)
	return value, err
}

// BulkTokenize records metrics for bulk tokenize operations.
func (t *tokenizationUseCaseWithMetrics) BulkTokenize(
	ctx context.Context,
	vaultID uuid.UUID,
	inputs []*TokenizeInput,
	reqCtx auditDomain.RequestContext,
) ([]BulkTokenizeItemResult, error) {
	start := time.Now()
	results, err := t.next.BulkTokenize(ctx, vaultID, inputs, reqCtx)
	t.record(ctx, "bulk_tokenize", start, err)
	return results, err
}

// BulkDetokenize records metrics for bulk detokenize operations.
func (t *tokenizationUseCaseWithMetrics) BulkDetokenize(
	ctx context.Context,
	vaultID uuid.UUID,
	tokenValues []string,
	reqCtx auditDomain.RequestContext,
) ([]BulkDetokenizeItemResult, error) {
	start := time.Now()
	results, err := t.next.BulkDetokenize(ctx, vaultID, tokenValues, reqCtx)
	t.record(ctx, "bulk_detokenize", start, err)
	return results, err
}

// Search records metrics for token search operations.
func (t *tokenizationUseCaseWithMetrics) Search(
	ctx context.Context,
	vaultID uuid.UUID,
	criteria tokenizationDomain.SearchCriteria,
	reqCtx auditDomain.RequestContext,
) ([]*tokenizationDomain.Token, error) {
	start := time.Now()
	tokens, err := t.next.Search(ctx, vaultID, criteria, reqCtx)
	t.record(ctx, "search", start, err)
	return tokens, err
}

// RevokeToken records metrics for token revocation operations.
func (t *tokenizationUseCaseWithMetrics) RevokeToken(
	ctx context.Context,
	vaultID uuid.UUID,
	tokenValue, reason string,
	reqCtx auditDomain.RequestContext,
) (*tokenizationDomain.Token, error) {
	start := time.Now()
	token, err := t.next.RevokeToken(ctx, vaultID, tokenValue, reason, reqCtx)
	t.record(ctx, "revoke_token", start, err)
	return token, err
}

// GetToken records metrics for token lookup operations.
func (t *tokenizationUseCaseWithMetrics) GetToken(
	ctx context.Context,
	vaultID uuid.UUID,
	tokenValue string,
) (*tokenizationDomain.Token, error) {
	start := time.Now()
	token, err := t.next.GetToken(ctx, vaultID, tokenValue)
	t.record(ctx, "get_token", start, err)
	return token, err
}

// GetStatistics records metrics for token statistics operations.
func (t *tokenizationUseCaseWithMetrics) GetStatistics(
	ctx context.Context,
	vaultID uuid.UUID,
) (tokenizationDomain.StatusCounts, error) {
	start := time.Now()
	counts, err := t.next.GetStatistics(ctx, vaultID)
	t.record(ctx, "get_statistics", start, err)
	return counts, err
}

// CleanupExpiredTokens records metrics for expired token cleanup runs.
func (t *tokenizationUseCaseWithMetrics) CleanupExpiredTokens(ctx context.Context, batchSize int) (int, error) {
	start := time.Now()
	expired, err := t.next.CleanupExpiredTokens(ctx, batchSize)
	t.record(ctx, "cleanup_expired_tokens", start, err)
	return expired, err
}

// ApplyRetentionPolicies records metrics for retention sweep runs.
func (t *tokenizationUseCaseWithMetrics) ApplyRetentionPolicies(ctx context.Context) (int64, error) {
	start := time.Now()
	deleted, err := t.next.ApplyRetentionPolicies(ctx)
	t.record(ctx, "retention_sweep", start, err)
	return deleted, err
}
