package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/tokenvault/internal/audit/domain"
	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
	cryptoService "github.com/allisson/tokenvault/internal/crypto/service"
	"github.com/allisson/tokenvault/internal/database"
	apperrors "github.com/allisson/tokenvault/internal/errors"
	tokenizationDomain "github.com/allisson/tokenvault/internal/tokenization/domain"
	tokenizationService "github.com/allisson/tokenvault/internal/tokenization/service"
	vaultDomain "github.com/allisson/tokenvault/internal/vault/domain"
)

// maxGenerateAttempts bounds token value regeneration on value collisions.
const maxGenerateAttempts = 3

// tokenizationUseCase implements TokenizationUseCase.
type tokenizationUseCase struct {
	txManager        database.TxManager
	tokenRepo        TokenRepository
	vaultGate        VaultGate
	vaultCounter     VaultCounter
	retentionSource  RetentionSource
	keyProvider      KeyProvider
	generators       *tokenizationService.GeneratorFactory
	encryptor        cryptoService.Encryptor
	hashService      cryptoService.HashService
	auditLogger      AuditLogger
	logger           *slog.Logger
	searchMaxResults int
}

// NewTokenizationUseCase creates a new TokenizationUseCase with injected dependencies.
func NewTokenizationUseCase(
	txManager database.TxManager,
	tokenRepo TokenRepository,
	vaultGate VaultGate,
	vaultCounter VaultCounter,
	retentionSource RetentionSource,
	keyProvider KeyProvider,
	generators *tokenizationService.GeneratorFactory,
	encryptor cryptoService.Encryptor,
	hashService cryptoService.HashService,
	auditLogger AuditLogger,
	logger *slog.Logger,
	searchMaxResults int,
) TokenizationUseCase {
	return &tokenizationUseCase{
		txManager:        txManager,
		tokenRepo:        tokenRepo,
		vaultGate:        vaultGate,
		vaultCounter:     vaultCounter,
		retentionSource:  retentionSource,
		keyProvider:      keyProvider,
		generators:       generators,
		encryptor:        encryptor,
		hashService:      hashService,
		auditLogger:      auditLogger,
		logger:           logger,
		searchMaxResults: searchMaxResults,
	}
}

// Tokenize issues a token for a value, or returns the existing active token
// for the same plaintext. Issuance is at-most-once per (vault, plaintext):
// a fast dedup lookup short-circuits the common case, and the partial unique
// index on (vault_id, data_hash) settles concurrent races. The losing writer's
// transaction rolls back, so the capacity counter never double-counts.
func (t *tokenizationUseCase) Tokenize(
	ctx context.Context,
	vaultID uuid.UUID,
	input *TokenizeInput,
	reqCtx auditDomain.RequestContext,
) (*TokenizeResult, error) {
	started := time.Now()

	result, err := t.tokenize(ctx, vaultID, input, reqCtx)

	event := &auditDomain.Event{
		VaultID:        &vaultID,
		Operation:      auditDomain.OpTokenize,
		Result:         auditDomain.ResultSuccess,
		ProcessingTime: time.Since(started),
		Context:        reqCtx,
	}
	if err != nil {
		event.Result = auditDomain.ResultFailure
		event.ErrorMessage = err.Error()
	} else {
		event.TokenID = &result.Token.ID
		event.ResponseMetadata = map[string]any{
			"token_type":   string(result.Token.TokenType),
			"deduplicated": result.Deduplicated,
		}
	}
	t.emitAudit(ctx, event)

	return result, err
}

func (t *tokenizationUseCase) tokenize(
	ctx context.Context,
	vaultID uuid.UUID,
	input *TokenizeInput,
	reqCtx auditDomain.RequestContext,
) (*TokenizeResult, error) {
	vault, err := t.vaultGate.ValidateForOperation(ctx, vaultID, vaultDomain.OperationTokenize, reqCtx)
	if err != nil {
		return nil, err
	}
	if err := validateTokenizeInput(input); err != nil {
		return nil, err
	}

	return t.tokenizeItem(ctx, vault, input)
}

// reuseToken serves a dedup hit: the existing active token is returned with
// its usage bumped, consuming no capacity and doing no new encryption.
func (t *tokenizationUseCase) reuseToken(ctx context.Context, token *tokenizationDomain.Token) *TokenizeResult {
	if err := token.RecordUsage(time.Now().UTC()); err == nil {
		if err := t.tokenRepo.Update(ctx, token); err != nil {
			t.logger.Warn("failed to record token usage",
				slog.String("token_id", token.ID.String()),
				slog.Any("error", err),
			)
		}
	}
	return &TokenizeResult{Token: token, Deduplicated: true}
}

// expireToken transitions an elapsed active token to expired and releases its
// capacity slot. A failed decrement is logged; the status change is what must
// stick.
func (t *tokenizationUseCase) expireToken(ctx context.Context, token *tokenizationDomain.Token, now time.Time) error {
	token.Expire(now)
	if err := t.tokenRepo.Update(ctx, token); err != nil {
		return err
	}
	if err := t.vaultCounter.DecrementTokenCount(ctx, token.VaultID); err != nil {
		t.logger.Warn("failed to release capacity for expired token",
			slog.String("token_id", token.ID.String()),
			slog.Any("error", err),
		)
	}
	return nil
}

// issueToken creates the token row and increments the vault counter in one
// transaction. Token value collisions regenerate up to maxGenerateAttempts.
func (t *tokenizationUseCase) issueToken(
	ctx context.Context,
	vault *vaultDomain.Vault,
	activeKey *vaultDomain.VaultKey,
	input *TokenizeInput,
	dataHash string,
	blob *cryptoDomain.EncryptedBlob,
) (*tokenizationDomain.Token, error) {
	generator, err := t.generators.ForType(input.TokenType)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		tokenValue, err := generator.Generate(ctx, vault.ID, input.Value)
		if err != nil {
			return nil, err
		}
		if err := tokenizationDomain.ValidateTokenValue(tokenValue); err != nil {
			lastErr = err
			continue
		}

		now := time.Now().UTC()
		token := &tokenizationDomain.Token{
			ID:            uuid.Must(uuid.NewV7()),
			VaultID:       vault.ID,
			TokenValue:    tokenValue,
			TokenType:     input.TokenType,
			Metadata:      input.Metadata,
			ExpiresAt:     input.ExpiresAt,
			KeyVersion:    activeKey.KeyVersion,
			Status:        tokenizationDomain.StatusActive,
			EncryptedData: blob.Ciphertext,
			Nonce:         blob.Nonce,
			DataHash:      dataHash,
			Checksum:      t.hashService.Checksum(tokenValue, dataHash),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if input.TokenType == tokenizationDomain.TypeFormatPreserving {
			token.FormatPreservedToken = &tokenValue
		}

		err = t.txManager.WithTx(ctx, func(ctx context.Context) error {
			if err := t.vaultCounter.IncrementTokenCount(ctx, vault.ID); err != nil {
				return err
			}
			return t.tokenRepo.Create(ctx, token)
		})
		if err == nil {
			return token, nil
		}
		if errors.Is(err, tokenizationDomain.ErrDuplicateTokenValue) {
			lastErr = err
			continue
		}
		return nil, err
	}

	return nil, apperrors.Wrap(lastErr, "failed to issue token value")
}

// Detokenize returns the original value for a token after verifying its
// checksum binding. A mismatch marks the token compromised and emits a
// dedicated audit event besides the operation's own.
func (t *tokenizationUseCase) Detokenize(
	ctx context.Context,
	vaultID uuid.UUID,
	tokenValue string,
	reqCtx auditDomain.RequestContext,
) ([]byte, error) {
	started := time.Now()

	value, tokenID, err := t.detokenize(ctx, vaultID, tokenValue, reqCtx)

	event := &auditDomain.Event{
		VaultID:        &vaultID,
		TokenID:        tokenID,
		Operation:      auditDomain.OpDetokenize,
		Result:         auditDomain.ResultSuccess,
		ProcessingTime: time.Since(started),
		Context:        reqCtx,
	}
	if err != nil {
		event.Result = auditDomain.ResultFailure
		event.ErrorMessage = err.Error()
	}
	t.emitAudit(ctx, event)

	return value, err
}

func (t *tokenizationUseCase) detokenize(
	ctx context.Context,
	vaultID uuid.UUID,
	tokenValue string,
	reqCtx auditDomain.RequestContext,
) ([]byte, *uuid.UUID, error) {
	vault, err := t.vaultGate.ValidateForOperation(ctx, vaultID, vaultDomain.OperationDetokenize, reqCtx)
	if err != nil {
		return nil, nil, err
	}

	token, err := t.tokenRepo.GetByValue(ctx, vaultID, tokenValue)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	if token.Status == tokenizationDomain.StatusActive && token.IsExpired(now) {
		if err := t.expireToken(ctx, token, now); err != nil {
			return nil, &token.ID, err
		}
		return nil, &token.ID, tokenizationDomain.ErrTokenNotUsable
	}
	if !token.IsUsable(now) {
		return nil, &token.ID, tokenizationDomain.ErrTokenNotUsable
	}

	if t.hashService.Checksum(token.TokenValue, token.DataHash) != token.Checksum {
		token.MarkCompromised("integrity check failed", now)
		if err := t.tokenRepo.Update(ctx, token); err != nil {
			t.logger.Error("failed to mark token compromised",
				slog.String("token_id", token.ID.String()),
				slog.Any("error", err),
			)
		}
		t.emitAudit(ctx, &auditDomain.Event{
			VaultID:      &vaultID,
			TokenID:      &token.ID,
			Operation:    auditDomain.OpTokenCompromised,
			Result:       auditDomain.ResultFailure,
			ErrorMessage: tokenizationDomain.ErrIntegrityCheckFailed.Error(),
			Context:      reqCtx,
		})
		return nil, &token.ID, tokenizationDomain.ErrIntegrityCheckFailed
	}

	keyReference := vaultDomain.NewKeyReference(vaultID, token.KeyVersion)
	cfg := vault.EncryptionConfig(keyReference)
	blob := &cryptoDomain.EncryptedBlob{Ciphertext: token.EncryptedData, Nonce: token.Nonce}

	value, err := t.encryptor.Decrypt(ctx, blob, cfg)
	if err != nil {
		return nil, &token.ID, err
	}

	if err := token.RecordUsage(now); err == nil {
		if err := t.tokenRepo.Update(ctx, token); err != nil {
			t.logger.Warn("failed to record token usage",
				slog.String("token_id", token.ID.String()),
				slog.Any("error", err),
			)
		}
	}

	return value, &token.ID, nil
}

// BulkTokenize tokenizes a batch with per-item isolation: one bad item never
// fails the batch. All issued tokens share a batch id in metadata, and the
// call emits a single audit event summarizing the batch.
func (t *tokenizationUseCase) BulkTokenize(
	ctx context.Context,
	vaultID uuid.UUID,
	inputs []*TokenizeInput,
	reqCtx auditDomain.RequestContext,
) ([]BulkTokenizeItemResult, error) {
	started := time.Now()

	if len(inputs) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "empty batch")
	}

	vault, err := t.vaultGate.ValidateForOperation(ctx, vaultID, vaultDomain.OperationBulkTokenize, reqCtx)
	if err != nil {
		t.emitAudit(ctx, &auditDomain.Event{
			VaultID:        &vaultID,
			Operation:      auditDomain.OpBulkTokenize,
			Result:         auditDomain.ResultFailure,
			ErrorMessage:   err.Error(),
			ProcessingTime: time.Since(started),
			Context:        reqCtx,
		})
		return nil, err
	}

	batchID := uuid.Must(uuid.NewV7()).String()
	results := make([]BulkTokenizeItemResult, len(inputs))
	succeeded, deduplicated := 0, 0

	for i, input := range inputs {
		item := BulkTokenizeItemResult{Index: i}

		if input.Metadata == nil {
			input.Metadata = make(map[string]any)
		}
		input.Metadata["batch_id"] = batchID

		result, err := t.tokenizeItem(ctx, vault, input)
		if err != nil {
			item.Error = err.Error()
		} else {
			item.Token = result.Token
			item.Deduplicated = result.Deduplicated
			succeeded++
			if result.Deduplicated {
				deduplicated++
			}
		}
		results[i] = item
	}

	t.emitAudit(ctx, &auditDomain.Event{
		VaultID:   &vaultID,
		Operation: auditDomain.OpBulkTokenize,
		Result:    batchResult(succeeded, len(inputs)),
		RequestMetadata: map[string]any{
			"batch_id":   batchID,
			"item_count": len(inputs),
		},
		ResponseMetadata: map[string]any{
			"succeeded":    succeeded,
			"failed":       len(inputs) - succeeded,
			"deduplicated": deduplicated,
		},
		ProcessingTime: time.Since(started),
		Context:        reqCtx,
	})

	return results, nil
}

// tokenizeItem runs the single-item pipeline against an already-validated vault.
func (t *tokenizationUseCase) tokenizeItem(
	ctx context.Context,
	vault *vaultDomain.Vault,
	input *TokenizeInput,
) (*TokenizeResult, error) {
	if err := validateTokenizeInput(input); err != nil {
		return nil, err
	}

	dataHash := t.hashService.Hash(input.Value)

	existing, err := t.tokenRepo.GetActiveByVaultAndHash(ctx, vault.ID, dataHash)
	switch {
	case err == nil && !existing.IsExpired(time.Now().UTC()):
		return t.reuseToken(ctx, existing), nil
	case err == nil:
		// The dedup hit already elapsed. Retire it so the partial index slot
		// and the capacity slot free up, then mint a fresh token below.
		if err := t.expireToken(ctx, existing, time.Now().UTC()); err != nil {
			return nil, err
		}
	case !errors.Is(err, tokenizationDomain.ErrTokenNotFound):
		return nil, err
	}

	activeKey, err := t.keyProvider.GetActive(ctx, vault.ID)
	if err != nil {
		return nil, err
	}

	cfg := vault.EncryptionConfig(activeKey.KeyReference)
	blob, err := t.encryptor.Encrypt(ctx, input.Value, cfg)
	if err != nil {
		return nil, err
	}

	token, err := t.issueToken(ctx, vault, activeKey, input, dataHash, blob)
	if err == nil {
		return &TokenizeResult{Token: token}, nil
	}
	if errors.Is(err, tokenizationDomain.ErrDuplicateData) {
		// Lost the dedup race: another caller issued the token first. The
		// transaction has rolled back, including the capacity increment.
		existing, lookupErr := t.tokenRepo.GetActiveByVaultAndHash(ctx, vault.ID, dataHash)
		if lookupErr != nil {
			return nil, lookupErr
		}
		return t.reuseToken(ctx, existing), nil
	}
	return nil, err
}

// BulkDetokenize detokenizes a batch with per-item isolation and a single
// audit event summarizing the batch.
func (t *tokenizationUseCase) BulkDetokenize(
	ctx context.Context,
	vaultID uuid.UUID,
	tokenValues []string,
	reqCtx auditDomain.RequestContext,
) ([]BulkDetokenizeItemResult, error) {
	started := time.Now()

	if len(tokenValues) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "empty batch")
	}

	vault, err := t.vaultGate.ValidateForOperation(ctx, vaultID, vaultDomain.OperationBulkDetokenize, reqCtx)
	if err != nil {
		t.emitAudit(ctx, &auditDomain.Event{
			VaultID:        &vaultID,
			Operation:      auditDomain.OpBulkDetokenize,
			Result:         auditDomain.ResultFailure,
			ErrorMessage:   err.Error(),
			ProcessingTime: time.Since(started),
			Context:        reqCtx,
		})
		return nil, err
	}

	results := make([]BulkDetokenizeItemResult, len(tokenValues))
	succeeded := 0

	for i, tokenValue := range tokenValues {
		item := BulkDetokenizeItemResult{Index: i, TokenValue: tokenValue}

		value, err := t.detokenizeItem(ctx, vault, tokenValue, reqCtx)
		if err != nil {
			item.Error = err.Error()
		} else {
			item.Value = value
			succeeded++
		}
		results[i] = item
	}

	t.emitAudit(ctx, &auditDomain.Event{
		VaultID:   &vaultID,
		Operation: auditDomain.OpBulkDetokenize,
		Result:    batchResult(succeeded, len(tokenValues)),
		RequestMetadata: map[string]any{
			"item_count": len(tokenValues),
		},
		ResponseMetadata: map[string]any{
			"succeeded": succeeded,
			"failed":    len(tokenValues) - succeeded,
		},
		ProcessingTime: time.Since(started),
		Context:        reqCtx,
	})

	return results, nil
}

// detokenizeItem runs the single-item pipeline against an already-validated vault.
func (t *tokenizationUseCase) detokenizeItem(
	ctx context.Context,
	vault *vaultDomain.Vault,
	tokenValue string,
	reqCtx auditDomain.RequestContext,
) ([]byte, error) {
	token, err := t.tokenRepo.GetByValue(ctx, vault.ID, tokenValue)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if !token.IsUsable(now) {
		return nil, tokenizationDomain.ErrTokenNotUsable
	}

	if t.hashService.Checksum(token.TokenValue, token.DataHash) != token.Checksum {
		token.MarkCompromised("integrity check failed", now)
		if err := t.tokenRepo.Update(ctx, token); err != nil {
			t.logger.Error("failed to mark token compromised",
				slog.String("token_id", token.ID.String()),
				slog.Any("error", err),
			)
		}
		t.emitAudit(ctx, &auditDomain.Event{
			VaultID:      &vault.ID,
			TokenID:      &token.ID,
			Operation:    auditDomain.OpTokenCompromised,
			Result:       auditDomain.ResultFailure,
			ErrorMessage: tokenizationDomain.ErrIntegrityCheckFailed.Error(),
			Context:      reqCtx,
		})
		return nil, tokenizationDomain.ErrIntegrityCheckFailed
	}

	keyReference := vaultDomain.NewKeyReference(vault.ID, token.KeyVersion)
	cfg := vault.EncryptionConfig(keyReference)
	blob := &cryptoDomain.EncryptedBlob{Ciphertext: token.EncryptedData, Nonce: token.Nonce}

	value, err := t.encryptor.Decrypt(ctx, blob, cfg)
	if err != nil {
		return nil, err
	}

	if err := token.RecordUsage(now); err == nil {
		if err := t.tokenRepo.Update(ctx, token); err != nil {
			t.logger.Warn("failed to record token usage",
				slog.String("token_id", token.ID.String()),
				slog.Any("error", err),
			)
		}
	}

	return value, nil
}

// Search filters tokens by unencrypted attributes and metadata.
func (t *tokenizationUseCase) Search(
	ctx context.Context,
	vaultID uuid.UUID,
	criteria tokenizationDomain.SearchCriteria,
	reqCtx auditDomain.RequestContext,
) ([]*tokenizationDomain.Token, error) {
	started := time.Now()

	if _, err := t.vaultGate.ValidateForOperation(ctx, vaultID, vaultDomain.OperationSearch, reqCtx); err != nil {
		t.emitAudit(ctx, &auditDomain.Event{
			VaultID:        &vaultID,
			Operation:      auditDomain.OpSearch,
			Result:         auditDomain.ResultFailure,
			ErrorMessage:   err.Error(),
			ProcessingTime: time.Since(started),
			Context:        reqCtx,
		})
		return nil, err
	}

	criteria.VaultID = vaultID
	if criteria.Limit <= 0 || criteria.Limit > t.searchMaxResults {
		criteria.Limit = t.searchMaxResults
	}

	tokens, err := t.tokenRepo.Search(ctx, criteria)

	event := &auditDomain.Event{
		VaultID:        &vaultID,
		Operation:      auditDomain.OpSearch,
		Result:         auditDomain.ResultSuccess,
		ProcessingTime: time.Since(started),
		Context:        reqCtx,
	}
	if err != nil {
		event.Result = auditDomain.ResultFailure
		event.ErrorMessage = err.Error()
	} else {
		event.ResponseMetadata = map[string]any{"result_count": len(tokens)}
	}
	t.emitAudit(ctx, event)

	return tokens, err
}

// RevokeToken revokes an active token and releases its capacity slot in the
// same transaction.
func (t *tokenizationUseCase) RevokeToken(
	ctx context.Context,
	vaultID uuid.UUID,
	tokenValue, reason string,
	reqCtx auditDomain.RequestContext,
) (*tokenizationDomain.Token, error) {
	started := time.Now()

	token, err := t.revokeToken(ctx, vaultID, tokenValue, reason, reqCtx)

	event := &auditDomain.Event{
		VaultID:        &vaultID,
		Operation:      auditDomain.OpRevokeToken,
		Result:         auditDomain.ResultSuccess,
		ProcessingTime: time.Since(started),
		Context:        reqCtx,
	}
	if err != nil {
		event.Result = auditDomain.ResultFailure
		event.ErrorMessage = err.Error()
	} else {
		event.TokenID = &token.ID
		event.RequestMetadata = map[string]any{"reason": reason}
	}
	t.emitAudit(ctx, event)

	return token, err
}

func (t *tokenizationUseCase) revokeToken(
	ctx context.Context,
	vaultID uuid.UUID,
	tokenValue, reason string,
	reqCtx auditDomain.RequestContext,
) (*tokenizationDomain.Token, error) {
	if _, err := t.vaultGate.ValidateForOperation(ctx, vaultID, vaultDomain.OperationRevoke, reqCtx); err != nil {
		return nil, err
	}

	var token *tokenizationDomain.Token
	err := t.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		token, err = t.tokenRepo.GetByValue(ctx, vaultID, tokenValue)
		if err != nil {
			return err
		}
		if err := token.Revoke(reason, time.Now().UTC()); err != nil {
			return err
		}
		if err := t.tokenRepo.Update(ctx, token); err != nil {
			return err
		}
		return t.vaultCounter.DecrementTokenCount(ctx, vaultID)
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

// GetToken retrieves token attributes by value without decrypting.
func (t *tokenizationUseCase) GetToken(ctx context.Context, vaultID uuid.UUID, tokenValue string) (*tokenizationDomain.Token, error) {
	return t.tokenRepo.GetByValue(ctx, vaultID, tokenValue)
}

// GetStatistics aggregates per-status token counts for a vault.
func (t *tokenizationUseCase) GetStatistics(ctx context.Context, vaultID uuid.UUID) (tokenizationDomain.StatusCounts, error) {
	return t.tokenRepo.CountByStatus(ctx, vaultID)
}

// CleanupExpiredTokens transitions elapsed active tokens to expired, releases
// their capacity slots, and emits one audit event for the sweep.
func (t *tokenizationUseCase) CleanupExpiredTokens(ctx context.Context, batchSize int) (int, error) {
	started := time.Now()
	now := started.UTC()

	tokens, err := t.tokenRepo.ListExpired(ctx, now, batchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, token := range tokens {
		err := t.txManager.WithTx(ctx, func(ctx context.Context) error {
			token.Expire(now)
			if err := t.tokenRepo.Update(ctx, token); err != nil {
				return err
			}
			return t.vaultCounter.DecrementTokenCount(ctx, token.VaultID)
		})
		if err != nil {
			t.logger.Warn("failed to expire token",
				slog.String("token_id", token.ID.String()),
				slog.Any("error", err),
			)
			continue
		}
		expired++
	}

	if len(tokens) > 0 {
		t.emitAudit(ctx, &auditDomain.Event{
			Operation: auditDomain.OpCleanupExpired,
			Result:    auditDomain.ResultSuccess,
			ResponseMetadata: map[string]any{
				"expired_count": expired,
			},
			ProcessingTime: time.Since(started),
			Context:        auditDomain.RequestContext{UserID: "system"},
		})
	}

	return expired, nil
}

// ApplyRetentionPolicies deletes non-active tokens older than each vault's
// retention window. Active tokens are never deleted; they hold live data and
// a capacity slot until they expire or are revoked. A failing vault is logged
// and skipped; the sweep continues with the remaining vaults.
func (t *tokenizationUseCase) ApplyRetentionPolicies(ctx context.Context) (int64, error) {
	started := time.Now()
	now := started.UTC()

	vaults, err := t.retentionSource.ListWithRetentionPolicy(ctx)
	if err != nil {
		return 0, err
	}

	var deleted int64
	for _, vault := range vaults {
		cutoff := now.AddDate(0, 0, -vault.RetentionDays)
		count, err := t.tokenRepo.DeleteOlderThan(ctx, vault.ID, cutoff)
		if err != nil {
			t.logger.Warn("failed to apply retention policy",
				slog.String("vault_id", vault.ID.String()),
				slog.Any("error", err),
			)
			continue
		}
		deleted += count
	}

	if deleted > 0 {
		t.emitAudit(ctx, &auditDomain.Event{
			Operation: auditDomain.OpRetentionSweep,
			Result:    auditDomain.ResultSuccess,
			ResponseMetadata: map[string]any{
				"deleted_count": deleted,
				"vault_count":   len(vaults),
			},
			ProcessingTime: time.Since(started),
			Context:        auditDomain.RequestContext{UserID: "system"},
		})
	}

	return deleted, nil
}

// emitAudit forwards an event to the audit pipeline. Enqueue failures are
// logged and swallowed.
func (t *tokenizationUseCase) emitAudit(ctx context.Context, event *auditDomain.Event) {
	if t.auditLogger == nil {
		return
	}
	if _, err := t.auditLogger.LogEvent(ctx, event); err != nil {
		t.logger.Warn("failed to enqueue audit event",
			slog.String("operation", event.Operation),
			slog.Any("error", err),
		)
	}
}

func batchResult(succeeded, total int) auditDomain.Result {
	switch succeeded {
	case total:
		return auditDomain.ResultSuccess
	case 0:
		return auditDomain.ResultFailure
	default:
		return auditDomain.ResultPartial
	}
}

func validateTokenizeInput(input *TokenizeInput) error {
	if len(input.Value) == 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "value is required")
	}
	if len(input.Value) > tokenizationDomain.MaxPlaintextSize {
		return tokenizationDomain.ErrValueTooLarge
	}
	if err := input.TokenType.Validate(); err != nil {
		return err
	}
	if input.TokenType == tokenizationDomain.TypeFormatPreserving &&
		len(input.Value) < tokenizationDomain.MinTokenLength {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "value too short for format-preserving token")
	}
	if input.ExpiresAt != nil && !input.ExpiresAt.After(time.Now().UTC()) {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "expires_at must be in the future")
	}
	return nil
}
