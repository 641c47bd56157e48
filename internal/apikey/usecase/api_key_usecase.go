// Package usecase implements API key lifecycle and authentication logic.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apikeyDomain "github.com/allisson/tokenvault/internal/apikey/domain"
	apikeyService "github.com/allisson/tokenvault/internal/apikey/service"
	apperrors "github.com/allisson/tokenvault/internal/errors"
)

// APIKeyRepository defines the interface for API key persistence.
type APIKeyRepository interface {
	Create(ctx context.Context, key *apikeyDomain.APIKey) error
	Get(ctx context.Context, keyID uuid.UUID) (*apikeyDomain.APIKey, error)
	GetByPrefix(ctx context.Context, prefix string) (*apikeyDomain.APIKey, error)
	Update(ctx context.Context, key *apikeyDomain.APIKey) error
	List(ctx context.Context, offset, limit int) ([]*apikeyDomain.APIKey, error)
	TouchLastUsed(ctx context.Context, keyID uuid.UUID) error
}

// APIKeyUseCase defines the interface for API key operations.
type APIKeyUseCase interface {
	// Create issues a new API key. The plain key is returned exactly once and
	// never stored.
	Create(ctx context.Context, name string, role apikeyDomain.Role, expiresAt *time.Time) (string, *apikeyDomain.APIKey, error)

	// Authenticate verifies a presented key and returns it when usable.
	Authenticate(ctx context.Context, plainKey string) (*apikeyDomain.APIKey, error)

	// Revoke permanently disables a key.
	Revoke(ctx context.Context, keyID uuid.UUID) (*apikeyDomain.APIKey, error)

	// Get retrieves a key by ID.
	Get(ctx context.Context, keyID uuid.UUID) (*apikeyDomain.APIKey, error)

	// List retrieves keys ordered by creation time, newest first.
	List(ctx context.Context, offset, limit int) ([]*apikeyDomain.APIKey, error)
}

// apiKeyUseCase implements APIKeyUseCase.
type apiKeyUseCase struct {
	keyRepo    APIKeyRepository
	keyService apikeyService.KeyService
	logger     *slog.Logger
}

// NewAPIKeyUseCase creates a new APIKeyUseCase with injected dependencies.
func NewAPIKeyUseCase(
	keyRepo APIKeyRepository,
	keyService apikeyService.KeyService,
	logger *slog.Logger,
) APIKeyUseCase {
	return &apiKeyUseCase{
		keyRepo:    keyRepo,
		keyService: keyService,
		logger:     logger,
	}
}

// Create issues a new API key.
func (a *apiKeyUseCase) Create(
	ctx context.Context,
	name string,
	role apikeyDomain.Role,
	expiresAt *time.Time,
) (string, *apikeyDomain.APIKey, error) {
	if name == "" {
		return "", nil, apperrors.Wrap(apperrors.ErrInvalidInput, "name is required")
	}
	if err := role.Validate(); err != nil {
		return "", nil, err
	}

	now := time.Now().UTC()
	if expiresAt != nil && !expiresAt.After(now) {
		return "", nil, apperrors.Wrap(apperrors.ErrInvalidInput, "expires_at must be in the future")
	}

	plainKey, prefix, secretHash, err := a.keyService.GenerateKey()
	if err != nil {
		return "", nil, err
	}

	key := apikeyDomain.NewAPIKey(name, prefix, secretHash, role, expiresAt, now)
	if err := a.keyRepo.Create(ctx, key); err != nil {
		return "", nil, err
	}

	a.logger.Info("api key created",
		slog.String("key_id", key.ID.String()),
		slog.String("name", key.Name),
		slog.String("role", string(key.Role)),
	)

	return plainKey, key, nil
}

// Authenticate verifies a presented key and returns it when usable.
func (a *apiKeyUseCase) Authenticate(ctx context.Context, plainKey string) (*apikeyDomain.APIKey, error) {
	prefix, secret, err := a.keyService.SplitKey(plainKey)
	if err != nil {
		return nil, err
	}

	key, err := a.keyRepo.GetByPrefix(ctx, prefix)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apikeyDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !a.keyService.VerifySecret(secret, key.SecretHash) {
		return nil, apikeyDomain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if !key.IsUsable(now) {
		if key.Status == apikeyDomain.StatusRevoked {
			return nil, apikeyDomain.ErrKeyRevoked
		}
		return nil, apikeyDomain.ErrKeyExpired
	}

	// Usage stamping is best-effort and never fails authentication.
	if err := a.keyRepo.TouchLastUsed(ctx, key.ID); err != nil {
		a.logger.Warn("failed to stamp api key usage",
			slog.String("key_id", key.ID.String()),
			slog.Any("error", err),
		)
	}

	return key, nil
}

// Revoke permanently disables a key.
func (a *apiKeyUseCase) Revoke(ctx context.Context, keyID uuid.UUID) (*apikeyDomain.APIKey, error) {
	key, err := a.keyRepo.Get(ctx, keyID)
	if err != nil {
		return nil, err
	}

	if err := key.Revoke(time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := a.keyRepo.Update(ctx, key); err != nil {
		return nil, err
	}

	a.logger.Info("api key revoked", slog.String("key_id", key.ID.String()))
	return key, nil
}

// Get retrieves a key by ID.
func (a *apiKeyUseCase) Get(ctx context.Context, keyID uuid.UUID) (*apikeyDomain.APIKey, error) {
	return a.keyRepo.Get(ctx, keyID)
}

// List retrieves keys ordered by creation time, newest first.
func (a *apiKeyUseCase) List(ctx context.Context, offset, limit int) ([]*apikeyDomain.APIKey, error) {
	return a.keyRepo.List(ctx, offset, limit)
}
