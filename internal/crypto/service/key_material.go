package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
	apperrors "github.com/allisson/tokenvault/internal/errors"
)

// KeyMaterialService provisions key material for a new vault key version.
// It returns the wrapped key bytes to persist (nil for derived keys) and the
// SHA-256 hex digest of the raw key for corruption checks.
type KeyMaterialService interface {
	Generate(ctx context.Context, keyReference string) (wrapped []byte, keyHash string, err error)
}

// localKeyMaterial provisions keys for the local HKDF resolver: no material is
// stored, the key is re-derived from the reference on every use.
type localKeyMaterial struct {
	resolver KeyResolver
}

// NewLocalKeyMaterial creates a KeyMaterialService for the local HKDF resolver.
func NewLocalKeyMaterial(resolver KeyResolver) KeyMaterialService {
	return &localKeyMaterial{resolver: resolver}
}

func (l *localKeyMaterial) Generate(ctx context.Context, keyReference string) ([]byte, string, error) {
	key, err := l.resolver.Resolve(ctx, keyReference)
	if err != nil {
		return nil, "", err
	}
	defer cryptoDomain.Zero(key)

	digest := sha256.Sum256(key)
	return nil, hex.EncodeToString(digest[:]), nil
}

// kmsKeyMaterial provisions random key material and wraps it with the KMS keeper.
type kmsKeyMaterial struct {
	keeper *secrets.Keeper
}

// NewKMSKeyMaterial creates a KeyMaterialService backed by an external KMS keeper.
func NewKMSKeyMaterial(keeper *secrets.Keeper) KeyMaterialService {
	return &kmsKeyMaterial{keeper: keeper}
}

func (k *kmsKeyMaterial) Generate(ctx context.Context, keyReference string) ([]byte, string, error) {
	key := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, "", fmt.Errorf("failed to generate key material: %w", err)
	}
	defer cryptoDomain.Zero(key)

	wrapped, err := k.keeper.Encrypt(ctx, key)
	if err != nil {
		return nil, "", apperrors.Wrap(err, "failed to wrap key material")
	}

	digest := sha256.Sum256(key)
	return wrapped, hex.EncodeToString(digest[:]), nil
}
