package service

import (
	"context"
	"fmt"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
	apperrors "github.com/allisson/tokenvault/internal/errors"

	// Register KMS keeper drivers.
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// WrappedKeyStore returns the KMS-wrapped key bytes stored for a key reference.
// The vault key repository implements this against the vault_keys table.
type WrappedKeyStore interface {
	GetWrappedKey(ctx context.Context, keyReference string) ([]byte, error)
}

// OpenKeeper opens a gocloud.dev secrets keeper for the configured key URI.
// Supports gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://.
func OpenKeeper(ctx context.Context, keyURI string) (*secrets.Keeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// kmsKeyResolver resolves key references by fetching the wrapped key bytes for
// the reference and unwrapping them through the KMS keeper.
type kmsKeyResolver struct {
	keeper   *secrets.Keeper
	keyStore WrappedKeyStore
}

// NewKMSKeyResolver creates a KeyResolver backed by an external KMS keeper.
func NewKMSKeyResolver(keeper *secrets.Keeper, keyStore WrappedKeyStore) KeyResolver {
	return &kmsKeyResolver{keeper: keeper, keyStore: keyStore}
}

// Resolve unwraps the stored key material for the given key reference.
func (r *kmsKeyResolver) Resolve(ctx context.Context, keyReference string) ([]byte, error) {
	wrapped, err := r.keyStore.GetWrappedKey(ctx, keyReference)
	if err != nil {
		return nil, err
	}

	key, err := r.keeper.Decrypt(ctx, wrapped)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to unwrap key material")
	}
	if len(key) != cryptoDomain.KeySize {
		cryptoDomain.Zero(key)
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	return key, nil
}
