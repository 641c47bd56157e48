package service

import (
	"context"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
)

// localKeyResolver derives key material from the application secret via
// HKDF-SHA256, using the key reference as the info parameter.
//
// This is a development placeholder, not cryptographically sound key
// separation: all keys descend from one static secret. Production deployments
// must use the KMS-backed resolver so that key material comes from an external
// keeper.
type localKeyResolver struct {
	appSecret []byte
}

// NewLocalKeyResolver creates a KeyResolver that derives keys from the
// application secret. Intended for local development and tests only.
func NewLocalKeyResolver(appSecret string) KeyResolver {
	return &localKeyResolver{appSecret: []byte(appSecret)}
}

// Resolve derives a 32-byte key for the given key reference.
func (r *localKeyResolver) Resolve(ctx context.Context, keyReference string) ([]byte, error) {
	if len(r.appSecret) == 0 || keyReference == "" {
		return nil, cryptoDomain.ErrKeyNotFound
	}

	kdf := hkdf.New(sha256.New, r.appSecret, nil, []byte(keyReference))
	key := make([]byte, cryptoDomain.KeySize)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, err
	}
	return key, nil
}
