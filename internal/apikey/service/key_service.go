// Package service provides API key material generation and verification.
// Keys have a plaintext lookup prefix and an Argon2id-hashed secret half.
package service

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/allisson/go-pwdhash"

	apikeyDomain "github.com/allisson/tokenvault/internal/apikey/domain"
	apperrors "github.com/allisson/tokenvault/internal/errors"
)

// keyPrefix marks keys issued by this service. The full key format is
// "tvk_{prefix}.{secret}".
const keyPrefix = "tvk_"

// KeyService generates and verifies API key material.
type KeyService interface {
	// GenerateKey creates a new key, returning the plain key (shown once),
	// the lookup prefix, and the Argon2id hash of the secret half.
	GenerateKey() (plainKey, prefix, secretHash string, err error)

	// SplitKey parses a presented key into its lookup prefix and secret half.
	SplitKey(plainKey string) (prefix, secret string, err error)

	// VerifySecret performs a constant-time comparison between a plain secret
	// and its stored hash.
	VerifySecret(secret, secretHash string) bool
}

// keyService implements KeyService using Argon2id for secret hashing.
type keyService struct {
	hasher *pwdhash.PasswordHasher
}

// NewKeyService creates a KeyService using the Moderate Argon2id policy for
// a balance between security and per-request verification cost.
func NewKeyService() KeyService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with a valid policy
		panic(err)
	}

	return &keyService{hasher: hasher}
}

// GenerateKey creates a new cryptographically secure API key.
func (s *keyService) GenerateKey() (string, string, string, error) {
	prefixBytes := make([]byte, 6)
	if _, err := rand.Read(prefixBytes); err != nil {
		return "", "", "", apperrors.Wrap(err, "failed to generate key prefix")
	}
	prefix := hex.EncodeToString(prefixBytes)

	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", "", "", apperrors.Wrap(err, "failed to generate key secret")
	}
	secret := base64.RawURLEncoding.EncodeToString(secretBytes)

	secretHash, err := s.hasher.Hash([]byte(secret))
	if err != nil {
		return "", "", "", apperrors.Wrap(err, "failed to hash key secret")
	}

	plainKey := keyPrefix + prefix + "." + secret
	return plainKey, prefix, secretHash, nil
}

// SplitKey parses a presented key into its lookup prefix and secret half.
func (s *keyService) SplitKey(plainKey string) (string, string, error) {
	if !strings.HasPrefix(plainKey, keyPrefix) {
		return "", "", apikeyDomain.ErrInvalidCredentials
	}

	rest := plainKey[len(keyPrefix):]
	prefix, secret, found := strings.Cut(rest, ".")
	if !found || prefix == "" || secret == "" {
		return "", "", apikeyDomain.ErrInvalidCredentials
	}

	return prefix, secret, nil
}

// VerifySecret performs a constant-time comparison between a plain secret and its hash.
func (s *keyService) VerifySecret(secret, secretHash string) bool {
	ok, err := s.hasher.Verify([]byte(secret), secretHash)
	if err != nil {
		return false
	}
	return ok
}
