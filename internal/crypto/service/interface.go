// Package service provides cryptographic services for vault payload encryption.
// Implements AEAD ciphers (AES-256-GCM, AES-256-CBC+HMAC, ChaCha20-Poly1305),
// key resolution, and hashing/checksum utilities.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
)

// AEAD defines the interface for authenticated encryption with associated data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// CipherManager creates AEAD cipher instances for supported algorithms.
type CipherManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeyResolver resolves an opaque key reference to raw key material.
// Implementations must return exactly domain.KeySize bytes.
type KeyResolver interface {
	Resolve(ctx context.Context, keyReference string) ([]byte, error)
}

// Encryptor is the vault-facing encryption service: it resolves the key for an
// encryption config and runs the configured AEAD cipher.
type Encryptor interface {
	Encrypt(ctx context.Context, plaintext []byte, cfg cryptoDomain.EncryptionConfig) (*cryptoDomain.EncryptedBlob, error)
	Decrypt(ctx context.Context, blob *cryptoDomain.EncryptedBlob, cfg cryptoDomain.EncryptionConfig) ([]byte, error)
}

// HashService provides hashing for deduplication lookups and token checksums.
type HashService interface {
	// Hash computes the SHA-256 hex digest of the value. Used as the dedup key
	// for identical plaintexts within a vault, not as a security control.
	Hash(value []byte) string

	// Checksum binds a token value to its backing data hash with a keyed hash,
	// so row tampering is detectable without decrypting.
	Checksum(tokenValue, dataHash string) string
}
