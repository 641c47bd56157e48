package service

import (
	"context"

	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
	apperrors "github.com/allisson/tokenvault/internal/errors"
)

// encryptorService implements Encryptor: it resolves the key reference from the
// encryption config, builds the configured AEAD cipher, and runs it.
type encryptorService struct {
	cipherManager CipherManager
	keyResolver   KeyResolver
}

// NewEncryptor creates a new Encryptor with the given cipher manager and key resolver.
func NewEncryptor(cipherManager CipherManager, keyResolver KeyResolver) Encryptor {
	return &encryptorService{
		cipherManager: cipherManager,
		keyResolver:   keyResolver,
	}
}

// Encrypt encrypts plaintext under the config's algorithm and key reference.
func (e *encryptorService) Encrypt(
	ctx context.Context,
	plaintext []byte,
	cfg cryptoDomain.EncryptionConfig,
) (*cryptoDomain.EncryptedBlob, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	key, err := e.keyResolver.Resolve(ctx, cfg.KeyReference)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(key)

	cipher, err := e.cipherManager.CreateCipher(key, cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	ciphertext, nonce, err := cipher.Encrypt(plaintext, []byte(cfg.KeyReference))
	if err != nil {
		return nil, apperrors.Wrap(cryptoDomain.ErrEncryptionFailed, err.Error())
	}

	return &cryptoDomain.EncryptedBlob{Ciphertext: ciphertext, Nonce: nonce}, nil
}

// Decrypt decrypts a blob under the config's algorithm and key reference.
// Tamper or auth-tag mismatch surfaces as ErrDecryptionFailed without details.
func (e *encryptorService) Decrypt(
	ctx context.Context,
	blob *cryptoDomain.EncryptedBlob,
	cfg cryptoDomain.EncryptionConfig,
) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	key, err := e.keyResolver.Resolve(ctx, cfg.KeyReference)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(key)

	cipher, err := e.cipherManager.CreateCipher(key, cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	plaintext, err := cipher.Decrypt(blob.Ciphertext, blob.Nonce, []byte(cfg.KeyReference))
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	return plaintext, nil
}
