package domain

import (
	"github.com/allisson/tokenvault/internal/errors"
)

var (
	// ErrUnsupportedAlgorithm indicates an unknown or unsupported encryption algorithm.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported encryption algorithm")

	// ErrInvalidKeySize indicates the key material has the wrong size.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrEncryptionFailed indicates the cipher failed to encrypt the plaintext.
	ErrEncryptionFailed = errors.New("encryption failed")

	// ErrDecryptionFailed indicates authentication or decryption of the ciphertext failed.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrKeyNotFound indicates no key material could be resolved for a key reference.
	ErrKeyNotFound = errors.Wrap(errors.ErrNotFound, "encryption key not found")
)
