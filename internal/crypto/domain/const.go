// Package domain defines core cryptographic domain models for vault encryption.
package domain

// Algorithm represents a supported authenticated encryption algorithm.
type Algorithm string

const (
	// AESGCM is AES-256 in Galois/Counter Mode.
	AESGCM Algorithm = "aes-256-gcm"

	// AESCBC is AES-256 in CBC mode with an HMAC-SHA256 tag (encrypt-then-MAC).
	AESCBC Algorithm = "aes-256-cbc"

	// ChaCha20 is ChaCha20-Poly1305.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// KeySize is the required key size in bytes for all supported algorithms.
const KeySize = 32

// Validate checks if the algorithm is supported.
func (a Algorithm) Validate() error {
	switch a {
	case AESGCM, AESCBC, ChaCha20:
		return nil
	default:
		return ErrUnsupportedAlgorithm
	}
}

// String returns the string representation of the algorithm.
func (a Algorithm) String() string {
	return string(a)
}
