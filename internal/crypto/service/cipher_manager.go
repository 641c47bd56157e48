package service

import (
	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
)

// CipherManagerService implements the CipherManager interface.
type CipherManagerService struct{}

// NewCipherManager creates a new CipherManagerService.
func NewCipherManager() *CipherManagerService {
	return &CipherManagerService{}
}

// CreateCipher creates an AEAD cipher instance for the specified algorithm.
// Returns ErrInvalidKeySize if key is not 32 bytes or ErrUnsupportedAlgorithm
// if the algorithm is unknown.
func (cm *CipherManagerService) CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	switch alg {
	case cryptoDomain.AESGCM:
		return NewAESGCM(key)
	case cryptoDomain.AESCBC:
		return NewAESCBC(key)
	case cryptoDomain.ChaCha20:
		return NewChaCha20Poly1305(key)
	default:
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
}
