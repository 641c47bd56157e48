package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

type sha256HashService struct {
	checksumKey []byte
}

// NewSHA256HashService creates the SHA-256 hash service. The checksum key is a
// server-side secret used to bind token values to their data hashes; it is
// never persisted alongside the tokens.
func NewSHA256HashService(checksumKey string) HashService {
	return &sha256HashService{checksumKey: []byte(checksumKey)}
}

// Hash computes the SHA-256 hash of the input value and returns it as a hex string.
func (s *sha256HashService) Hash(value []byte) string {
	hash := sha256.Sum256(value)
	return hex.EncodeToString(hash[:])
}

// Checksum computes HMAC-SHA256 over token_value || data_hash under the server
// secret, returned as a hex string.
func (s *sha256HashService) Checksum(tokenValue, dataHash string) string {
	mac := hmac.New(sha256.New, s.checksumKey)
	mac.Write([]byte(tokenValue))
	mac.Write([]byte(dataHash))
	return hex.EncodeToString(mac.Sum(nil))
}
