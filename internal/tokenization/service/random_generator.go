package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	tokenizationDomain "github.com/allisson/tokenvault/internal/tokenization/domain"
)

const alphanumericChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

type randomGenerator struct {
	length int
}

// NewRandomGenerator creates a generator producing cryptographically secure
// random alphanumeric token values of the default length.
func NewRandomGenerator() TokenValueGenerator {
	return &randomGenerator{length: tokenizationDomain.DefaultRandomTokenLength}
}

// Generate creates a random alphanumeric token value.
func (g *randomGenerator) Generate(ctx context.Context, vaultID uuid.UUID, plaintext []byte) (string, error) {
	token := make([]byte, g.length)
	charsLen := big.NewInt(int64(len(alphanumericChars)))

	for i := 0; i < g.length; i++ {
		n, err := rand.Int(rand.Reader, charsLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random character: %w", err)
		}
		token[i] = alphanumericChars[n.Int64()]
	}

	return string(token), nil
}
