package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

type formatPreservingGenerator struct{}

// NewFormatPreservingGenerator creates a generator that mirrors the plaintext's
// character-class shape: digits become random digits, letters become random
// letters of matching case, everything else passes through literally.
//
// This is one-way random substitution preserving shape only; it is not a
// reversible FPE construction (FF1/FF3). Detokenization always goes through the
// stored ciphertext.
func NewFormatPreservingGenerator() TokenValueGenerator {
	return &formatPreservingGenerator{}
}

// Generate walks the plaintext byte-by-byte substituting same-class characters.
// Output has identical length and shape as the input.
func (g *formatPreservingGenerator) Generate(ctx context.Context, vaultID uuid.UUID, plaintext []byte) (string, error) {
	token := make([]byte, len(plaintext))

	for i, c := range plaintext {
		switch {
		case c >= '0' && c <= '9':
			d, err := randomInt(10)
			if err != nil {
				return "", err
			}
			token[i] = byte('0' + d)
		case c >= 'A' && c <= 'Z':
			d, err := randomInt(26)
			if err != nil {
				return "", err
			}
			token[i] = byte('A' + d)
		case c >= 'a' && c <= 'z':
			d, err := randomInt(26)
			if err != nil {
				return "", err
			}
			token[i] = byte('a' + d)
		default:
			token[i] = c
		}
	}

	return string(token), nil
}

func randomInt(max int64) (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random character: %w", err)
	}
	return n.Int64(), nil
}
