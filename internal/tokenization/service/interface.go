// Package service provides token value generation for the supported token
// types: random, format-preserving, and sequential.
package service

import (
	"context"

	"github.com/google/uuid"
)

// TokenValueGenerator generates a token value for a plaintext being tokenized.
// Generators that don't depend on the plaintext or vault ignore those arguments.
type TokenValueGenerator interface {
	Generate(ctx context.Context, vaultID uuid.UUID, plaintext []byte) (string, error)
}

// SequenceStore provides the atomic shared counter behind sequential tokens.
// A single counter serves all vaults; token values are unique across vaults,
// so per-vault counters would collide.
type SequenceStore interface {
	// Next atomically increments and returns the counter, seeding it with
	// start on first use.
	Next(ctx context.Context, start int64) (int64, error)
}
