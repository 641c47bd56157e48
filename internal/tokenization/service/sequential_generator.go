package service

import (
	"context"
	"strconv"

	"github.com/google/uuid"
)

type sequentialGenerator struct {
	store SequenceStore
	start int64
}

// NewSequentialGenerator creates a generator producing monotonically increasing
// counter values from a single counter shared by all vaults. Not
// cryptographically random; intended only for low-sensitivity internal use.
func NewSequentialGenerator(store SequenceStore, start int64) TokenValueGenerator {
	return &sequentialGenerator{store: store, start: start}
}

// Generate returns the next counter value, zero-padded so the value always
// satisfies the minimum token length.
func (g *sequentialGenerator) Generate(ctx context.Context, vaultID uuid.UUID, plaintext []byte) (string, error) {
	next, err := g.store.Next(ctx, g.start)
	if err != nil {
		return "", err
	}

	value := strconv.FormatInt(next, 10)
	for len(value) < 9 {
		value = "0" + value
	}
	return value, nil
}
