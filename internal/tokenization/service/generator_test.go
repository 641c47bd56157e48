package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tokenizationDomain "github.com/allisson/tokenvault/internal/tokenization/domain"
)

// fakeSequenceStore is an in-memory SequenceStore for generator tests.
type fakeSequenceStore struct {
	value  int64
	seeded bool
	err    error
}

func newFakeSequenceStore() *fakeSequenceStore {
	return &fakeSequenceStore{}
}

func (s *fakeSequenceStore) Next(ctx context.Context, start int64) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	if !s.seeded {
		s.value = start
		s.seeded = true
		return s.value, nil
	}
	s.value++
	return s.value, nil
}

func TestRandomGenerator_Generate(t *testing.T) {
	ctx := context.Background()
	generator := NewRandomGenerator()
	vaultID := uuid.Must(uuid.NewV7())

	t.Run("generates default length alphanumeric value", func(t *testing.T) {
		value, err := generator.Generate(ctx, vaultID, []byte("4111111111111111"))
		require.NoError(t, err)
		assert.Len(t, value, tokenizationDomain.DefaultRandomTokenLength)
		for _, c := range value {
			isAlnum := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
			assert.True(t, isAlnum, "unexpected character %q", c)
		}
	})

	t.Run("values are unique", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			value, err := generator.Generate(ctx, vaultID, nil)
			require.NoError(t, err)
			assert.False(t, seen[value], "duplicate value %s", value)
			seen[value] = true
		}
	})

	t.Run("value passes domain validation", func(t *testing.T) {
		value, err := generator.Generate(ctx, vaultID, nil)
		require.NoError(t, err)
		assert.NoError(t, tokenizationDomain.ValidateTokenValue(value))
	})
}

func TestFormatPreservingGenerator_Generate(t *testing.T) {
	ctx := context.Background()
	generator := NewFormatPreservingGenerator()
	vaultID := uuid.Must(uuid.NewV7())

	t.Run("preserves card number shape", func(t *testing.T) {
		value, err := generator.Generate(ctx, vaultID, []byte("4111-1111-1111-1111"))
		require.NoError(t, err)
		assert.Len(t, value, 19)
		for i, c := range value {
			if i == 4 || i == 9 || i == 14 {
				assert.Equal(t, byte('-'), byte(c))
			} else {
				assert.True(t, c >= '0' && c <= '9', "position %d not a digit: %q", i, c)
			}
		}
	})

	t.Run("preserves letter case", func(t *testing.T) {
		value, err := generator.Generate(ctx, vaultID, []byte("Ab1-Cd2"))
		require.NoError(t, err)
		assert.True(t, value[0] >= 'A' && value[0] <= 'Z')
		assert.True(t, value[1] >= 'a' && value[1] <= 'z')
		assert.True(t, value[2] >= '0' && value[2] <= '9')
		assert.Equal(t, byte('-'), value[3])
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		value, err := generator.Generate(ctx, vaultID, nil)
		require.NoError(t, err)
		assert.Empty(t, value)
	})
}

func TestSequentialGenerator_Generate(t *testing.T) {
	ctx := context.Background()
	vaultID := uuid.Must(uuid.NewV7())

	t.Run("monotonically increasing zero-padded values", func(t *testing.T) {
		store := newFakeSequenceStore()
		generator := NewSequentialGenerator(store, 1000)

		first, err := generator.Generate(ctx, vaultID, nil)
		require.NoError(t, err)
		assert.Equal(t, "000001000", first)

		second, err := generator.Generate(ctx, vaultID, nil)
		require.NoError(t, err)
		assert.Equal(t, "000001001", second)
	})

	t.Run("counter is shared across vaults", func(t *testing.T) {
		store := newFakeSequenceStore()
		generator := NewSequentialGenerator(store, 1)

		first, err := generator.Generate(ctx, vaultID, nil)
		require.NoError(t, err)
		other, err := generator.Generate(ctx, uuid.Must(uuid.NewV7()), nil)
		require.NoError(t, err)
		// Token values are globally unique, so a different vault must not
		// restart the sequence.
		assert.NotEqual(t, first, other)
		assert.Equal(t, "000000001", first)
		assert.Equal(t, "000000002", other)
	})

	t.Run("long counters not truncated", func(t *testing.T) {
		store := newFakeSequenceStore()
		generator := NewSequentialGenerator(store, 1234567890)

		value, err := generator.Generate(ctx, vaultID, nil)
		require.NoError(t, err)
		assert.Equal(t, "1234567890", value)
	})

	t.Run("store error propagates", func(t *testing.T) {
		store := newFakeSequenceStore()
		store.err = errors.New("connection refused")
		generator := NewSequentialGenerator(store, 1)

		_, err := generator.Generate(ctx, vaultID, nil)
		assert.Error(t, err)
	})
}

func TestGeneratorFactory_ForType(t *testing.T) {
	factory := NewGeneratorFactory(newFakeSequenceStore(), 1000)

	t.Run("returns generator for each type", func(t *testing.T) {
		for _, tokenType := range []tokenizationDomain.TokenType{
			tokenizationDomain.TypeRandom,
			tokenizationDomain.TypeFormatPreserving,
			tokenizationDomain.TypeSequential,
		} {
			generator, err := factory.ForType(tokenType)
			assert.NoError(t, err, tokenType)
			assert.NotNil(t, generator, tokenType)
		}
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		generator, err := factory.ForType(tokenizationDomain.TokenType("uuid"))
		assert.ErrorIs(t, err, tokenizationDomain.ErrInvalidTokenType)
		assert.Nil(t, generator)
	})
}
