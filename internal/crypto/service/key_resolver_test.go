package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
)

func TestLocalKeyResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	resolver := NewLocalKeyResolver("app-secret")

	t.Run("derives 32-byte key", func(t *testing.T) {
		key, err := resolver.Resolve(ctx, "vk-vault-v1")
		require.NoError(t, err)
		assert.Len(t, key, cryptoDomain.KeySize)
	})

	t.Run("deterministic per reference", func(t *testing.T) {
		key1, err := resolver.Resolve(ctx, "vk-vault-v1")
		require.NoError(t, err)
		key2, err := resolver.Resolve(ctx, "vk-vault-v1")
		require.NoError(t, err)
		assert.Equal(t, key1, key2)
	})

	t.Run("distinct references derive distinct keys", func(t *testing.T) {
		key1, err := resolver.Resolve(ctx, "vk-vault-v1")
		require.NoError(t, err)
		key2, err := resolver.Resolve(ctx, "vk-vault-v2")
		require.NoError(t, err)
		assert.NotEqual(t, key1, key2)
	})

	t.Run("distinct secrets derive distinct keys", func(t *testing.T) {
		other := NewLocalKeyResolver("other-secret")
		key1, err := resolver.Resolve(ctx, "vk-vault-v1")
		require.NoError(t, err)
		key2, err := other.Resolve(ctx, "vk-vault-v1")
		require.NoError(t, err)
		assert.NotEqual(t, key1, key2)
	})

	t.Run("empty reference rejected", func(t *testing.T) {
		_, err := resolver.Resolve(ctx, "")
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyNotFound)
	})

	t.Run("empty secret rejected", func(t *testing.T) {
		empty := NewLocalKeyResolver("")
		_, err := empty.Resolve(ctx, "vk-vault-v1")
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyNotFound)
	})
}
