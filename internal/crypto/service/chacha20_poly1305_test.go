package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChaCha20Poly1305(t *testing.T) {
	t.Run("valid 256-bit key", func(t *testing.T) {
		key := make([]byte, 32)
		_, err := rand.Read(key)
		require.NoError(t, err)

		cipher, err := NewChaCha20Poly1305(key)
		assert.NoError(t, err)
		assert.NotNil(t, cipher)
	})

	t.Run("invalid key size", func(t *testing.T) {
		cipher, err := NewChaCha20Poly1305(make([]byte, 16))
		assert.Error(t, err)
		assert.Nil(t, cipher)
	})
}

func TestChaCha20Poly1305Cipher_EncryptDecrypt(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	cipher, err := NewChaCha20Poly1305(key)
	require.NoError(t, err)

	t.Run("round trip with AAD", func(t *testing.T) {
		plaintext := []byte("NL91ABNA0417164300")
		aad := []byte("vk-vault-v2")

		ciphertext, nonce, err := cipher.Encrypt(plaintext, aad)
		require.NoError(t, err)
		assert.Equal(t, 12, len(nonce))

		decrypted, err := cipher.Decrypt(ciphertext, nonce, aad)
		assert.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	})

	t.Run("wrong AAD fails authentication", func(t *testing.T) {
		ciphertext, nonce, err := cipher.Encrypt([]byte("secret"), []byte("aad-1"))
		require.NoError(t, err)

		_, err = cipher.Decrypt(ciphertext, nonce, []byte("aad-2"))
		assert.Error(t, err)
	})

	t.Run("tampered ciphertext fails authentication", func(t *testing.T) {
		ciphertext, nonce, err := cipher.Encrypt([]byte("secret"), nil)
		require.NoError(t, err)

		ciphertext[len(ciphertext)-1] ^= 0x01
		_, err = cipher.Decrypt(ciphertext, nonce, nil)
		assert.Error(t, err)
	})
}
