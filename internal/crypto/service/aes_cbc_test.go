package service

import (
	"crypto/aes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAESCBC(t *testing.T) {
	t.Run("valid 256-bit key", func(t *testing.T) {
		key := make([]byte, 32)
		_, err := rand.Read(key)
		require.NoError(t, err)

		cipher, err := NewAESCBC(key)
		assert.NoError(t, err)
		assert.NotNil(t, cipher)
	})

	t.Run("invalid key size", func(t *testing.T) {
		cipher, err := NewAESCBC(make([]byte, 24))
		assert.Error(t, err)
		assert.Nil(t, cipher)
	})
}

func TestAESCBCCipher_EncryptDecrypt(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	cipher, err := NewAESCBC(key)
	require.NoError(t, err)

	t.Run("round trip with AAD", func(t *testing.T) {
		plaintext := []byte("123-45-6789")
		aad := []byte("vk-vault-v1")

		ciphertext, iv, err := cipher.Encrypt(plaintext, aad)
		require.NoError(t, err)
		assert.Equal(t, aes.BlockSize, len(iv))

		decrypted, err := cipher.Decrypt(ciphertext, iv, aad)
		assert.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	})

	t.Run("round trip block-aligned plaintext", func(t *testing.T) {
		plaintext := make([]byte, aes.BlockSize*2)
		_, err := rand.Read(plaintext)
		require.NoError(t, err)

		ciphertext, iv, err := cipher.Encrypt(plaintext, nil)
		require.NoError(t, err)

		decrypted, err := cipher.Decrypt(ciphertext, iv, nil)
		assert.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	})

	t.Run("empty plaintext", func(t *testing.T) {
		ciphertext, iv, err := cipher.Encrypt([]byte{}, nil)
		require.NoError(t, err)

		decrypted, err := cipher.Decrypt(ciphertext, iv, nil)
		assert.NoError(t, err)
		assert.Empty(t, decrypted)
	})

	t.Run("wrong AAD fails tag verification", func(t *testing.T) {
		ciphertext, iv, err := cipher.Encrypt([]byte("secret"), []byte("aad-1"))
		require.NoError(t, err)

		_, err = cipher.Decrypt(ciphertext, iv, []byte("aad-2"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "authentication tag mismatch")
	})

	t.Run("tampered ciphertext fails tag verification", func(t *testing.T) {
		ciphertext, iv, err := cipher.Encrypt([]byte("secret"), nil)
		require.NoError(t, err)

		ciphertext[0] ^= 0xff
		_, err = cipher.Decrypt(ciphertext, iv, nil)
		assert.Error(t, err)
	})

	t.Run("truncated ciphertext rejected", func(t *testing.T) {
		_, err := cipher.Decrypt(make([]byte, 10), make([]byte, aes.BlockSize), nil)
		assert.Error(t, err)
	})

	t.Run("invalid iv size rejected", func(t *testing.T) {
		ciphertext, _, err := cipher.Encrypt([]byte("secret"), nil)
		require.NoError(t, err)

		_, err = cipher.Decrypt(ciphertext, make([]byte, 8), nil)
		assert.Error(t, err)
	})
}

func TestPKCS7Padding(t *testing.T) {
	t.Run("pad and unpad round trip", func(t *testing.T) {
		for length := 0; length <= aes.BlockSize*2; length++ {
			data := make([]byte, length)
			_, err := rand.Read(data)
			require.NoError(t, err)

			padded := pkcs7Pad(data, aes.BlockSize)
			assert.Zero(t, len(padded)%aes.BlockSize)

			unpadded, err := pkcs7Unpad(padded, aes.BlockSize)
			require.NoError(t, err)
			assert.Equal(t, data, unpadded)
		}
	})

	t.Run("invalid padding rejected", func(t *testing.T) {
		data := make([]byte, aes.BlockSize)
		data[aes.BlockSize-1] = 0
		_, err := pkcs7Unpad(data, aes.BlockSize)
		assert.Error(t, err)

		data[aes.BlockSize-1] = byte(aes.BlockSize + 1)
		_, err = pkcs7Unpad(data, aes.BlockSize)
		assert.Error(t, err)
	})

	t.Run("unaligned data rejected", func(t *testing.T) {
		_, err := pkcs7Unpad(make([]byte, aes.BlockSize-1), aes.BlockSize)
		assert.Error(t, err)
	})
}
