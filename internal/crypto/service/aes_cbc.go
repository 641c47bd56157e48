package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// AESCBCCipher implements the AEAD interface using AES-256-CBC with an
// HMAC-SHA256 tag in encrypt-then-MAC construction.
//
// Separate encryption and MAC keys are derived from the 32-byte input key via
// HKDF-SHA256, so a single key reference covers both. The MAC is computed over
// iv || ciphertext || aad and appended to the ciphertext. The IV plays the role
// of the nonce in the AEAD interface.
type AESCBCCipher struct {
	encKey []byte
	macKey []byte
}

const cbcTagSize = 32

// NewAESCBC creates a new AES-256-CBC cipher instance with HMAC-SHA256
// authentication. The key must be exactly 32 bytes.
func NewAESCBC(key []byte) (*AESCBCCipher, error) {
	if len(key) != 32 {
		return nil, errors.New("key must be exactly 32 bytes")
	}

	kdf := hkdf.New(sha256.New, key, nil, []byte("aes-cbc-hmac-v1"))
	derived := make([]byte, 64)
	if _, err := io.ReadFull(kdf, derived); err != nil {
		return nil, fmt.Errorf("failed to derive cbc keys: %w", err)
	}

	return &AESCBCCipher{encKey: derived[:32], macKey: derived[32:]}, nil
}

// Encrypt encrypts plaintext using AES-256-CBC with PKCS#7 padding and appends
// an HMAC-SHA256 tag over iv || ciphertext || aad.
func (c *AESCBCCipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	block, err := aes.NewCipher(c.encKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext = make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	mac := hmac.New(sha256.New, c.macKey)
	mac.Write(iv)
	mac.Write(ciphertext)
	mac.Write(aad)
	ciphertext = mac.Sum(ciphertext)

	return ciphertext, iv, nil
}

// Decrypt verifies the HMAC tag and decrypts the ciphertext. Returns an error
// on tag mismatch before any decryption takes place.
func (c *AESCBCCipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	if len(nonce) != aes.BlockSize {
		return nil, errors.New("invalid iv size")
	}
	if len(ciphertext) < cbcTagSize+aes.BlockSize {
		return nil, errors.New("ciphertext too short")
	}

	body := ciphertext[:len(ciphertext)-cbcTagSize]
	tag := ciphertext[len(ciphertext)-cbcTagSize:]

	mac := hmac.New(sha256.New, c.macKey)
	mac.Write(nonce)
	mac.Write(body)
	mac.Write(aad)
	if subtle.ConstantTimeCompare(tag, mac.Sum(nil)) != 1 {
		return nil, errors.New("failed to decrypt: authentication tag mismatch")
	}

	if len(body)%aes.BlockSize != 0 {
		return nil, errors.New("ciphertext is not block aligned")
	}

	block, err := aes.NewCipher(c.encKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	plaintext := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, nonce).CryptBlocks(plaintext, body)

	return pkcs7Unpad(plaintext, aes.BlockSize)
}

// pkcs7Pad pads data to a multiple of blockSize.
func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padding)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padding)
	}
	return padded
}

// pkcs7Unpad removes PKCS#7 padding.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("invalid padded data length")
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize {
		return nil, errors.New("invalid padding")
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, errors.New("invalid padding")
		}
	}
	return data[:len(data)-padding], nil
}
