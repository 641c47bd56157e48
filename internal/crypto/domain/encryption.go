package domain

// EncryptionConfig describes how a vault encrypts its payloads: which algorithm
// to use and which key reference resolves to the key material.
type EncryptionConfig struct {
	Algorithm    Algorithm
	KeyReference string
}

// Validate checks the encryption configuration.
func (c EncryptionConfig) Validate() error {
	if err := c.Algorithm.Validate(); err != nil {
		return err
	}
	if c.KeyReference == "" {
		return ErrKeyNotFound
	}
	return nil
}

// EncryptedBlob holds the output of an authenticated encryption operation.
// The nonce (or IV for CBC mode) must be stored alongside the ciphertext.
type EncryptedBlob struct {
	Ciphertext []byte
	Nonce      []byte
}
