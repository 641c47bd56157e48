package app

import (
	"context"
	"fmt"

	cryptoService "github.com/allisson/tokenvault/internal/crypto/service"

	"gocloud.dev/secrets"
)

// CipherManager returns the AEAD cipher manager service.
func (c *Container) CipherManager() cryptoService.CipherManager {
	c.cipherManagerInit.Do(func() {
		c.cipherManager = cryptoService.NewCipherManager()
	})
	return c.cipherManager
}

// HashService returns the hashing service for dedup lookups and token checksums.
func (c *Container) HashService() cryptoService.HashService {
	c.hashServiceInit.Do(func() {
		c.hashService = cryptoService.NewSHA256HashService(c.config.AppSecret)
	})
	return c.hashService
}

// Keeper returns the gocloud secrets keeper, or nil when no KMS is configured.
func (c *Container) Keeper() (*secrets.Keeper, error) {
	var err error
	c.keeperInit.Do(func() {
		c.keeper, err = c.initKeeper()
		if err != nil {
			c.initErrors["keeper"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keeper"]; exists {
		return nil, storedErr
	}
	return c.keeper, nil
}

// KeyResolver returns the key resolver used to turn key references into raw
// key material. With a KMS configured it unwraps stored wrapped keys; without
// one it derives keys locally from the application secret.
func (c *Container) KeyResolver() (cryptoService.KeyResolver, error) {
	var err error
	c.keyResolverInit.Do(func() {
		c.keyResolver, err = c.initKeyResolver()
		if err != nil {
			c.initErrors["keyResolver"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyResolver"]; exists {
		return nil, storedErr
	}
	return c.keyResolver, nil
}

// Encryptor returns the vault payload encryption service.
func (c *Container) Encryptor() (cryptoService.Encryptor, error) {
	var err error
	c.encryptorInit.Do(func() {
		c.encryptor, err = c.initEncryptor()
		if err != nil {
			c.initErrors["encryptor"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["encryptor"]; exists {
		return nil, storedErr
	}
	return c.encryptor, nil
}

// KeyMaterial returns the key material service used when provisioning and
// rotating vault keys.
func (c *Container) KeyMaterial() (cryptoService.KeyMaterialService, error) {
	var err error
	c.keyMaterialInit.Do(func() {
		c.keyMaterial, err = c.initKeyMaterial()
		if err != nil {
			c.initErrors["keyMaterial"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyMaterial"]; exists {
		return nil, storedErr
	}
	return c.keyMaterial, nil
}

// initKeeper opens the KMS keeper when a key URI is configured.
func (c *Container) initKeeper() (*secrets.Keeper, error) {
	if c.config.KMSKeyURI == "" {
		return nil, nil
	}
	keeper, err := cryptoService.OpenKeeper(context.Background(), c.config.KMSKeyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open kms keeper: %w", err)
	}
	return keeper, nil
}

// initKeyResolver selects the KMS-backed or local resolver based on configuration.
func (c *Container) initKeyResolver() (cryptoService.KeyResolver, error) {
	keeper, err := c.Keeper()
	if err != nil {
		return nil, fmt.Errorf("failed to get keeper for key resolver: %w", err)
	}

	if keeper == nil {
		return cryptoService.NewLocalKeyResolver(c.config.AppSecret), nil
	}

	keyRepo, err := c.VaultKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault key repository for key resolver: %w", err)
	}

	return cryptoService.NewKMSKeyResolver(keeper, keyRepo), nil
}

// initEncryptor creates the payload encryption service.
func (c *Container) initEncryptor() (cryptoService.Encryptor, error) {
	resolver, err := c.KeyResolver()
	if err != nil {
		return nil, fmt.Errorf("failed to get key resolver for encryptor: %w", err)
	}
	return cryptoService.NewEncryptor(c.CipherManager(), resolver), nil
}

// initKeyMaterial selects the KMS-backed or local key material service.
func (c *Container) initKeyMaterial() (cryptoService.KeyMaterialService, error) {
	keeper, err := c.Keeper()
	if err != nil {
		return nil, fmt.Errorf("failed to get keeper for key material: %w", err)
	}

	if keeper == nil {
		resolver, err := c.KeyResolver()
		if err != nil {
			return nil, fmt.Errorf("failed to get key resolver for key material: %w", err)
		}
		return cryptoService.NewLocalKeyMaterial(resolver), nil
	}

	return cryptoService.NewKMSKeyMaterial(keeper), nil
}
