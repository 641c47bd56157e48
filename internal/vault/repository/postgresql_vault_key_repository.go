package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/tokenvault/internal/database"
	apperrors "github.com/allisson/tokenvault/internal/errors"
	vaultDomain "github.com/allisson/tokenvault/internal/vault/domain"
)

const vaultKeyColumns = `id, vault_id, key_version, key_reference, encrypted_key,
	key_hash, status, activated_at, retired_at`

// PostgreSQLVaultKeyRepository implements vault key persistence for PostgreSQL.
type PostgreSQLVaultKeyRepository struct {
	db *sql.DB
}

// NewPostgreSQLVaultKeyRepository creates a new PostgreSQL vault key repository instance.
func NewPostgreSQLVaultKeyRepository(db *sql.DB) *PostgreSQLVaultKeyRepository {
	return &PostgreSQLVaultKeyRepository{db: db}
}

// Create inserts a new vault key version.
func (p *PostgreSQLVaultKeyRepository) Create(ctx context.Context, key *vaultDomain.VaultKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO vault_keys (` + vaultKeyColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(
		ctx,
		query,
		key.ID,
		key.VaultID,
		key.KeyVersion,
		key.KeyReference,
		key.EncryptedKey,
		key.KeyHash,
		key.Status,
		key.ActivatedAt,
		key.RetiredAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create vault key")
	}
	return nil
}

// GetActive retrieves the single active key version for a vault.
func (p *PostgreSQLVaultKeyRepository) GetActive(ctx context.Context, vaultID uuid.UUID) (*vaultDomain.VaultKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + vaultKeyColumns + ` FROM vault_keys
			  WHERE vault_id = $1 AND status = 'active'`

	key, err := p.scanKey(querier.QueryRowContext(ctx, query, vaultID))
	if err != nil {
		if apperrors.Is(err, vaultDomain.ErrVaultKeyNotFound) {
			return nil, vaultDomain.ErrNoActiveKey
		}
		return nil, err
	}
	return key, nil
}

// GetByVaultAndVersion retrieves a specific key version for a vault. Retired
// keys remain readable so old payloads stay decryptable.
func (p *PostgreSQLVaultKeyRepository) GetByVaultAndVersion(
	ctx context.Context,
	vaultID uuid.UUID,
	version uint,
) (*vaultDomain.VaultKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + vaultKeyColumns + ` FROM vault_keys
			  WHERE vault_id = $1 AND key_version = $2`

	return p.scanKey(querier.QueryRowContext(ctx, query, vaultID, version))
}

// Retire marks a key version as retired.
func (p *PostgreSQLVaultKeyRepository) Retire(ctx context.Context, keyID uuid.UUID, retiredAt time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE vault_keys SET status = 'retired', retired_at = $2 WHERE id = $1 AND status = 'active'`

	result, err := querier.ExecContext(ctx, query, keyID, retiredAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to retire vault key")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return vaultDomain.ErrVaultKeyNotFound
	}
	return nil
}

// GetWrappedKey returns the KMS-wrapped key bytes stored for a key reference.
// Implements the crypto service WrappedKeyStore interface.
func (p *PostgreSQLVaultKeyRepository) GetWrappedKey(ctx context.Context, keyReference string) ([]byte, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT encrypted_key FROM vault_keys WHERE key_reference = $1`

	var wrapped []byte
	err := querier.QueryRowContext(ctx, query, keyReference).Scan(&wrapped)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, vaultDomain.ErrVaultKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get wrapped key")
	}
	return wrapped, nil
}

func (p *PostgreSQLVaultKeyRepository) scanKey(row rowScanner) (*vaultDomain.VaultKey, error) {
	var key vaultDomain.VaultKey
	var status string

	err := row.Scan(
		&key.ID,
		&key.VaultID,
		&key.KeyVersion,
		&key.KeyReference,
		&key.EncryptedKey,
		&key.KeyHash,
		&status,
		&key.ActivatedAt,
		&key.RetiredAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, vaultDomain.ErrVaultKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to scan vault key")
	}

	key.Status = vaultDomain.KeyStatus(status)
	return &key, nil
}
