// Package repository implements PostgreSQL persistence for vaults and vault keys.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
	"github.com/allisson/tokenvault/internal/database"
	apperrors "github.com/allisson/tokenvault/internal/errors"
	vaultDomain "github.com/allisson/tokenvault/internal/vault/domain"
)

const uniqueViolation = "23505"

const vaultColumns = `id, name, description, data_type, status, encryption_algorithm,
	encryption_key_reference, max_tokens, current_token_count, allowed_operations,
	access_restrictions, retention_days, key_rotation_interval_days, last_key_rotation,
	created_at, updated_at, deleted_at`

// PostgreSQLVaultRepository implements vault persistence for PostgreSQL.
type PostgreSQLVaultRepository struct {
	db *sql.DB
}

// NewPostgreSQLVaultRepository creates a new PostgreSQL vault repository instance.
func NewPostgreSQLVaultRepository(db *sql.DB) *PostgreSQLVaultRepository {
	return &PostgreSQLVaultRepository{db: db}
}

// Create inserts a new vault. Returns ErrVaultNameTaken on duplicate name.
func (p *PostgreSQLVaultRepository) Create(ctx context.Context, vault *vaultDomain.Vault) error {
	querier := database.GetTx(ctx, p.db)

	operationsJSON, err := json.Marshal(vault.AllowedOperations)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal allowed operations")
	}

	restrictionsJSON, err := marshalRestrictions(vault.AccessRestrictions)
	if err != nil {
		return err
	}

	query := `INSERT INTO vaults (` + vaultColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err = querier.ExecContext(
		ctx,
		query,
		vault.ID,
		vault.Name,
		vault.Description,
		vault.DataType,
		vault.Status,
		vault.EncryptionAlgorithm,
		vault.EncryptionKeyReference,
		vault.MaxTokens,
		vault.CurrentTokenCount,
		operationsJSON,
		restrictionsJSON,
		vault.RetentionDays,
		vault.KeyRotationIntervalDays,
		vault.LastKeyRotation,
		vault.CreatedAt,
		vault.UpdatedAt,
		vault.DeletedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return vaultDomain.ErrVaultNameTaken
		}
		return apperrors.Wrap(err, "failed to create vault")
	}
	return nil
}

// Get retrieves a vault by its ID, excluding soft-deleted vaults.
func (p *PostgreSQLVaultRepository) Get(ctx context.Context, vaultID uuid.UUID) (*vaultDomain.Vault, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + vaultColumns + ` FROM vaults WHERE id = $1 AND deleted_at IS NULL`

	return p.scanVault(querier.QueryRowContext(ctx, query, vaultID))
}

// GetByName retrieves a vault by its unique name.
func (p *PostgreSQLVaultRepository) GetByName(ctx context.Context, name string) (*vaultDomain.Vault, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + vaultColumns + ` FROM vaults WHERE name = $1 AND deleted_at IS NULL`

	return p.scanVault(querier.QueryRowContext(ctx, query, name))
}

// Update persists mutable vault fields.
func (p *PostgreSQLVaultRepository) Update(ctx context.Context, vault *vaultDomain.Vault) error {
	querier := database.GetTx(ctx, p.db)

	operationsJSON, err := json.Marshal(vault.AllowedOperations)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal allowed operations")
	}

	restrictionsJSON, err := marshalRestrictions(vault.AccessRestrictions)
	if err != nil {
		return err
	}

	query := `UPDATE vaults SET
				name = $2, description = $3, status = $4, encryption_algorithm = $5,
				encryption_key_reference = $6, max_tokens = $7, allowed_operations = $8,
				access_restrictions = $9, retention_days = $10, key_rotation_interval_days = $11,
				last_key_rotation = $12, updated_at = $13
			  WHERE id = $1 AND deleted_at IS NULL`

	result, err := querier.ExecContext(
		ctx,
		query,
		vault.ID,
		vault.Name,
		vault.Description,
		vault.Status,
		vault.EncryptionAlgorithm,
		vault.EncryptionKeyReference,
		vault.MaxTokens,
		operationsJSON,
		restrictionsJSON,
		vault.RetentionDays,
		vault.KeyRotationIntervalDays,
		vault.LastKeyRotation,
		vault.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update vault")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return vaultDomain.ErrVaultNotFound
	}
	return nil
}

// IncrementTokenCount atomically increments the token counter, enforcing the
// capacity invariant in the same statement. Returns ErrVaultCapacityExceeded
// when the vault is already at max_tokens.
func (p *PostgreSQLVaultRepository) IncrementTokenCount(ctx context.Context, vaultID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE vaults
			  SET current_token_count = current_token_count + 1, updated_at = NOW()
			  WHERE id = $1 AND deleted_at IS NULL AND current_token_count < max_tokens`

	result, err := querier.ExecContext(ctx, query, vaultID)
	if err != nil {
		return apperrors.Wrap(err, "failed to increment token count")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return vaultDomain.ErrVaultCapacityExceeded
	}
	return nil
}

// DecrementTokenCount atomically decrements the token counter, never below zero.
func (p *PostgreSQLVaultRepository) DecrementTokenCount(ctx context.Context, vaultID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE vaults
			  SET current_token_count = current_token_count - 1, updated_at = NOW()
			  WHERE id = $1 AND deleted_at IS NULL AND current_token_count > 0`

	if _, err := querier.ExecContext(ctx, query, vaultID); err != nil {
		return apperrors.Wrap(err, "failed to decrement token count")
	}
	return nil
}

// List retrieves vaults ordered by name ascending with pagination.
func (p *PostgreSQLVaultRepository) List(ctx context.Context, offset, limit int) ([]*vaultDomain.Vault, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + vaultColumns + ` FROM vaults
			  WHERE deleted_at IS NULL
			  ORDER BY name ASC
			  LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list vaults")
	}
	defer func() {
		_ = rows.Close()
	}()

	vaults := make([]*vaultDomain.Vault, 0)
	for rows.Next() {
		vault, err := p.scanVault(rows)
		if err != nil {
			return nil, err
		}
		vaults = append(vaults, vault)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating vaults")
	}
	return vaults, nil
}

// ListNeedingRotation retrieves active vaults whose key rotation interval has elapsed.
func (p *PostgreSQLVaultRepository) ListNeedingRotation(ctx context.Context, now time.Time) ([]*vaultDomain.Vault, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + vaultColumns + ` FROM vaults
			  WHERE deleted_at IS NULL
			    AND status = 'active'
			    AND key_rotation_interval_days > 0
			    AND (last_key_rotation IS NULL
			         OR last_key_rotation + make_interval(days => key_rotation_interval_days) <= $1)
			  ORDER BY name ASC`

	rows, err := querier.QueryContext(ctx, query, now)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list vaults needing rotation")
	}
	defer func() {
		_ = rows.Close()
	}()

	vaults := make([]*vaultDomain.Vault, 0)
	for rows.Next() {
		vault, err := p.scanVault(rows)
		if err != nil {
			return nil, err
		}
		vaults = append(vaults, vault)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating vaults")
	}
	return vaults, nil
}

// ListWithRetentionPolicy retrieves vaults carrying a retention policy, so the
// retention sweep knows which vaults to trim.
func (p *PostgreSQLVaultRepository) ListWithRetentionPolicy(ctx context.Context) ([]*vaultDomain.Vault, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + vaultColumns + ` FROM vaults
			  WHERE deleted_at IS NULL
			    AND retention_days > 0
			  ORDER BY name ASC`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list vaults with retention policy")
	}
	defer func() {
		_ = rows.Close()
	}()

	vaults := make([]*vaultDomain.Vault, 0)
	for rows.Next() {
		vault, err := p.scanVault(rows)
		if err != nil {
			return nil, err
		}
		vaults = append(vaults, vault)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating vaults")
	}
	return vaults, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func (p *PostgreSQLVaultRepository) scanVault(row rowScanner) (*vaultDomain.Vault, error) {
	var vault vaultDomain.Vault
	var dataType, status, algorithm string
	var operationsJSON []byte
	var restrictionsJSON []byte

	err := row.Scan(
		&vault.ID,
		&vault.Name,
		&vault.Description,
		&dataType,
		&status,
		&algorithm,
		&vault.EncryptionKeyReference,
		&vault.MaxTokens,
		&vault.CurrentTokenCount,
		&operationsJSON,
		&restrictionsJSON,
		&vault.RetentionDays,
		&vault.KeyRotationIntervalDays,
		&vault.LastKeyRotation,
		&vault.CreatedAt,
		&vault.UpdatedAt,
		&vault.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, vaultDomain.ErrVaultNotFound
		}
		return nil, apperrors.Wrap(err, "failed to scan vault")
	}

	vault.DataType = vaultDomain.DataType(dataType)
	vault.Status = vaultDomain.Status(status)
	vault.EncryptionAlgorithm = cryptoDomain.Algorithm(algorithm)

	if len(operationsJSON) > 0 {
		if err := json.Unmarshal(operationsJSON, &vault.AllowedOperations); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal allowed operations")
		}
	}
	if len(restrictionsJSON) > 0 {
		var restrictions vaultDomain.AccessRestrictions
		if err := json.Unmarshal(restrictionsJSON, &restrictions); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal access restrictions")
		}
		vault.AccessRestrictions = &restrictions
	}

	return &vault, nil
}

func marshalRestrictions(restrictions *vaultDomain.AccessRestrictions) ([]byte, error) {
	if restrictions == nil {
		return nil, nil
	}
	data, err := json.Marshal(restrictions)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal access restrictions")
	}
	return data, nil
}
