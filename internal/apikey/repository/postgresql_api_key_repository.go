// Package repository implements PostgreSQL persistence for API keys.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	apikeyDomain "github.com/allisson/tokenvault/internal/apikey/domain"
	"github.com/allisson/tokenvault/internal/database"
	apperrors "github.com/allisson/tokenvault/internal/errors"
)

const uniqueViolation = "23505"

const apiKeyColumns = `id, name, prefix, secret_hash, role, status, expires_at,
	last_used_at, created_at, revoked_at`

// PostgreSQLAPIKeyRepository implements API key persistence for PostgreSQL.
type PostgreSQLAPIKeyRepository struct {
	db *sql.DB
}

// NewPostgreSQLAPIKeyRepository creates a new PostgreSQL API key repository instance.
func NewPostgreSQLAPIKeyRepository(db *sql.DB) *PostgreSQLAPIKeyRepository {
	return &PostgreSQLAPIKeyRepository{db: db}
}

// Create inserts a new API key. Returns ErrDuplicateName on duplicate name.
func (p *PostgreSQLAPIKeyRepository) Create(ctx context.Context, key *apikeyDomain.APIKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO api_keys (` + apiKeyColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := querier.ExecContext(
		ctx,
		query,
		key.ID,
		key.Name,
		key.Prefix,
		key.SecretHash,
		key.Role,
		key.Status,
		key.ExpiresAt,
		key.LastUsedAt,
		key.CreatedAt,
		key.RevokedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return apikeyDomain.ErrDuplicateName
		}
		return apperrors.Wrap(err, "failed to create api key")
	}
	return nil
}

// Get retrieves an API key by its ID.
func (p *PostgreSQLAPIKeyRepository) Get(ctx context.Context, keyID uuid.UUID) (*apikeyDomain.APIKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE id = $1`

	return scanAPIKey(querier.QueryRowContext(ctx, query, keyID))
}

// GetByPrefix retrieves an API key by its plaintext lookup prefix.
func (p *PostgreSQLAPIKeyRepository) GetByPrefix(ctx context.Context, prefix string) (*apikeyDomain.APIKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE prefix = $1`

	return scanAPIKey(querier.QueryRowContext(ctx, query, prefix))
}

// Update persists mutable API key fields.
func (p *PostgreSQLAPIKeyRepository) Update(ctx context.Context, key *apikeyDomain.APIKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE api_keys
			  SET status = $2, expires_at = $3, last_used_at = $4, revoked_at = $5
			  WHERE id = $1`

	result, err := querier.ExecContext(
		ctx,
		query,
		key.ID,
		key.Status,
		key.ExpiresAt,
		key.LastUsedAt,
		key.RevokedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update api key")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get affected rows")
	}
	if rows == 0 {
		return apikeyDomain.ErrKeyNotFound
	}
	return nil
}

// List retrieves API keys ordered by creation time, newest first.
func (p *PostgreSQLAPIKeyRepository) List(ctx context.Context, offset, limit int) ([]*apikeyDomain.APIKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + apiKeyColumns + ` FROM api_keys
			  ORDER BY created_at DESC OFFSET $1 LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list api keys")
	}
	defer rows.Close()

	var keys []*apikeyDomain.APIKey
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate api keys")
	}
	return keys, nil
}

// TouchLastUsed stamps the last successful authentication time.
func (p *PostgreSQLAPIKeyRepository) TouchLastUsed(ctx context.Context, keyID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE api_keys SET last_used_at = NOW() WHERE id = $1`

	if _, err := querier.ExecContext(ctx, query, keyID); err != nil {
		return apperrors.Wrap(err, "failed to touch api key usage")
	}
	return nil
}

// rowScanner abstracts sql.Row and sql.Rows scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAPIKey(row rowScanner) (*apikeyDomain.APIKey, error) {
	var key apikeyDomain.APIKey
	var role, status string

	err := row.Scan(
		&key.ID,
		&key.Name,
		&key.Prefix,
		&key.SecretHash,
		&role,
		&status,
		&key.ExpiresAt,
		&key.LastUsedAt,
		&key.CreatedAt,
		&key.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apikeyDomain.ErrKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to scan api key")
	}

	key.Role = apikeyDomain.Role(role)
	key.Status = apikeyDomain.Status(status)
	return &key, nil
}
