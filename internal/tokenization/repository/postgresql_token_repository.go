// Package repository implements PostgreSQL persistence for tokens and the
// shared sequential token counter.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/allisson/tokenvault/internal/database"
	apperrors "github.com/allisson/tokenvault/internal/errors"
	tokenizationDomain "github.com/allisson/tokenvault/internal/tokenization/domain"
)

const uniqueViolation = "23505"

// dedupConstraint is the partial unique index on (vault_id, data_hash) for
// active tokens; tokenValueConstraint is the global unique index on token_value.
const (
	dedupConstraint      = "tokens_vault_id_data_hash_active_idx"
	tokenValueConstraint = "tokens_token_value_idx"
)

const tokenColumns = `id, vault_id, token_value, format_preserved_token, token_type,
	metadata, expires_at, key_version, status, encrypted_data, nonce, data_hash,
	checksum, usage_count, last_used_at, created_at, updated_at`

// PostgreSQLTokenRepository implements token persistence for PostgreSQL.
type PostgreSQLTokenRepository struct {
	db *sql.DB
}

// NewPostgreSQLTokenRepository creates a new PostgreSQL token repository instance.
func NewPostgreSQLTokenRepository(db *sql.DB) *PostgreSQLTokenRepository {
	return &PostgreSQLTokenRepository{db: db}
}

// Create inserts a new token. Unique violations are mapped by constraint:
// ErrDuplicateData when another active token already covers the same
// (vault_id, data_hash), ErrDuplicateTokenValue on a token value collision.
func (p *PostgreSQLTokenRepository) Create(ctx context.Context, token *tokenizationDomain.Token) error {
	querier := database.GetTx(ctx, p.db)

	metadataJSON, err := marshalMetadata(token.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO tokens (` + tokenColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err = querier.ExecContext(
		ctx,
		query,
		token.ID,
		token.VaultID,
		token.TokenValue,
		token.FormatPreservedToken,
		token.TokenType,
		metadataJSON,
		token.ExpiresAt,
		token.KeyVersion,
		token.Status,
		token.EncryptedData,
		token.Nonce,
		token.DataHash,
		token.Checksum,
		token.UsageCount,
		token.LastUsedAt,
		token.CreatedAt,
		token.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			if pqErr.Constraint == dedupConstraint {
				return tokenizationDomain.ErrDuplicateData
			}
			return tokenizationDomain.ErrDuplicateTokenValue
		}
		return apperrors.Wrap(err, "failed to create token")
	}
	return nil
}

// Get retrieves a token by its ID.
func (p *PostgreSQLTokenRepository) Get(ctx context.Context, tokenID uuid.UUID) (*tokenizationDomain.Token, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE id = $1`

	return p.scanToken(querier.QueryRowContext(ctx, query, tokenID))
}

// GetByValue retrieves a token by its token value.
func (p *PostgreSQLTokenRepository) GetByValue(ctx context.Context, vaultID uuid.UUID, tokenValue string) (*tokenizationDomain.Token, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE vault_id = $1 AND token_value = $2`

	return p.scanToken(querier.QueryRowContext(ctx, query, vaultID, tokenValue))
}

// GetActiveByVaultAndHash retrieves the active token deduplicating a plaintext
// within a vault, or ErrTokenNotFound when none exists.
func (p *PostgreSQLTokenRepository) GetActiveByVaultAndHash(ctx context.Context, vaultID uuid.UUID, dataHash string) (*tokenizationDomain.Token, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + tokenColumns + ` FROM tokens
			  WHERE vault_id = $1 AND data_hash = $2 AND status = 'active'`

	return p.scanToken(querier.QueryRowContext(ctx, query, vaultID, dataHash))
}

// Update persists mutable token fields: status, metadata, usage tracking.
func (p *PostgreSQLTokenRepository) Update(ctx context.Context, token *tokenizationDomain.Token) error {
	querier := database.GetTx(ctx, p.db)

	metadataJSON, err := marshalMetadata(token.Metadata)
	if err != nil {
		return err
	}

	query := `UPDATE tokens SET
				metadata = $2, status = $3, usage_count = $4, last_used_at = $5, updated_at = $6
			  WHERE id = $1`

	result, err := querier.ExecContext(
		ctx,
		query,
		token.ID,
		metadataJSON,
		token.Status,
		token.UsageCount,
		token.LastUsedAt,
		token.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update token")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return tokenizationDomain.ErrTokenNotFound
	}
	return nil
}

// Search filters tokens by unencrypted columns and metadata containment. The
// metadata criteria use the JSONB @> operator, so every provided key/value
// pair must match.
func (p *PostgreSQLTokenRepository) Search(ctx context.Context, criteria tokenizationDomain.SearchCriteria) ([]*tokenizationDomain.Token, error) {
	querier := database.GetTx(ctx, p.db)

	var builder strings.Builder
	builder.WriteString(`SELECT ` + tokenColumns + ` FROM tokens WHERE vault_id = $1`)

	args := []any{criteria.VaultID}

	if criteria.TokenType != nil {
		args = append(args, *criteria.TokenType)
		builder.WriteString(` AND token_type = $` + strconv.Itoa(len(args)))
	}
	if criteria.Status != nil {
		args = append(args, *criteria.Status)
		builder.WriteString(` AND status = $` + strconv.Itoa(len(args)))
	}
	if len(criteria.Metadata) > 0 {
		metadataJSON, err := json.Marshal(criteria.Metadata)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to marshal search metadata")
		}
		args = append(args, metadataJSON)
		builder.WriteString(` AND metadata @> $` + strconv.Itoa(len(args)))
	}
	if criteria.CreatedAfter != nil {
		args = append(args, *criteria.CreatedAfter)
		builder.WriteString(` AND created_at >= $` + strconv.Itoa(len(args)))
	}
	if criteria.CreatedBefore != nil {
		args = append(args, *criteria.CreatedBefore)
		builder.WriteString(` AND created_at <= $` + strconv.Itoa(len(args)))
	}

	args = append(args, criteria.Limit)
	builder.WriteString(` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)))

	rows, err := querier.QueryContext(ctx, builder.String(), args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to search tokens")
	}
	defer func() {
		_ = rows.Close()
	}()

	tokens := make([]*tokenizationDomain.Token, 0)
	for rows.Next() {
		token, err := p.scanToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating tokens")
	}
	return tokens, nil
}

// ListExpired retrieves active tokens whose expiry has elapsed, in batches.
func (p *PostgreSQLTokenRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*tokenizationDomain.Token, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + tokenColumns + ` FROM tokens
			  WHERE status = 'active' AND expires_at IS NOT NULL AND expires_at <= $1
			  ORDER BY expires_at ASC
			  LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list expired tokens")
	}
	defer func() {
		_ = rows.Close()
	}()

	tokens := make([]*tokenizationDomain.Token, 0)
	for rows.Next() {
		token, err := p.scanToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating tokens")
	}
	return tokens, nil
}

// CountByStatus aggregates per-status token counts for a vault.
func (p *PostgreSQLTokenRepository) CountByStatus(ctx context.Context, vaultID uuid.UUID) (tokenizationDomain.StatusCounts, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT
				COUNT(*) FILTER (WHERE status = 'active'),
				COUNT(*) FILTER (WHERE status = 'revoked'),
				COUNT(*) FILTER (WHERE status = 'expired'),
				COUNT(*) FILTER (WHERE status = 'compromised')
			  FROM tokens WHERE vault_id = $1`

	var counts tokenizationDomain.StatusCounts
	err := querier.QueryRowContext(ctx, query, vaultID).Scan(
		&counts.Active,
		&counts.Revoked,
		&counts.Expired,
		&counts.Compromised,
	)
	if err != nil {
		return tokenizationDomain.StatusCounts{}, apperrors.Wrap(err, "failed to count tokens by status")
	}
	return counts, nil
}

// DeleteOlderThan removes non-active tokens created before the cutoff. Used by
// retention-policy execution; active tokens are never purged.
func (p *PostgreSQLTokenRepository) DeleteOlderThan(ctx context.Context, vaultID uuid.UUID, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM tokens
			  WHERE vault_id = $1 AND status != 'active' AND created_at < $2`

	result, err := querier.ExecContext(ctx, query, vaultID, cutoff)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete tokens")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rowsAffected, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func (p *PostgreSQLTokenRepository) scanToken(row rowScanner) (*tokenizationDomain.Token, error) {
	var token tokenizationDomain.Token
	var tokenType, status string
	var metadataJSON []byte

	err := row.Scan(
		&token.ID,
		&token.VaultID,
		&token.TokenValue,
		&token.FormatPreservedToken,
		&tokenType,
		&metadataJSON,
		&token.ExpiresAt,
		&token.KeyVersion,
		&status,
		&token.EncryptedData,
		&token.Nonce,
		&token.DataHash,
		&token.Checksum,
		&token.UsageCount,
		&token.LastUsedAt,
		&token.CreatedAt,
		&token.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tokenizationDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to scan token")
	}

	token.TokenType = tokenizationDomain.TokenType(tokenType)
	token.Status = tokenizationDomain.Status(status)

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &token.Metadata); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal token metadata")
		}
	}

	return &token, nil
}

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		return nil, nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal token metadata")
	}
	return data, nil
}
