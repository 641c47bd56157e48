package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/tokenvault/internal/database"
	apperrors "github.com/allisson/tokenvault/internal/errors"
)

// sequenceName keys the single shared counter row behind sequential tokens.
// Token values are unique across all vaults, so every vault draws from the
// same sequence.
const sequenceName = "token"

// PostgreSQLSequenceStore implements an atomic shared counter backed by an
// upsert, so concurrent callers never observe the same value.
type PostgreSQLSequenceStore struct {
	db *sql.DB
}

// NewPostgreSQLSequenceStore creates a new PostgreSQL sequence store instance.
func NewPostgreSQLSequenceStore(db *sql.DB) *PostgreSQLSequenceStore {
	return &PostgreSQLSequenceStore{db: db}
}

// Next increments and returns the shared counter, seeding it with start on
// first use. The upsert makes the read-modify-write a single atomic statement.
func (p *PostgreSQLSequenceStore) Next(ctx context.Context, start int64) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO token_sequences (name, value)
			  VALUES ($1, $2)
			  ON CONFLICT (name)
			  DO UPDATE SET value = token_sequences.value + 1
			  RETURNING value`

	var value int64
	if err := querier.QueryRowContext(ctx, query, sequenceName, start).Scan(&value); err != nil {
		return 0, apperrors.Wrap(err, "failed to advance token sequence")
	}
	return value, nil
}
