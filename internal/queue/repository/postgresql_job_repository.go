// Package repository provides PostgreSQL persistence for the durable job queue.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/tokenvault/internal/database"
	apperrors "github.com/allisson/tokenvault/internal/errors"
	queueDomain "github.com/allisson/tokenvault/internal/queue/domain"
)

const jobColumns = `id, queue, job_type, priority, payload, status, attempts,
	scheduled_at, last_error, processed_at, created_at, updated_at`

// PostgreSQLJobRepository handles job persistence for PostgreSQL.
type PostgreSQLJobRepository struct {
	db *sql.DB
}

// NewPostgreSQLJobRepository creates a new PostgreSQLJobRepository.
func NewPostgreSQLJobRepository(db *sql.DB) *PostgreSQLJobRepository {
	return &PostgreSQLJobRepository{db: db}
}

// Create inserts a new job.
func (r *PostgreSQLJobRepository) Create(ctx context.Context, job *queueDomain.Job) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO queue_jobs (` + jobColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := querier.ExecContext(ctx, query, job.ID, job.Queue, job.JobType, job.Priority,
		job.Payload, job.Status, job.Attempts, job.ScheduledAt, job.LastError,
		job.ProcessedAt, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create job")
	}
	return nil
}

// GetPendingJobs claims due pending jobs ordered by priority then age. The
// claim holds row locks for the enclosing transaction; SKIP LOCKED keeps
// concurrent workers from claiming the same rows.
func (r *PostgreSQLJobRepository) GetPendingJobs(ctx context.Context, now time.Time, limit int) ([]*queueDomain.Job, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + jobColumns + ` FROM queue_jobs
			  WHERE status = $1 AND scheduled_at <= $2
			  ORDER BY priority ASC, created_at ASC
			  LIMIT $3
			  FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(ctx, query, queueDomain.JobStatusPending, now, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to claim pending jobs")
	}
	defer rows.Close() //nolint:errcheck

	var jobs []*queueDomain.Job
	for rows.Next() {
		var job queueDomain.Job
		err := rows.Scan(&job.ID, &job.Queue, &job.JobType, &job.Priority, &job.Payload,
			&job.Status, &job.Attempts, &job.ScheduledAt, &job.LastError,
			&job.ProcessedAt, &job.CreatedAt, &job.UpdatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan job")
		}
		jobs = append(jobs, &job)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating jobs")
	}
	return jobs, nil
}

// Update persists job processing state.
func (r *PostgreSQLJobRepository) Update(ctx context.Context, job *queueDomain.Job) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE queue_jobs
			  SET status = $2, attempts = $3, scheduled_at = $4, last_error = $5,
			      processed_at = $6, updated_at = $7
			  WHERE id = $1`

	if _, err := querier.ExecContext(ctx, query, job.ID, job.Status, job.Attempts,
		job.ScheduledAt, job.LastError, job.ProcessedAt, job.UpdatedAt); err != nil {
		return apperrors.Wrap(err, "failed to update job")
	}
	return nil
}

// Get retrieves a job by ID.
func (r *PostgreSQLJobRepository) Get(ctx context.Context, jobID uuid.UUID) (*queueDomain.Job, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + jobColumns + ` FROM queue_jobs WHERE id = $1`

	var job queueDomain.Job
	err := querier.QueryRowContext(ctx, query, jobID).Scan(
		&job.ID, &job.Queue, &job.JobType, &job.Priority, &job.Payload,
		&job.Status, &job.Attempts, &job.ScheduledAt, &job.LastError,
		&job.ProcessedAt, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "job not found")
		}
		return nil, apperrors.Wrap(err, "failed to get job")
	}
	return &job, nil
}

// CountPending reports pending jobs per queue, for backlog metrics.
func (r *PostgreSQLJobRepository) CountPending(ctx context.Context) (map[string]int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT queue, COUNT(*) FROM queue_jobs WHERE status = $1 GROUP BY queue`

	rows, err := querier.QueryContext(ctx, query, queueDomain.JobStatusPending)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to count pending jobs")
	}
	defer rows.Close() //nolint:errcheck

	counts := make(map[string]int64)
	for rows.Next() {
		var queue string
		var count int64
		if err := rows.Scan(&queue, &count); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan pending count")
		}
		counts[queue] = count
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating pending counts")
	}
	return counts, nil
}

// DeleteProcessedBefore removes processed jobs older than the cutoff.
func (r *PostgreSQLJobRepository) DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM queue_jobs WHERE status = $1 AND processed_at < $2`

	result, err := querier.ExecContext(ctx, query, queueDomain.JobStatusProcessed, cutoff)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete processed jobs")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rowsAffected, nil
}
