// Package domain defines the durable job queue entities.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the status of a queued job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusProcessed JobStatus = "processed"
	JobStatusFailed    JobStatus = "failed"
)

// Queue priorities. Lower values are claimed first.
const (
	PriorityCritical = 0
	PriorityHigh     = 1
	PriorityDefault  = 2
	PriorityLow      = 3
)

// Job is a durable unit of background work. Workers claim pending jobs with
// FOR UPDATE SKIP LOCKED ordered by priority, so concurrent workers never
// process the same job twice.
type Job struct {
	ID       uuid.UUID
	Queue    string
	JobType  string
	Priority int
	Payload  []byte
	Status   JobStatus
	Attempts int
	// ScheduledAt defers the job; retry backoff pushes it into the future.
	ScheduledAt time.Time
	LastError   *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewJob creates a pending job runnable immediately.
func NewJob(queue, jobType string, priority int, payload []byte) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:          uuid.Must(uuid.NewV7()),
		Queue:       queue,
		JobType:     jobType,
		Priority:    priority,
		Payload:     payload,
		Status:      JobStatusPending,
		ScheduledAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// MarkProcessed finalizes a successfully handled job.
func (j *Job) MarkProcessed(now time.Time) {
	j.Status = JobStatusProcessed
	processed := now.UTC()
	j.ProcessedAt = &processed
	j.UpdatedAt = processed
}

// RecordFailure bumps the attempt counter and either reschedules the job with
// backoff or marks it failed once attempts are exhausted. Returns true when
// the job is exhausted.
func (j *Job) RecordFailure(errMsg string, maxAttempts int, backoff time.Duration, now time.Time) bool {
	j.Attempts++
	j.LastError = &errMsg
	j.UpdatedAt = now.UTC()

	if j.Attempts >= maxAttempts {
		j.Status = JobStatusFailed
		return true
	}

	j.ScheduledAt = now.UTC().Add(backoff * time.Duration(j.Attempts))
	return false
}
