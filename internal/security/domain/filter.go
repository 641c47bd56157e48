package domain

import (
	"time"

	"github.com/google/uuid"
)

// ListFilter filters alert listings. Nil fields match everything.
type ListFilter struct {
	Status    *AlertStatus
	Severity  *Severity
	AlertType *AlertType
	VaultID   *uuid.UUID
	From      *time.Time
	Offset    int
	Limit     int
}
