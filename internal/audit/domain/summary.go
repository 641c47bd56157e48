package domain

import (
	"time"

	"github.com/google/uuid"
)

// ListFilter filters audit log listings. Nil fields match everything.
type ListFilter struct {
	VaultID   *uuid.UUID
	Operation *string
	Result    *Result
	RiskLevel *RiskLevel
	PCIOnly   bool
	IPAddress *string
	UserID    *string
	From      *time.Time
	To        *time.Time
	Offset    int
	Limit     int
}

// Summary aggregates audit activity over a window.
type Summary struct {
	From                time.Time
	To                  time.Time
	Total               int64
	ByOperation         map[string]int64
	ByResult            map[string]int64
	ByRiskLevel         map[string]int64
	PCIRelevantCount    int64
	AvgProcessingTimeMs float64
}
