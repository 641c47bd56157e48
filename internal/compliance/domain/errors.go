package domain

import (
	"github.com/allisson/tokenvault/internal/errors"
)

var (
	// ErrReportNotFound indicates the compliance report was not found.
	ErrReportNotFound = errors.Wrap(errors.ErrNotFound, "compliance report not found")

	// ErrInvalidRuleset indicates an unsupported ruleset name.
	ErrInvalidRuleset = errors.Wrap(errors.ErrInvalidInput, "invalid compliance ruleset")

	// ErrInvalidPeriod indicates the report period is empty or inverted.
	ErrInvalidPeriod = errors.Wrap(errors.ErrInvalidInput, "invalid report period")
)
