package domain

import (
	"github.com/allisson/tokenvault/internal/errors"
)

var (
	// ErrAlertNotFound indicates the alert was not found.
	ErrAlertNotFound = errors.Wrap(errors.ErrNotFound, "security alert not found")

	// ErrInvalidAlertTransition indicates the alert is not in a state allowing
	// the requested transition.
	ErrInvalidAlertTransition = errors.Wrap(errors.ErrInvalidInput, "invalid alert status transition")
)
