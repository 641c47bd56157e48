package domain

import (
	"github.com/allisson/tokenvault/internal/errors"
)

var (
	// ErrTokenNotFound indicates the token was not found.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")

	// ErrTokenNotUsable indicates the token is not active or has expired.
	ErrTokenNotUsable = errors.Wrap(errors.ErrInvalidInput, "token is not usable")

	// ErrTokenNotRevocable indicates the token is not in a revocable state.
	ErrTokenNotRevocable = errors.Wrap(errors.ErrInvalidInput, "token is not revocable")

	// ErrInvalidTokenType indicates an invalid token type was provided.
	ErrInvalidTokenType = errors.Wrap(errors.ErrInvalidInput, "invalid token type")

	// ErrInvalidTokenValue indicates a generated or stored token value violates
	// the length or composition constraints.
	ErrInvalidTokenValue = errors.Wrap(errors.ErrInvalidInput, "invalid token value")

	// ErrValueTooLarge indicates the plaintext exceeds the maximum input size.
	ErrValueTooLarge = errors.Wrap(errors.ErrInvalidInput, "value exceeds maximum size")

	// ErrDuplicateTokenValue indicates a token value collision on insert.
	ErrDuplicateTokenValue = errors.Wrap(errors.ErrConflict, "token value already exists")

	// ErrDuplicateData indicates another active token already exists for the
	// same (vault, data hash) pair; the caller lost a dedup race.
	ErrDuplicateData = errors.Wrap(errors.ErrConflict, "active token already exists for data")

	// ErrIntegrityCheckFailed indicates the stored checksum does not match the
	// token row; the token must be treated as compromised.
	ErrIntegrityCheckFailed = errors.New("token integrity check failed")
)
