package domain

import (
	apperrors "github.com/allisson/tokenvault/internal/errors"
)

var (
	// ErrKeyNotFound indicates the API key does not exist.
	ErrKeyNotFound = apperrors.Wrap(apperrors.ErrNotFound, "api key not found")

	// ErrKeyRevoked indicates the API key has been revoked.
	ErrKeyRevoked = apperrors.Wrap(apperrors.ErrUnauthorized, "api key revoked")

	// ErrKeyExpired indicates the API key is past its expiration time.
	ErrKeyExpired = apperrors.Wrap(apperrors.ErrUnauthorized, "api key expired")

	// ErrInvalidCredentials indicates the presented key failed verification.
	ErrInvalidCredentials = apperrors.Wrap(apperrors.ErrUnauthorized, "invalid api key")

	// ErrAlreadyRevoked indicates a revoke request for an already revoked key.
	ErrAlreadyRevoked = apperrors.Wrap(apperrors.ErrConflict, "api key already revoked")

	// ErrInvalidRole indicates an unknown role name.
	ErrInvalidRole = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid role")

	// ErrDuplicateName indicates an API key with the same name already exists.
	ErrDuplicateName = apperrors.Wrap(apperrors.ErrConflict, "api key name already exists")
)
