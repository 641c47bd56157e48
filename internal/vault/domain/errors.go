package domain

import (
	"github.com/allisson/tokenvault/internal/errors"
)

var (
	// ErrVaultNotFound indicates the vault was not found or is not active.
	ErrVaultNotFound = errors.Wrap(errors.ErrNotFound, "vault not found")

	// ErrVaultNameTaken indicates a vault with the same name already exists.
	ErrVaultNameTaken = errors.Wrap(errors.ErrConflict, "vault name already exists")

	// ErrVaultNotActive indicates the vault exists but is inactive or archived.
	ErrVaultNotActive = errors.Wrap(errors.ErrForbidden, "vault is not active")

	// ErrOperationNotAllowed indicates the vault does not permit the requested operation.
	ErrOperationNotAllowed = errors.Wrap(errors.ErrForbidden, "operation not allowed for vault")

	// ErrVaultCapacityExceeded indicates the vault has reached its token capacity.
	ErrVaultCapacityExceeded = errors.Wrap(errors.ErrCapacityExceeded, "vault token capacity exceeded")

	// ErrInvalidDataType indicates an unknown vault data type.
	ErrInvalidDataType = errors.Wrap(errors.ErrInvalidInput, "invalid data type")

	// ErrInvalidOperation indicates an unknown vault operation name.
	ErrInvalidOperation = errors.Wrap(errors.ErrInvalidInput, "invalid operation")

	// ErrInvalidStatusTransition indicates a disallowed vault status transition.
	ErrInvalidStatusTransition = errors.Wrap(errors.ErrInvalidInput, "invalid vault status transition")

	// ErrAccessRestricted indicates the vault's access policy rejects the caller.
	ErrAccessRestricted = errors.Wrap(errors.ErrForbidden, "access restricted by vault policy")

	// ErrNoActiveKey indicates the vault has no active encryption key version.
	ErrNoActiveKey = errors.Wrap(errors.ErrNotFound, "vault has no active encryption key")

	// ErrVaultKeyNotFound indicates the requested vault key version was not found.
	ErrVaultKeyNotFound = errors.Wrap(errors.ErrNotFound, "vault key not found")
)
