package api

import (
	"errors"

	"github.com/xraph/forge"

	"github.com/xraph/bastion"
)

// mapError maps domain errors to Forge HTTP errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return forge.NotFound(err.Error())
	}
	if isCallerFault(err) {
		return forge.BadRequest(err.Error())
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, bastion.ErrRoleNotFound) ||
		errors.Is(err, bastion.ErrPermissionNotFound)
}

func isCallerFault(err error) bool {
	return errors.Is(err, bastion.ErrTenantScopeMissing) ||
		errors.Is(err, bastion.ErrDuplicateRole) ||
		errors.Is(err, bastion.ErrDuplicatePermission) ||
		errors.Is(err, bastion.ErrUnknownParentRole) ||
		errors.Is(err, bastion.ErrUnknownPermission) ||
		errors.Is(err, bastion.ErrPermissionInUse) ||
		errors.Is(err, bastion.ErrSystemRoleImmutable) ||
		errors.Is(err, bastion.ErrWildcardRoleImmutable) ||
		errors.Is(err, bastion.ErrCyclicInheritance) ||
		errors.Is(err, bastion.ErrConflict) ||
		errors.Is(err, bastion.ErrRoleAssigned) ||
		errors.Is(err, bastion.ErrRoleInherited) ||
		errors.Is(err, bastion.ErrInvalidRoleName) ||
		errors.Is(err, bastion.ErrInvalidPermissionName) ||
		errors.Is(err, bastion.ErrInheritanceDepthExceeded)
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
