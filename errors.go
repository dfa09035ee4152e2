package bastion

import "errors"

var (
	// ErrTenantScopeMissing is returned when an operation is invoked without
	// a tenant scope on the context.
	ErrTenantScopeMissing = errors.New("bastion: tenant scope missing")

	// ErrRoleNotFound is returned when a role cannot be found.
	ErrRoleNotFound = errors.New("bastion: role not found")

	// ErrDuplicateRole is returned when a role name already exists in the tenant.
	ErrDuplicateRole = errors.New("bastion: role already exists")

	// ErrUnknownParentRole is returned when inherits_from references a role
	// that does not exist in the tenant.
	ErrUnknownParentRole = errors.New("bastion: parent role not found")

	// ErrPermissionNotFound is returned when a permission cannot be found.
	ErrPermissionNotFound = errors.New("bastion: permission not found")

	// ErrUnknownPermission is returned when a grant references a permission
	// name that is not in the catalog.
	ErrUnknownPermission = errors.New("bastion: unknown permission")

	// ErrDuplicatePermission is returned when a permission name is already
	// defined in the tenant's catalog.
	ErrDuplicatePermission = errors.New("bastion: permission already defined")

	// ErrPermissionInUse is returned when removing a permission that is still
	// referenced by a role's direct grant set.
	ErrPermissionInUse = errors.New("bastion: permission referenced by a role")

	// ErrSystemRoleImmutable is returned when trying to modify or delete a
	// system role.
	ErrSystemRoleImmutable = errors.New("bastion: system role cannot be modified")

	// ErrWildcardRoleImmutable is returned when toggling a matrix cell of a
	// role that carries the wildcard grant.
	ErrWildcardRoleImmutable = errors.New("bastion: wildcard role cells cannot be toggled")

	// ErrCyclicInheritance is returned when role inheritance would create a cycle.
	ErrCyclicInheritance = errors.New("bastion: cyclic role inheritance detected")

	// ErrConflict is returned when an expected-version precondition fails;
	// the caller should re-read and retry.
	ErrConflict = errors.New("bastion: version conflict")

	// ErrRoleAssigned is returned when deleting a role that still has users
	// assigned and the delete policy is restrict.
	ErrRoleAssigned = errors.New("bastion: role still assigned to users")

	// ErrRoleInherited is returned when deleting a role that other roles
	// inherit from.
	ErrRoleInherited = errors.New("bastion: role is inherited by other roles")

	// ErrInvalidRoleName is returned for malformed role names.
	ErrInvalidRoleName = errors.New("bastion: invalid role name")

	// ErrInvalidPermissionName is returned for malformed permission names.
	ErrInvalidPermissionName = errors.New("bastion: invalid permission name")

	// ErrInheritanceDepthExceeded is returned when the inheritance chain walk
	// exceeds the configured maximum depth.
	ErrInheritanceDepthExceeded = errors.New("bastion: inheritance chain depth exceeded")
)
