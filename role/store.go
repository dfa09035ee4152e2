package role

import (
	"context"

	"github.com/xraph/bastion/id"
)

// Store defines persistence operations for roles. Implementations persist
// the direct grant set alongside the role record and must apply it
// atomically with the rest of the role on create and update.
type Store interface {
	// CreateRole persists a new role together with its direct grant set.
	CreateRole(ctx context.Context, r *Role) error

	// GetRole retrieves a role by ID.
	GetRole(ctx context.Context, roleID id.RoleID) (*Role, error)

	// GetRoleByName retrieves a role by tenant and name.
	GetRoleByName(ctx context.Context, tenantID, name string) (*Role, error)

	// UpdateRole persists changes to a role if the stored version equals
	// expectedVersion, and fails with ErrVersionMismatch otherwise.
	// The caller sets r.Version to the new version before the call.
	UpdateRole(ctx context.Context, r *Role, expectedVersion int64) error

	// DeleteRole removes a role and its direct grant set.
	DeleteRole(ctx context.Context, roleID id.RoleID) error

	// ListRoles returns roles matching the filter, ordered by name.
	ListRoles(ctx context.Context, filter *ListFilter) ([]*Role, error)

	// CountRoles returns the number of roles matching the filter.
	CountRoles(ctx context.Context, filter *ListFilter) (int64, error)

	// ListChildRoles returns roles in the tenant whose InheritsFrom is name.
	ListChildRoles(ctx context.Context, tenantID, name string) ([]*Role, error)

	// CountRolesGranting returns the number of roles in the tenant whose
	// direct grant set contains the permission name.
	CountRolesGranting(ctx context.Context, tenantID, permName string) (int64, error)

	// DeleteRolesByTenant removes all roles for a tenant.
	DeleteRolesByTenant(ctx context.Context, tenantID string) error
}
