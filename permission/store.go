package permission

import (
	"context"

	"github.com/xraph/bastion/id"
)

// Store defines persistence operations for the permission catalog.
type Store interface {
	// CreatePermission persists a new permission.
	CreatePermission(ctx context.Context, p *Permission) error

	// GetPermission retrieves a permission by ID.
	GetPermission(ctx context.Context, permID id.PermissionID) (*Permission, error)

	// GetPermissionByName retrieves a permission by tenant and name.
	GetPermissionByName(ctx context.Context, tenantID, name string) (*Permission, error)

	// DeletePermission removes a permission by tenant and name.
	DeletePermission(ctx context.Context, tenantID, name string) error

	// ListPermissions returns permissions matching the filter, ordered by
	// resource then action.
	ListPermissions(ctx context.Context, filter *ListFilter) ([]*Permission, error)

	// CountPermissions returns the number of permissions matching the filter.
	CountPermissions(ctx context.Context, filter *ListFilter) (int64, error)

	// DeletePermissionsByTenant removes all permissions for a tenant.
	DeletePermissionsByTenant(ctx context.Context, tenantID string) error
}
