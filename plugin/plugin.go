// Package plugin defines the plugin system for Bastion.
// Plugins are notified of lifecycle events (role created, grants changed,
// seed applied, etc.) and can react — logging, metrics, cache busting.
//
// Each lifecycle hook is a separate interface so plugins opt in only
// to the events they care about.
package plugin

import (
	"context"

	"github.com/xraph/bastion/assignment"
	"github.com/xraph/bastion/permission"
	"github.com/xraph/bastion/role"
)

// Plugin is the base interface all plugins must implement.
type Plugin interface {
	// Name returns a unique human-readable name for the plugin.
	Name() string
}

// ──────────────────────────────────────────────────
// Role lifecycle hooks
// ──────────────────────────────────────────────────

// RoleCreated is called after a role is created.
type RoleCreated interface {
	OnRoleCreated(ctx context.Context, r *role.Role) error
}

// RoleUpdated is called after a role is updated.
type RoleUpdated interface {
	OnRoleUpdated(ctx context.Context, r *role.Role) error
}

// RoleDeleted is called after a role is deleted.
type RoleDeleted interface {
	OnRoleDeleted(ctx context.Context, tenantID, name string) error
}

// RoleGrantsChanged is called after a role's direct grant set changes,
// either through a delta or a matrix cell toggle.
type RoleGrantsChanged interface {
	OnRoleGrantsChanged(ctx context.Context, r *role.Role) error
}

// ──────────────────────────────────────────────────
// Catalog lifecycle hooks
// ──────────────────────────────────────────────────

// PermissionDefined is called after a permission is added to the catalog.
type PermissionDefined interface {
	OnPermissionDefined(ctx context.Context, p *permission.Permission) error
}

// PermissionRemoved is called after a permission is removed from the catalog.
type PermissionRemoved interface {
	OnPermissionRemoved(ctx context.Context, tenantID, name string) error
}

// ──────────────────────────────────────────────────
// Assignment lifecycle hooks
// ──────────────────────────────────────────────────

// RoleAssigned is called after a role is granted to a user.
type RoleAssigned interface {
	OnRoleAssigned(ctx context.Context, a *assignment.Assignment) error
}

// RoleUnassigned is called after a role is revoked from a user.
type RoleUnassigned interface {
	OnRoleUnassigned(ctx context.Context, a *assignment.Assignment) error
}

// ──────────────────────────────────────────────────
// Provisioning and shutdown hooks
// ──────────────────────────────────────────────────

// SeedApplied is called after seed data is applied to a tenant.
type SeedApplied interface {
	OnSeedApplied(ctx context.Context, tenantID string) error
}

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
