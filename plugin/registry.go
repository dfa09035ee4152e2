package plugin

import (
	"context"
	"log/slog"

	"github.com/xraph/bastion/assignment"
	"github.com/xraph/bastion/permission"
	"github.com/xraph/bastion/role"
)

// Named entry types pair a hook with the plugin name for logging.

type roleCreatedEntry struct {
	name string
	hook RoleCreated
}
type roleUpdatedEntry struct {
	name string
	hook RoleUpdated
}
type roleDeletedEntry struct {
	name string
	hook RoleDeleted
}
type roleGrantsChangedEntry struct {
	name string
	hook RoleGrantsChanged
}
type permissionDefinedEntry struct {
	name string
	hook PermissionDefined
}
type permissionRemovedEntry struct {
	name string
	hook PermissionRemoved
}
type roleAssignedEntry struct {
	name string
	hook RoleAssigned
}
type roleUnassignedEntry struct {
	name string
	hook RoleUnassigned
}
type seedAppliedEntry struct {
	name string
	hook SeedApplied
}
type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered plugins and dispatches lifecycle events.
// It type-caches plugins at registration time so emit calls iterate
// only over plugins implementing the relevant hook.
type Registry struct {
	plugins []Plugin
	logger  *slog.Logger

	roleCreated       []roleCreatedEntry
	roleUpdated       []roleUpdatedEntry
	roleDeleted       []roleDeletedEntry
	roleGrantsChanged []roleGrantsChangedEntry
	permissionDefined []permissionDefinedEntry
	permissionRemoved []permissionRemovedEntry
	roleAssigned      []roleAssignedEntry
	roleUnassigned    []roleUnassignedEntry
	seedApplied       []seedAppliedEntry
	shutdown          []shutdownEntry
}

// NewRegistry creates a plugin registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// SetLogger replaces the registry's logger. The engine calls this after all
// construction options have run, so a registry created before WithLogger
// still picks up the configured logger.
func (r *Registry) SetLogger(logger *slog.Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// Register adds a plugin and type-asserts it into all applicable
// hook caches. Plugins are notified in registration order.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
	name := p.Name()

	if h, ok := p.(RoleCreated); ok {
		r.roleCreated = append(r.roleCreated, roleCreatedEntry{name, h})
	}
	if h, ok := p.(RoleUpdated); ok {
		r.roleUpdated = append(r.roleUpdated, roleUpdatedEntry{name, h})
	}
	if h, ok := p.(RoleDeleted); ok {
		r.roleDeleted = append(r.roleDeleted, roleDeletedEntry{name, h})
	}
	if h, ok := p.(RoleGrantsChanged); ok {
		r.roleGrantsChanged = append(r.roleGrantsChanged, roleGrantsChangedEntry{name, h})
	}
	if h, ok := p.(PermissionDefined); ok {
		r.permissionDefined = append(r.permissionDefined, permissionDefinedEntry{name, h})
	}
	if h, ok := p.(PermissionRemoved); ok {
		r.permissionRemoved = append(r.permissionRemoved, permissionRemovedEntry{name, h})
	}
	if h, ok := p.(RoleAssigned); ok {
		r.roleAssigned = append(r.roleAssigned, roleAssignedEntry{name, h})
	}
	if h, ok := p.(RoleUnassigned); ok {
		r.roleUnassigned = append(r.roleUnassigned, roleUnassignedEntry{name, h})
	}
	if h, ok := p.(SeedApplied); ok {
		r.seedApplied = append(r.seedApplied, seedAppliedEntry{name, h})
	}
	if h, ok := p.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Plugins returns all registered plugins.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// ──────────────────────────────────────────────────
// Role event emitters
// ──────────────────────────────────────────────────

// EmitRoleCreated notifies all plugins that implement RoleCreated.
func (r *Registry) EmitRoleCreated(ctx context.Context, rl *role.Role) {
	for _, e := range r.roleCreated {
		if err := e.hook.OnRoleCreated(ctx, rl); err != nil {
			r.logHookError("OnRoleCreated", e.name, err)
		}
	}
}

// EmitRoleUpdated notifies all plugins that implement RoleUpdated.
func (r *Registry) EmitRoleUpdated(ctx context.Context, rl *role.Role) {
	for _, e := range r.roleUpdated {
		if err := e.hook.OnRoleUpdated(ctx, rl); err != nil {
			r.logHookError("OnRoleUpdated", e.name, err)
		}
	}
}

// EmitRoleDeleted notifies all plugins that implement RoleDeleted.
func (r *Registry) EmitRoleDeleted(ctx context.Context, tenantID, name string) {
	for _, e := range r.roleDeleted {
		if err := e.hook.OnRoleDeleted(ctx, tenantID, name); err != nil {
			r.logHookError("OnRoleDeleted", e.name, err)
		}
	}
}

// EmitRoleGrantsChanged notifies all plugins that implement RoleGrantsChanged.
func (r *Registry) EmitRoleGrantsChanged(ctx context.Context, rl *role.Role) {
	for _, e := range r.roleGrantsChanged {
		if err := e.hook.OnRoleGrantsChanged(ctx, rl); err != nil {
			r.logHookError("OnRoleGrantsChanged", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Catalog event emitters
// ──────────────────────────────────────────────────

// EmitPermissionDefined notifies all plugins that implement PermissionDefined.
func (r *Registry) EmitPermissionDefined(ctx context.Context, p *permission.Permission) {
	for _, e := range r.permissionDefined {
		if err := e.hook.OnPermissionDefined(ctx, p); err != nil {
			r.logHookError("OnPermissionDefined", e.name, err)
		}
	}
}

// EmitPermissionRemoved notifies all plugins that implement PermissionRemoved.
func (r *Registry) EmitPermissionRemoved(ctx context.Context, tenantID, name string) {
	for _, e := range r.permissionRemoved {
		if err := e.hook.OnPermissionRemoved(ctx, tenantID, name); err != nil {
			r.logHookError("OnPermissionRemoved", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Assignment event emitters
// ──────────────────────────────────────────────────

// EmitRoleAssigned notifies all plugins that implement RoleAssigned.
func (r *Registry) EmitRoleAssigned(ctx context.Context, a *assignment.Assignment) {
	for _, e := range r.roleAssigned {
		if err := e.hook.OnRoleAssigned(ctx, a); err != nil {
			r.logHookError("OnRoleAssigned", e.name, err)
		}
	}
}

// EmitRoleUnassigned notifies all plugins that implement RoleUnassigned.
func (r *Registry) EmitRoleUnassigned(ctx context.Context, a *assignment.Assignment) {
	for _, e := range r.roleUnassigned {
		if err := e.hook.OnRoleUnassigned(ctx, a); err != nil {
			r.logHookError("OnRoleUnassigned", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Provisioning and shutdown emitters
// ──────────────────────────────────────────────────

// EmitSeedApplied notifies all plugins that implement SeedApplied.
func (r *Registry) EmitSeedApplied(ctx context.Context, tenantID string) {
	for _, e := range r.seedApplied {
		if err := e.hook.OnSeedApplied(ctx, tenantID); err != nil {
			r.logHookError("OnSeedApplied", e.name, err)
		}
	}
}

// EmitShutdown notifies all plugins that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated — they must not block the pipeline.
func (r *Registry) logHookError(hook, pluginName string, err error) {
	r.logger.Warn("plugin hook error",
		slog.String("hook", hook),
		slog.String("plugin", pluginName),
		slog.String("error", err.Error()),
	)
}
