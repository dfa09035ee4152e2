package bastion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/xraph/forge"

	"github.com/xraph/bastion/assignment"
	"github.com/xraph/bastion/auditlog"
	"github.com/xraph/bastion/id"
	"github.com/xraph/bastion/permission"
	"github.com/xraph/bastion/plugin"
	"github.com/xraph/bastion/role"
	"github.com/xraph/bastion/store"
)

// Engine is the central RBAC engine. It owns role lifecycle, grant deltas,
// effective permission resolution, and the matrix projection, and enforces
// every invariant before touching the store.
type Engine struct {
	store    store.Store
	resolver Resolver
	cache    Cache
	plugins  *plugin.Registry
	logger   *slog.Logger
	config   Config
}

// NewEngine creates a new Bastion engine with the given options.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger: slog.Default(),
		config: DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		return nil, errors.New("bastion: store is required")
	}
	if e.plugins != nil {
		e.plugins.SetLogger(e.logger)
	}
	// A resolver supplied via WithResolver wins; otherwise build the
	// default one from the configured max depth.
	if e.resolver == nil {
		depth := e.config.MaxInheritanceDepth
		if depth <= 0 {
			depth = DefaultConfig().MaxInheritanceDepth
		}
		e.resolver = DefaultResolver(depth)
	}
	return e, nil
}

// Store returns the underlying composite store.
func (e *Engine) Store() store.Store { return e.store }

// Plugins returns the plugin registry (may be nil).
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// Start performs any startup initialization.
func (e *Engine) Start(_ context.Context) error { return nil }

// Stop performs graceful shutdown.
func (e *Engine) Stop(ctx context.Context) error {
	if e.plugins != nil {
		e.plugins.EmitShutdown(ctx)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Role lifecycle
// ──────────────────────────────────────────────────

// CreateRoleInput carries the fields for a new role. System can only be set
// at creation time; it is immutable afterwards.
type CreateRoleInput struct {
	Name         string
	Description  string
	System       bool
	InheritsFrom *string
	Permissions  []string
}

// UpdateRoleInput carries optional changes for an existing role. Nil fields
// are left unchanged; ClearInheritance detaches the role from its parent.
// ExpectedVersion guards against concurrent edits: a non-zero value must
// match the stored version or the update fails with ErrConflict. Zero skips
// the precondition (explicit last-writer-wins).
type UpdateRoleInput struct {
	Description     *string
	InheritsFrom    *string
	ClearInheritance bool
	Permissions     *[]string
	ExpectedVersion int64
}

// CreateRole validates and persists a new role in the caller's tenant.
// All validation happens before the first write; a rejected create leaves
// no partial state.
func (e *Engine) CreateRole(ctx context.Context, in CreateRoleInput) (*role.Role, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if !role.ValidName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRoleName, in.Name)
	}

	if _, err := e.store.GetRoleByName(ctx, tenantID, name); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateRole, name)
	} else if !errors.Is(err, role.ErrNotFound) {
		return nil, fmt.Errorf("bastion: create role: %w", err)
	}

	perms, err := e.validateGrants(ctx, tenantID, in.Permissions)
	if err != nil {
		return nil, err
	}

	if in.InheritsFrom != nil {
		if _, err := e.store.GetRoleByName(ctx, tenantID, *in.InheritsFrom); err != nil {
			if errors.Is(err, role.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrUnknownParentRole, *in.InheritsFrom)
			}
			return nil, fmt.Errorf("bastion: create role: %w", err)
		}
	}

	now := time.Now().UTC()
	r := &role.Role{
		ID:           id.NewRoleID(),
		TenantID:     tenantID,
		Name:         name,
		Description:  strings.TrimSpace(in.Description),
		System:       in.System,
		InheritsFrom: in.InheritsFrom,
		Permissions:  perms,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := e.store.CreateRole(ctx, r); err != nil {
		return nil, fmt.Errorf("bastion: create role: %w", err)
	}

	e.invalidateTenant(ctx, tenantID)
	e.audit(ctx, tenantID, auditlog.ActionRoleCreated, name, "", "")
	if e.plugins != nil {
		e.plugins.EmitRoleCreated(ctx, r)
	}
	return r, nil
}

// UpdateRole applies the given changes to a non-system role. The update is
// all-or-nothing: every check runs before the write, and the store's version
// compare-and-swap is the final guard against concurrent edits.
func (e *Engine) UpdateRole(ctx context.Context, name string, in UpdateRoleInput) (*role.Role, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	current, err := e.getRole(ctx, tenantID, name)
	if err != nil {
		return nil, err
	}
	if current.System {
		return nil, fmt.Errorf("%w: %s", ErrSystemRoleImmutable, name)
	}

	expected := in.ExpectedVersion
	if expected == 0 {
		expected = current.Version
	} else if expected != current.Version {
		return nil, fmt.Errorf("%w: role %s at version %d, expected %d", ErrConflict, name, current.Version, expected)
	}

	updated := *current
	if in.Description != nil {
		updated.Description = strings.TrimSpace(*in.Description)
	}

	switch {
	case in.ClearInheritance:
		updated.InheritsFrom = nil
	case in.InheritsFrom != nil:
		parent := *in.InheritsFrom
		cyclic, err := wouldCycle(ctx, e.store, tenantID, name, parent, e.config.MaxInheritanceDepth)
		if err != nil {
			return nil, err
		}
		if cyclic {
			return nil, fmt.Errorf("%w: %s -> %s", ErrCyclicInheritance, name, parent)
		}
		updated.InheritsFrom = &parent
	}

	if in.Permissions != nil {
		perms, err := e.validateGrants(ctx, tenantID, *in.Permissions)
		if err != nil {
			return nil, err
		}
		updated.Permissions = perms
	}

	updated.Version = expected + 1
	updated.UpdatedAt = time.Now().UTC()

	if err := e.store.UpdateRole(ctx, &updated, expected); err != nil {
		if errors.Is(err, role.ErrVersionMismatch) {
			return nil, fmt.Errorf("%w: role %s", ErrConflict, name)
		}
		return nil, fmt.Errorf("bastion: update role: %w", err)
	}

	e.invalidateTenant(ctx, tenantID)
	e.audit(ctx, tenantID, auditlog.ActionRoleUpdated, name, "", "")
	if e.plugins != nil {
		e.plugins.EmitRoleUpdated(ctx, &updated)
	}
	return &updated, nil
}

// DeleteRole removes a non-system role. Roles that other roles inherit from
// cannot be deleted. Assignments referencing the role are cascade-removed or
// block the deletion, depending on Config.DeletePolicy.
func (e *Engine) DeleteRole(ctx context.Context, name string, expectedVersion int64) error {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return err
	}

	current, err := e.getRole(ctx, tenantID, name)
	if err != nil {
		return err
	}
	if current.System {
		return fmt.Errorf("%w: %s", ErrSystemRoleImmutable, name)
	}
	if expectedVersion != 0 && expectedVersion != current.Version {
		return fmt.Errorf("%w: role %s at version %d, expected %d", ErrConflict, name, current.Version, expectedVersion)
	}

	children, err := e.store.ListChildRoles(ctx, tenantID, name)
	if err != nil {
		return fmt.Errorf("bastion: delete role: %w", err)
	}
	if len(children) > 0 {
		names := make([]string, len(children))
		for i, c := range children {
			names[i] = c.Name
		}
		return fmt.Errorf("%w: %s inherited by %s", ErrRoleInherited, name, strings.Join(names, ", "))
	}

	holders, err := e.store.CountUsersForRole(ctx, tenantID, name)
	if err != nil {
		return fmt.Errorf("bastion: delete role: %w", err)
	}
	if holders > 0 && e.config.deletePolicy() == DeleteRestrict {
		return fmt.Errorf("%w: %s held by %d users", ErrRoleAssigned, name, holders)
	}

	if holders > 0 {
		if err := e.store.DeleteAssignmentsByRole(ctx, tenantID, name); err != nil {
			return fmt.Errorf("bastion: delete role assignments: %w", err)
		}
	}
	if err := e.store.DeleteRole(ctx, current.ID); err != nil {
		return fmt.Errorf("bastion: delete role: %w", err)
	}

	e.invalidateTenant(ctx, tenantID)
	e.audit(ctx, tenantID, auditlog.ActionRoleDeleted, name, "", "")
	if e.plugins != nil {
		e.plugins.EmitRoleDeleted(ctx, tenantID, name)
	}
	return nil
}

// GetRole returns a role by name with its UsersCount populated.
func (e *Engine) GetRole(ctx context.Context, name string) (*role.Role, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	r, err := e.getRole(ctx, tenantID, name)
	if err != nil {
		return nil, err
	}
	count, err := e.store.CountUsersForRole(ctx, tenantID, name)
	if err != nil {
		return nil, fmt.Errorf("bastion: get role: %w", err)
	}
	r.UsersCount = count
	return r, nil
}

// ListRoles returns the tenant's roles in stable order: system roles first,
// then alphabetical by name.
func (e *Engine) ListRoles(ctx context.Context) ([]*role.Role, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	roles, err := e.store.ListRoles(ctx, &role.ListFilter{TenantID: tenantID})
	if err != nil {
		return nil, fmt.Errorf("bastion: list roles: %w", err)
	}
	sort.SliceStable(roles, func(i, j int) bool {
		if roles[i].System != roles[j].System {
			return roles[i].System
		}
		return roles[i].Name < roles[j].Name
	})
	for _, r := range roles {
		count, err := e.store.CountUsersForRole(ctx, tenantID, r.Name)
		if err != nil {
			return nil, fmt.Errorf("bastion: list roles: %w", err)
		}
		r.UsersCount = count
	}
	return roles, nil
}

// ──────────────────────────────────────────────────
// Grant deltas
// ──────────────────────────────────────────────────

// ApplyRoleDelta atomically applies (old ∪ add) \ remove to a role's direct
// grant set. Remove wins on overlap; re-applying the same delta is a no-op.
func (e *Engine) ApplyRoleDelta(ctx context.Context, roleName string, d Delta, expectedVersion int64) (*role.Role, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	r, err := e.applyRoleDelta(ctx, tenantID, roleName, d, expectedVersion)
	if err != nil {
		return nil, err
	}
	e.audit(ctx, tenantID, auditlog.ActionRoleGrants, roleName, "", deltaDetail(d))
	return r, nil
}

// applyRoleDelta is the audit-free delta core shared by ApplyRoleDelta and
// ToggleCell; each caller records its own audit entry.
func (e *Engine) applyRoleDelta(ctx context.Context, tenantID, roleName string, d Delta, expectedVersion int64) (*role.Role, error) {
	current, err := e.getRole(ctx, tenantID, roleName)
	if err != nil {
		return nil, err
	}
	if current.System {
		return nil, fmt.Errorf("%w: %s", ErrSystemRoleImmutable, roleName)
	}

	expected := expectedVersion
	if expected == 0 {
		expected = current.Version
	} else if expected != current.Version {
		return nil, fmt.Errorf("%w: role %s at version %d, expected %d", ErrConflict, roleName, current.Version, expected)
	}

	if _, err := e.validateGrants(ctx, tenantID, d.Add); err != nil {
		return nil, err
	}

	updated := *current
	updated.Permissions = applyDelta(current.Permissions, d).Sorted()
	updated.Version = expected + 1
	updated.UpdatedAt = time.Now().UTC()

	if err := e.store.UpdateRole(ctx, &updated, expected); err != nil {
		if errors.Is(err, role.ErrVersionMismatch) {
			return nil, fmt.Errorf("%w: role %s", ErrConflict, roleName)
		}
		return nil, fmt.Errorf("bastion: apply role delta: %w", err)
	}

	e.invalidateTenant(ctx, tenantID)
	if e.plugins != nil {
		e.plugins.EmitRoleGrantsChanged(ctx, &updated)
	}
	return &updated, nil
}

// ApplyUserDelta atomically applies (held ∪ add) \ remove to a user's role
// set. Remove wins on overlap. Returns the resulting full role set so
// callers can render it without a second read.
func (e *Engine) ApplyUserDelta(ctx context.Context, userID string, d Delta) ([]string, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	// Validate every added role before touching any assignment.
	for _, name := range d.Add {
		if _, err := e.store.GetRoleByName(ctx, tenantID, name); err != nil {
			if errors.Is(err, role.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, name)
			}
			return nil, fmt.Errorf("bastion: apply user delta: %w", err)
		}
	}

	held, err := e.store.ListRolesForUser(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("bastion: apply user delta: %w", err)
	}
	final := applyDelta(held, d)
	heldSet := NewPermissionSet(held...)

	actor := forge.UserIDFromContext(ctx)
	now := time.Now().UTC()

	for _, name := range final.Sorted() {
		if heldSet.Has(name) {
			continue
		}
		a := &assignment.Assignment{
			ID:        id.NewGrantID(),
			TenantID:  tenantID,
			UserID:    userID,
			RoleName:  name,
			GrantedBy: actor,
			CreatedAt: now,
		}
		if err := e.store.CreateAssignment(ctx, a); err != nil && !errors.Is(err, assignment.ErrDuplicate) {
			return nil, fmt.Errorf("bastion: grant role %s: %w", name, err)
		}
		if e.plugins != nil {
			e.plugins.EmitRoleAssigned(ctx, a)
		}
	}
	for _, name := range held {
		if final.Has(name) {
			continue
		}
		if err := e.store.DeleteAssignment(ctx, tenantID, userID, name); err != nil && !errors.Is(err, assignment.ErrNotFound) {
			return nil, fmt.Errorf("bastion: revoke role %s: %w", name, err)
		}
		if e.plugins != nil {
			e.plugins.EmitRoleUnassigned(ctx, &assignment.Assignment{TenantID: tenantID, UserID: userID, RoleName: name})
		}
	}

	e.invalidateUser(ctx, tenantID, userID)
	e.audit(ctx, tenantID, auditlog.ActionUserGrants, "", userID, deltaDetail(d))
	return final.Sorted(), nil
}

// RolesForUser returns the names of the roles the user holds, sorted
// alphabetically. A user with no assignments gets an empty list.
func (e *Engine) RolesForUser(ctx context.Context, userID string) ([]string, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	held, err := e.store.ListRolesForUser(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("bastion: roles for user: %w", err)
	}
	if held == nil {
		held = []string{}
	}
	return held, nil
}

// ──────────────────────────────────────────────────
// Authorization queries
// ──────────────────────────────────────────────────

// HasPermission reports whether the user holds the named permission through
// any of their roles, directly or by inheritance or wildcard. A user with
// zero roles has no permissions; that is not an error.
func (e *Engine) HasPermission(ctx context.Context, userID, permName string) (bool, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return false, err
	}
	set, err := e.effectiveSet(ctx, tenantID, userID)
	if err != nil {
		return false, err
	}
	return set.Has(permName), nil
}

// EffectivePermissions returns the user's full effective permission set as
// catalog records, ordered by resource then action. The result is the union
// over every held role's resolved set; it is idempotent and independent of
// role enumeration order.
func (e *Engine) EffectivePermissions(ctx context.Context, userID string) ([]*permission.Permission, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	set, err := e.effectiveSet(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return []*permission.Permission{}, nil
	}
	catalog, err := e.store.ListPermissions(ctx, &permission.ListFilter{TenantID: tenantID})
	if err != nil {
		return nil, fmt.Errorf("bastion: effective permissions: %w", err)
	}
	out := make([]*permission.Permission, 0, len(set))
	for _, p := range catalog {
		if set.Has(p.Name) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Resolve computes a single role's effective permission set, walking its
// inheritance chain with wildcard short-circuit.
func (e *Engine) Resolve(ctx context.Context, roleName string) (PermissionSet, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return e.resolver.Resolve(ctx, e.store, tenantID, roleName)
}

// effectiveSet unions the resolved set of every role the user holds,
// consulting the cache first when one is configured.
func (e *Engine) effectiveSet(ctx context.Context, tenantID, userID string) (PermissionSet, error) {
	if e.cache != nil && e.config.CacheTTL > 0 {
		if set, ok := e.cache.GetEffective(ctx, tenantID, userID); ok {
			return set, nil
		}
	}

	names, err := e.store.ListRolesForUser(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("bastion: effective set: %w", err)
	}
	result := make(PermissionSet)
	for _, name := range names {
		set, err := e.resolver.Resolve(ctx, e.store, tenantID, name)
		if err != nil {
			return nil, err
		}
		result.Union(set)
	}

	if e.cache != nil && e.config.CacheTTL > 0 {
		e.cache.SetEffective(ctx, tenantID, userID, result)
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// getRole loads a role by name, translating store sentinels to engine errors.
func (e *Engine) getRole(ctx context.Context, tenantID, name string) (*role.Role, error) {
	r, err := e.store.GetRoleByName(ctx, tenantID, name)
	if err != nil {
		if errors.Is(err, role.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, name)
		}
		return nil, fmt.Errorf("bastion: get role: %w", err)
	}
	return r, nil
}

// validateGrants checks every name against the catalog (the wildcard marker
// is exempt) and returns the deduplicated, sorted set. All unknown names are
// reported in one error.
func (e *Engine) validateGrants(ctx context.Context, tenantID string, names []string) ([]string, error) {
	set := NewPermissionSet(names...)
	var unknown []string
	for name := range set {
		if name == Wildcard {
			continue
		}
		if _, err := e.store.GetPermissionByName(ctx, tenantID, name); err != nil {
			if errors.Is(err, permission.ErrNotFound) {
				unknown = append(unknown, name)
				continue
			}
			return nil, fmt.Errorf("bastion: validate grants: %w", err)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %s", ErrUnknownPermission, strings.Join(unknown, ", "))
	}
	return set.Sorted(), nil
}

// audit records a mutation in the audit log. Audit failures are logged and
// never fail the mutation itself.
func (e *Engine) audit(ctx context.Context, tenantID, action, roleName, userID, detail string) {
	if e.config.DisableAudit {
		return
	}
	entry := &auditlog.Entry{
		ID:        id.NewAuditEntryID(),
		TenantID:  tenantID,
		Actor:     forge.UserIDFromContext(ctx),
		Action:    action,
		RoleName:  roleName,
		UserID:    userID,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.store.CreateAuditEntry(ctx, entry); err != nil {
		e.logger.Warn("audit write failed",
			slog.String("tenant", tenantID),
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
	}
}

func (e *Engine) invalidateTenant(ctx context.Context, tenantID string) {
	if e.cache != nil {
		e.cache.InvalidateTenant(ctx, tenantID)
	}
}

func (e *Engine) invalidateUser(ctx context.Context, tenantID, userID string) {
	if e.cache != nil {
		e.cache.InvalidateUser(ctx, tenantID, userID)
	}
}

func deltaDetail(d Delta) string {
	var b strings.Builder
	if len(d.Add) > 0 {
		b.WriteString("+" + strings.Join(d.Add, ",+"))
	}
	if len(d.Remove) > 0 {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("-" + strings.Join(d.Remove, ",-"))
	}
	return b.String()
}
