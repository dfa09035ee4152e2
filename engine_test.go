package bastion_test

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/bastion"
	"github.com/xraph/bastion/auditlog"
	"github.com/xraph/bastion/cache"
	"github.com/xraph/bastion/store"
	"github.com/xraph/bastion/store/memory"
)

func newTestEngine(t *testing.T, opts ...bastion.Option) *bastion.Engine {
	t.Helper()
	s := memory.New()
	eng, err := bastion.NewEngine(append([]bastion.Option{bastion.WithStore(s)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return eng
}

func tenantCtx(tenantID string) context.Context {
	return bastion.WithTenant(context.Background(), tenantID)
}

// defineCatalog registers the given permission names in the tenant's catalog.
func defineCatalog(t *testing.T, eng *bastion.Engine, ctx context.Context, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := eng.DefinePermission(ctx, bastion.DefinePermissionInput{Name: name}); err != nil {
			t.Fatalf("define %s: %v", name, err)
		}
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewEngine_RequiresStore(t *testing.T) {
	_, err := bastion.NewEngine()
	if err == nil {
		t.Fatal("expected error when store is nil")
	}
}

func TestTenantScopeRequired(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.CreateRole(context.Background(), bastion.CreateRoleInput{Name: "editor"})
	if !errors.Is(err, bastion.ErrTenantScopeMissing) {
		t.Fatalf("expected bastion.ErrTenantScopeMissing, got %v", err)
	}
	_, err = eng.HasPermission(context.Background(), "u1", "docs:read")
	if !errors.Is(err, bastion.ErrTenantScopeMissing) {
		t.Fatalf("expected bastion.ErrTenantScopeMissing, got %v", err)
	}
}

func TestCreateRoleValidation(t *testing.T) {
	ctx := tenantCtx("t1")
	eng := newTestEngine(t)
	defineCatalog(t, eng, ctx, "docs:read")

	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "Bad Name!"}); !errors.Is(err, bastion.ErrInvalidRoleName) {
		t.Fatalf("expected bastion.ErrInvalidRoleName, got %v", err)
	}

	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "editor", Permissions: []string{"docs:write"}}); !errors.Is(err, bastion.ErrUnknownPermission) {
		t.Fatalf("expected bastion.ErrUnknownPermission, got %v", err)
	}

	parent := "ghost"
	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "editor", InheritsFrom: &parent}); !errors.Is(err, bastion.ErrUnknownParentRole) {
		t.Fatalf("expected bastion.ErrUnknownParentRole, got %v", err)
	}

	r, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "editor", Permissions: []string{"docs:read"}})
	if err != nil {
		t.Fatal(err)
	}
	if r.Version != 1 {
		t.Fatalf("new role version = %d, want 1", r.Version)
	}

	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "editor"}); !errors.Is(err, bastion.ErrDuplicateRole) {
		t.Fatalf("expected bastion.ErrDuplicateRole, got %v", err)
	}
}

func TestUpdateRole(t *testing.T) {
	ctx := tenantCtx("t1")
	eng := newTestEngine(t)
	defineCatalog(t, eng, ctx, "docs:read", "docs:write")

	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "editor", Permissions: []string{"docs:read"}}); err != nil {
		t.Fatal(err)
	}

	desc := "can edit documents"
	perms := []string{"docs:read", "docs:write"}
	r, err := eng.UpdateRole(ctx, "editor", bastion.UpdateRoleInput{Description: &desc, Permissions: &perms})
	if err != nil {
		t.Fatal(err)
	}
	if r.Version != 2 {
		t.Fatalf("updated version = %d, want 2", r.Version)
	}
	if r.Description != desc {
		t.Fatalf("description = %q", r.Description)
	}
	if !equalStrings(r.Permissions, []string{"docs:read", "docs:write"}) {
		t.Fatalf("permissions = %v", r.Permissions)
	}

	// Stale version must be rejected.
	_, err = eng.UpdateRole(ctx, "editor", bastion.UpdateRoleInput{Description: &desc, ExpectedVersion: 1})
	if !errors.Is(err, bastion.ErrConflict) {
		t.Fatalf("expected bastion.ErrConflict, got %v", err)
	}

	// Matching version passes.
	if _, err := eng.UpdateRole(ctx, "editor", bastion.UpdateRoleInput{Description: &desc, ExpectedVersion: 2}); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateRole_SystemImmutable(t *testing.T) {
	ctx := tenantCtx("t1")
	eng := newTestEngine(t)

	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "root", System: true}); err != nil {
		t.Fatal(err)
	}

	desc := "nope"
	if _, err := eng.UpdateRole(ctx, "root", bastion.UpdateRoleInput{Description: &desc}); !errors.Is(err, bastion.ErrSystemRoleImmutable) {
		t.Fatalf("expected bastion.ErrSystemRoleImmutable, got %v", err)
	}
	if err := eng.DeleteRole(ctx, "root", 0); !errors.Is(err, bastion.ErrSystemRoleImmutable) {
		t.Fatalf("expected bastion.ErrSystemRoleImmutable on delete, got %v", err)
	}
	if _, err := eng.ApplyRoleDelta(ctx, "root", bastion.Delta{Add: []string{"x:y"}}, 0); !errors.Is(err, bastion.ErrSystemRoleImmutable) {
		t.Fatalf("expected bastion.ErrSystemRoleImmutable on delta, got %v", err)
	}
}

func TestCyclicInheritanceRejected(t *testing.T) {
	ctx := tenantCtx("t1")
	eng := newTestEngine(t)

	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "a"}); err != nil {
		t.Fatal(err)
	}
	a := "a"
	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "b", InheritsFrom: &a}); err != nil {
		t.Fatal(err)
	}

	// a -> b would close the loop a -> b -> a.
	b := "b"
	if _, err := eng.UpdateRole(ctx, "a", bastion.UpdateRoleInput{InheritsFrom: &b}); !errors.Is(err, bastion.ErrCyclicInheritance) {
		t.Fatalf("expected bastion.ErrCyclicInheritance, got %v", err)
	}

	// Self-inheritance is the smallest cycle.
	if _, err := eng.UpdateRole(ctx, "a", bastion.UpdateRoleInput{InheritsFrom: &a}); !errors.Is(err, bastion.ErrCyclicInheritance) {
		t.Fatalf("expected bastion.ErrCyclicInheritance on self-parent, got %v", err)
	}

	// Clearing inheritance detaches b.
	r, err := eng.UpdateRole(ctx, "b", bastion.UpdateRoleInput{ClearInheritance: true})
	if err != nil {
		t.Fatal(err)
	}
	if r.InheritsFrom != nil {
		t.Fatal("expected inheritance cleared")
	}
}

func TestDeleteRole_CascadesAssignments(t *testing.T) {
	ctx := tenantCtx("t1")
	eng := newTestEngine(t)

	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "editor"}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.ApplyUserDelta(ctx, "u1", bastion.Delta{Add: []string{"editor"}}); err != nil {
		t.Fatal(err)
	}

	if err := eng.DeleteRole(ctx, "editor", 0); err != nil {
		t.Fatal(err)
	}

	roles, err := eng.RolesForUser(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(roles) != 0 {
		t.Fatalf("expected no roles after cascade, got %v", roles)
	}
	if _, err := eng.GetRole(ctx, "editor"); !errors.Is(err, bastion.ErrRoleNotFound) {
		t.Fatalf("expected bastion.ErrRoleNotFound, got %v", err)
	}
}

func TestDeleteRole_RestrictPolicy(t *testing.T) {
	ctx := tenantCtx("t1")
	cfg := bastion.DefaultConfig()
	cfg.DeletePolicy = bastion.DeleteRestrict
	eng := newTestEngine(t, bastion.WithConfig(cfg))

	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "editor"}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.ApplyUserDelta(ctx, "u1", bastion.Delta{Add: []string{"editor"}}); err != nil {
		t.Fatal(err)
	}

	if err := eng.DeleteRole(ctx, "editor", 0); !errors.Is(err, bastion.ErrRoleAssigned) {
		t.Fatalf("expected bastion.ErrRoleAssigned, got %v", err)
	}

	// After revoking the assignment the delete goes through.
	if _, err := eng.ApplyUserDelta(ctx, "u1", bastion.Delta{Remove: []string{"editor"}}); err != nil {
		t.Fatal(err)
	}
	if err := eng.DeleteRole(ctx, "editor", 0); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteRole_InheritedBlocked(t *testing.T) {
	ctx := tenantCtx("t1")
	eng := newTestEngine(t)

	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "base"}); err != nil {
		t.Fatal(err)
	}
	base := "base"
	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "derived", InheritsFrom: &base}); err != nil {
		t.Fatal(err)
	}

	if err := eng.DeleteRole(ctx, "base", 0); !errors.Is(err, bastion.ErrRoleInherited) {
		t.Fatalf("expected bastion.ErrRoleInherited, got %v", err)
	}

	// Removing the child unblocks the parent.
	if err := eng.DeleteRole(ctx, "derived", 0); err != nil {
		t.Fatal(err)
	}
	if err := eng.DeleteRole(ctx, "base", 0); err != nil {
		t.Fatal(err)
	}
}

func TestApplyRoleDelta(t *testing.T) {
	ctx := tenantCtx("t1")
	eng := newTestEngine(t)
	defineCatalog(t, eng, ctx, "docs:read", "docs:write", "docs:delete")

	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "editor", Permissions: []string{"docs:read"}}); err != nil {
		t.Fatal(err)
	}

	// Remove wins when a name appears on both sides.
	r, err := eng.ApplyRoleDelta(ctx, "editor", bastion.Delta{
		Add:    []string{"docs:write", "docs:delete"},
		Remove: []string{"docs:delete"},
	}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !equalStrings(r.Permissions, []string{"docs:read", "docs:write"}) {
		t.Fatalf("permissions = %v, want [docs:read docs:write]", r.Permissions)
	}
	if r.Version != 2 {
		t.Fatalf("version = %d, want 2", r.Version)
	}

	// Re-applying the same delta yields the same set.
	r, err = eng.ApplyRoleDelta(ctx, "editor", bastion.Delta{
		Add:    []string{"docs:write", "docs:delete"},
		Remove: []string{"docs:delete"},
	}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !equalStrings(r.Permissions, []string{"docs:read", "docs:write"}) {
		t.Fatalf("idempotent re-apply: permissions = %v", r.Permissions)
	}

	// Unknown names in Add are rejected before any write.
	if _, err := eng.ApplyRoleDelta(ctx, "editor", bastion.Delta{Add: []string{"ghosts:summon"}}, 0); !errors.Is(err, bastion.ErrUnknownPermission) {
		t.Fatalf("expected bastion.ErrUnknownPermission, got %v", err)
	}

	// Stale version is a conflict.
	if _, err := eng.ApplyRoleDelta(ctx, "editor", bastion.Delta{Add: []string{"docs:delete"}}, 1); !errors.Is(err, bastion.ErrConflict) {
		t.Fatalf("expected bastion.ErrConflict, got %v", err)
	}
}

func TestApplyUserDelta(t *testing.T) {
	ctx := tenantCtx("t1")
	eng := newTestEngine(t)

	for _, name := range []string{"viewer", "editor", "admin"} {
		if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: name}); err != nil {
			t.Fatal(err)
		}
	}

	roles, err := eng.ApplyUserDelta(ctx, "u1", bastion.Delta{Add: []string{"editor", "viewer"}})
	if err != nil {
		t.Fatal(err)
	}
	if !equalStrings(roles, []string{"editor", "viewer"}) {
		t.Fatalf("roles = %v, want [editor viewer]", roles)
	}

	// Adding a held role and removing an absent one are both no-ops.
	roles, err = eng.ApplyUserDelta(ctx, "u1", bastion.Delta{Add: []string{"editor"}, Remove: []string{"admin"}})
	if err != nil {
		t.Fatal(err)
	}
	if !equalStrings(roles, []string{"editor", "viewer"}) {
		t.Fatalf("idempotent delta: roles = %v", roles)
	}

	// Remove wins on overlap.
	roles, err = eng.ApplyUserDelta(ctx, "u1", bastion.Delta{Add: []string{"admin"}, Remove: []string{"admin", "viewer"}})
	if err != nil {
		t.Fatal(err)
	}
	if !equalStrings(roles, []string{"editor"}) {
		t.Fatalf("remove-wins delta: roles = %v", roles)
	}

	// Unknown roles in Add are rejected before any write.
	if _, err := eng.ApplyUserDelta(ctx, "u1", bastion.Delta{Add: []string{"ghost"}}); !errors.Is(err, bastion.ErrRoleNotFound) {
		t.Fatalf("expected bastion.ErrRoleNotFound, got %v", err)
	}
}

func TestResolveInheritance(t *testing.T) {
	ctx := tenantCtx("t1")
	eng := newTestEngine(t)
	defineCatalog(t, eng, ctx, "docs:read", "docs:write", "docs:delete")

	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "viewer", Permissions: []string{"docs:read"}}); err != nil {
		t.Fatal(err)
	}
	viewer := "viewer"
	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "editor", InheritsFrom: &viewer, Permissions: []string{"docs:write"}}); err != nil {
		t.Fatal(err)
	}

	set, err := eng.Resolve(ctx, "editor")
	if err != nil {
		t.Fatal(err)
	}
	if !equalStrings(set.Sorted(), []string{"docs:read", "docs:write"}) {
		t.Fatalf("effective = %v", set.Sorted())
	}
	if set.Has("docs:delete") {
		t.Fatal("editor should not hold docs:delete")
	}
}

func TestWildcardShortCircuit(t *testing.T) {
	ctx := tenantCtx("t1")
	eng := newTestEngine(t)
	defineCatalog(t, eng, ctx, "docs:read")

	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "admin", Permissions: []string{bastion.Wildcard}}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.ApplyUserDelta(ctx, "u1", bastion.Delta{Add: []string{"admin"}}); err != nil {
		t.Fatal(err)
	}

	ok, err := eng.HasPermission(ctx, "u1", "docs:read")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("wildcard role should grant docs:read")
	}

	// Permissions defined after the role was created are covered too.
	defineCatalog(t, eng, ctx, "billing:refund")
	ok, err = eng.HasPermission(ctx, "u1", "billing:refund")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("wildcard role should cover later-defined permissions")
	}
}

func TestInheritanceDepthExceeded(t *testing.T) {
	ctx := tenantCtx("t1")
	cfg := bastion.DefaultConfig()
	cfg.MaxInheritanceDepth = 2
	eng := newTestEngine(t, bastion.WithConfig(cfg))

	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "r0"}); err != nil {
		t.Fatal(err)
	}
	prev := "r0"
	for _, name := range []string{"r1", "r2", "r3"} {
		parent := prev
		if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: name, InheritsFrom: &parent}); err != nil {
			t.Fatal(err)
		}
		prev = name
	}

	if _, err := eng.Resolve(ctx, "r3"); !errors.Is(err, bastion.ErrInheritanceDepthExceeded) {
		t.Fatalf("expected bastion.ErrInheritanceDepthExceeded, got %v", err)
	}
}

func TestEffectivePermissionsOrdering(t *testing.T) {
	ctx := tenantCtx("t1")
	eng := newTestEngine(t)
	defineCatalog(t, eng, ctx, "users:write", "docs:read", "users:read")

	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "staff", Permissions: []string{"users:write", "docs:read", "users:read"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.ApplyUserDelta(ctx, "u1", bastion.Delta{Add: []string{"staff"}}); err != nil {
		t.Fatal(err)
	}

	perms, err := eng.EffectivePermissions(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	got := make([]string, len(perms))
	for i, p := range perms {
		got[i] = p.Name
	}
	// Catalog order: resource then action.
	if !equalStrings(got, []string{"docs:read", "users:read", "users:write"}) {
		t.Fatalf("effective permissions = %v", got)
	}
}

func TestUserWithoutRolesHasNothing(t *testing.T) {
	ctx := tenantCtx("t1")
	eng := newTestEngine(t)
	defineCatalog(t, eng, ctx, "docs:read")

	ok, err := eng.HasPermission(ctx, "nobody", "docs:read")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("user without roles should hold nothing")
	}

	perms, err := eng.EffectivePermissions(ctx, "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if len(perms) != 0 {
		t.Fatalf("expected empty set, got %v", perms)
	}
}

func TestTenantIsolation(t *testing.T) {
	eng := newTestEngine(t)
	ctx1 := tenantCtx("t1")
	ctx2 := tenantCtx("t2")

	defineCatalog(t, eng, ctx1, "docs:read")
	if _, err := eng.CreateRole(ctx1, bastion.CreateRoleInput{Name: "editor", Permissions: []string{"docs:read"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.ApplyUserDelta(ctx1, "u1", bastion.Delta{Add: []string{"editor"}}); err != nil {
		t.Fatal(err)
	}

	// t2 sees neither the role nor the catalog entry nor the grant.
	if _, err := eng.GetRole(ctx2, "editor"); !errors.Is(err, bastion.ErrRoleNotFound) {
		t.Fatalf("expected bastion.ErrRoleNotFound in t2, got %v", err)
	}
	if _, err := eng.GetPermission(ctx2, "docs:read"); !errors.Is(err, bastion.ErrPermissionNotFound) {
		t.Fatalf("expected bastion.ErrPermissionNotFound in t2, got %v", err)
	}
	ok, err := eng.HasPermission(ctx2, "u1", "docs:read")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("t2 must not see t1 grants")
	}

	// The same role name is free in t2.
	if _, err := eng.CreateRole(ctx2, bastion.CreateRoleInput{Name: "editor"}); err != nil {
		t.Fatal(err)
	}
}

func TestListRolesOrdering(t *testing.T) {
	ctx := tenantCtx("t1")
	eng := newTestEngine(t)

	for _, in := range []bastion.CreateRoleInput{
		{Name: "zeta"},
		{Name: "sys", System: true},
		{Name: "alpha"},
	} {
		if _, err := eng.CreateRole(ctx, in); err != nil {
			t.Fatal(err)
		}
	}

	roles, err := eng.ListRoles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	got := make([]string, len(roles))
	for i, r := range roles {
		got[i] = r.Name
	}
	if !equalStrings(got, []string{"sys", "alpha", "zeta"}) {
		t.Fatalf("roles order = %v, want system first then alphabetical", got)
	}
}

func TestPermissionCatalog(t *testing.T) {
	ctx := tenantCtx("t1")
	eng := newTestEngine(t)

	if _, err := eng.DefinePermission(ctx, bastion.DefinePermissionInput{Name: "not-a-permission"}); !errors.Is(err, bastion.ErrInvalidPermissionName) {
		t.Fatalf("expected bastion.ErrInvalidPermissionName, got %v", err)
	}

	p, err := eng.DefinePermission(ctx, bastion.DefinePermissionInput{Name: "docs:read", Description: "view documents"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Resource != "docs" || p.Action != "read" {
		t.Fatalf("parsed resource/action = %s/%s", p.Resource, p.Action)
	}

	if _, err := eng.DefinePermission(ctx, bastion.DefinePermissionInput{Name: "docs:read"}); !errors.Is(err, bastion.ErrDuplicatePermission) {
		t.Fatalf("expected bastion.ErrDuplicatePermission, got %v", err)
	}

	// A permission granted to a role cannot be removed.
	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "viewer", Permissions: []string{"docs:read"}}); err != nil {
		t.Fatal(err)
	}
	if err := eng.RemovePermission(ctx, "docs:read"); !errors.Is(err, bastion.ErrPermissionInUse) {
		t.Fatalf("expected bastion.ErrPermissionInUse, got %v", err)
	}

	// Revoking the grant frees it up.
	if _, err := eng.ApplyRoleDelta(ctx, "viewer", bastion.Delta{Remove: []string{"docs:read"}}, 0); err != nil {
		t.Fatal(err)
	}
	if err := eng.RemovePermission(ctx, "docs:read"); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.GetPermission(ctx, "docs:read"); !errors.Is(err, bastion.ErrPermissionNotFound) {
		t.Fatalf("expected bastion.ErrPermissionNotFound, got %v", err)
	}
}

func TestMatrix(t *testing.T) {
	ctx := tenantCtx("t1")
	eng := newTestEngine(t)
	defineCatalog(t, eng, ctx, "docs:read", "docs:write")

	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "viewer", Permissions: []string{"docs:read"}}); err != nil {
		t.Fatal(err)
	}
	viewer := "viewer"
	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "editor", InheritsFrom: &viewer, Permissions: []string{"docs:write"}}); err != nil {
		t.Fatal(err)
	}

	m, err := eng.Matrix(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Rows) != 2 || len(m.Permissions) != 2 {
		t.Fatalf("matrix %dx%d, want 2x2", len(m.Rows), len(m.Permissions))
	}

	var editorRow *bastion.MatrixRow
	for _, row := range m.Rows {
		if row.Role == "editor" {
			editorRow = row
		}
	}
	if editorRow == nil {
		t.Fatal("editor row missing")
	}

	// Inherited grant: granted but not direct.
	cell := editorRow.Cells["docs:read"]
	if !cell.Granted || cell.Direct {
		t.Fatalf("inherited cell = %+v, want granted and not direct", cell)
	}
	cell = editorRow.Cells["docs:write"]
	if !cell.Granted || !cell.Direct {
		t.Fatalf("direct cell = %+v, want granted and direct", cell)
	}
}

func TestToggleCell(t *testing.T) {
	ctx := tenantCtx("t1")
	eng := newTestEngine(t)
	defineCatalog(t, eng, ctx, "docs:read", "docs:write")

	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "viewer", Permissions: []string{"docs:read"}}); err != nil {
		t.Fatal(err)
	}

	// Toggle on: docs:write becomes a direct grant.
	m, err := eng.ToggleCell(ctx, "viewer", "docs:write", 0)
	if err != nil {
		t.Fatal(err)
	}
	cell := m.Rows[0].Cells["docs:write"]
	if !cell.Granted || !cell.Direct {
		t.Fatalf("after toggle on: %+v", cell)
	}

	// Toggle off again.
	m, err = eng.ToggleCell(ctx, "viewer", "docs:write", 0)
	if err != nil {
		t.Fatal(err)
	}
	cell = m.Rows[0].Cells["docs:write"]
	if cell.Granted || cell.Direct {
		t.Fatalf("after toggle off: %+v", cell)
	}
}

func TestToggleCell_ImmutableRoles(t *testing.T) {
	ctx := tenantCtx("t1")
	eng := newTestEngine(t)
	defineCatalog(t, eng, ctx, "docs:read")

	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "owner", Permissions: []string{bastion.Wildcard}}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.ToggleCell(ctx, "owner", "docs:read", 0); !errors.Is(err, bastion.ErrWildcardRoleImmutable) {
		t.Fatalf("expected bastion.ErrWildcardRoleImmutable, got %v", err)
	}

	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "sys", System: true}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.ToggleCell(ctx, "sys", "docs:read", 0); !errors.Is(err, bastion.ErrSystemRoleImmutable) {
		t.Fatalf("expected bastion.ErrSystemRoleImmutable, got %v", err)
	}
}

func TestSeedIdempotent(t *testing.T) {
	ctx := tenantCtx("t1")
	eng := newTestEngine(t)

	if err := eng.Seed(ctx, bastion.DefaultSeed()); err != nil {
		t.Fatal(err)
	}

	// member inherits viewer's read permissions.
	if _, err := eng.ApplyUserDelta(ctx, "u1", bastion.Delta{Add: []string{"member"}}); err != nil {
		t.Fatal(err)
	}
	ok, err := eng.HasPermission(ctx, "u1", "users:read")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("member should inherit users:read from viewer")
	}

	// admin holds the wildcard.
	if _, err := eng.ApplyUserDelta(ctx, "u2", bastion.Delta{Add: []string{"admin"}}); err != nil {
		t.Fatal(err)
	}
	ok, err = eng.HasPermission(ctx, "u2", "settings:write")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("admin should hold everything")
	}

	// Customize viewer, re-seed, and check the customization survives.
	if _, err := eng.ApplyRoleDelta(ctx, "viewer", bastion.Delta{Add: []string{"users:write"}}, 0); err != nil {
		t.Fatal(err)
	}
	if err := eng.Seed(ctx, bastion.DefaultSeed()); err != nil {
		t.Fatal(err)
	}
	v, err := eng.GetRole(ctx, "viewer")
	if err != nil {
		t.Fatal(err)
	}
	if !v.HasDirect("users:write") {
		t.Fatal("re-seeding must not clobber tenant customization")
	}
}

func TestCachedResolutionInvalidation(t *testing.T) {
	ctx := tenantCtx("t1")
	eng := newTestEngine(t, bastion.WithCache(cache.NewMemory()))
	defineCatalog(t, eng, ctx, "docs:read", "docs:write")

	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "viewer", Permissions: []string{"docs:read"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.ApplyUserDelta(ctx, "u1", bastion.Delta{Add: []string{"viewer"}}); err != nil {
		t.Fatal(err)
	}

	// Warm the cache.
	ok, err := eng.HasPermission(ctx, "u1", "docs:write")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("viewer should not hold docs:write yet")
	}

	// A grant mutation must invalidate the cached set.
	if _, err := eng.ApplyRoleDelta(ctx, "viewer", bastion.Delta{Add: []string{"docs:write"}}, 0); err != nil {
		t.Fatal(err)
	}
	ok, err = eng.HasPermission(ctx, "u1", "docs:write")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("grant change should be visible immediately")
	}
}

func TestAuditTrail(t *testing.T) {
	ctx := tenantCtx("t1")
	eng := newTestEngine(t)
	defineCatalog(t, eng, ctx, "docs:read")

	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "viewer", Permissions: []string{"docs:read"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.ApplyUserDelta(ctx, "u1", bastion.Delta{Add: []string{"viewer"}}); err != nil {
		t.Fatal(err)
	}

	entries, total, err := eng.AuditEntries(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if total < 3 {
		t.Fatalf("expected at least 3 audit entries, got %d", total)
	}
	// Newest first.
	if entries[0].Action != auditlog.ActionUserGrants {
		t.Fatalf("newest entry action = %s, want %s", entries[0].Action, auditlog.ActionUserGrants)
	}

	// Filter by action.
	entries, _, err = eng.AuditEntries(ctx, &auditlog.QueryFilter{Action: auditlog.ActionRoleCreated})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].RoleName != "viewer" {
		t.Fatalf("filtered entries = %+v", entries)
	}

	// Audit entries are tenant-scoped.
	_, total, err = eng.AuditEntries(tenantCtx("t2"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Fatalf("t2 should have no entries, got %d", total)
	}
}

func TestAuditDisabled(t *testing.T) {
	ctx := tenantCtx("t1")
	cfg := bastion.DefaultConfig()
	cfg.DisableAudit = true
	eng := newTestEngine(t, bastion.WithConfig(cfg))

	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "viewer"}); err != nil {
		t.Fatal(err)
	}

	_, total, err := eng.AuditEntries(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Fatalf("expected no audit entries when disabled, got %d", total)
	}
}

// recordingResolver wraps the default resolver and records every role it
// is asked to resolve.
type recordingResolver struct {
	inner bastion.Resolver
	calls []string
}

func (r *recordingResolver) Resolve(ctx context.Context, st store.Store, tenantID, roleName string) (bastion.PermissionSet, error) {
	r.calls = append(r.calls, roleName)
	return r.inner.Resolve(ctx, st, tenantID, roleName)
}

func TestWithResolver(t *testing.T) {
	res := &recordingResolver{inner: bastion.DefaultResolver(10)}
	eng := newTestEngine(t, bastion.WithResolver(res))
	ctx := tenantCtx("t1")
	defineCatalog(t, eng, ctx, "docs:read")

	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "viewer", Permissions: []string{"docs:read"}}); err != nil {
		t.Fatal(err)
	}

	set, err := eng.Resolve(ctx, "viewer")
	if err != nil {
		t.Fatal(err)
	}
	if !set.Has("docs:read") {
		t.Fatalf("resolved set = %v", set.Sorted())
	}
	if len(res.calls) == 0 {
		t.Fatal("resolver supplied at construction was never invoked")
	}
}

func TestEffectivePermissionsUnion(t *testing.T) {
	ctx := tenantCtx("t1")
	eng := newTestEngine(t)
	defineCatalog(t, eng, ctx, "invoices:read", "invoices:write", "tickets:read")

	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "billing", Permissions: []string{"invoices:read", "invoices:write"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "support", Permissions: []string{"tickets:read"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.ApplyUserDelta(ctx, "u1", bastion.Delta{Add: []string{"billing", "support"}}); err != nil {
		t.Fatal(err)
	}

	// A user holding both roles gets the union of their resolved sets.
	perms, err := eng.EffectivePermissions(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	got := make([]string, len(perms))
	for i, p := range perms {
		got[i] = p.Name
	}
	if !equalStrings(got, []string{"invoices:read", "invoices:write", "tickets:read"}) {
		t.Fatalf("effective permissions = %v", got)
	}

	ok, err := eng.HasPermission(ctx, "u1", "tickets:read")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("permission from the second role should be held")
	}
}

func TestToggleCell_SingleAuditEntry(t *testing.T) {
	ctx := tenantCtx("t1")
	eng := newTestEngine(t)
	defineCatalog(t, eng, ctx, "docs:read")

	if _, err := eng.CreateRole(ctx, bastion.CreateRoleInput{Name: "viewer"}); err != nil {
		t.Fatal(err)
	}

	if _, err := eng.ToggleCell(ctx, "viewer", "docs:read", 0); err != nil {
		t.Fatal(err)
	}

	// A toggle is one user action: one matrix.toggle entry, no extra
	// role.grants entry from the underlying delta.
	_, toggles, err := eng.AuditEntries(ctx, &auditlog.QueryFilter{Action: auditlog.ActionMatrixToggle})
	if err != nil {
		t.Fatal(err)
	}
	if toggles != 1 {
		t.Fatalf("matrix toggle entries = %d, want 1", toggles)
	}
	_, grants, err := eng.AuditEntries(ctx, &auditlog.QueryFilter{Action: auditlog.ActionRoleGrants})
	if err != nil {
		t.Fatal(err)
	}
	if grants != 0 {
		t.Fatalf("role grants entries = %d, want 0", grants)
	}
}
