package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/bastion/assignment"
	"github.com/xraph/bastion/auditlog"
	"github.com/xraph/bastion/id"
	"github.com/xraph/bastion/permission"
	"github.com/xraph/bastion/role"
	"github.com/xraph/bastion/store"
)

// Compile-time check that *Store implements store.Store.
var _ store.Store = (*Store)(nil)

func TestRoleCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	r := &role.Role{
		ID:          id.NewRoleID(),
		TenantID:    "t1",
		Name:        "admin",
		Permissions: []string{"users:read", "users:write"},
		Version:     1,
	}

	// Create
	if err := s.CreateRole(ctx, r); err != nil {
		t.Fatal(err)
	}

	// Get
	got, err := s.GetRole(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "admin" {
		t.Fatalf("expected admin, got %s", got.Name)
	}

	// GetByName
	got, err = s.GetRoleByName(ctx, "t1", "admin")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != r.ID {
		t.Fatal("name lookup mismatch")
	}
	if len(got.Permissions) != 2 {
		t.Fatalf("expected 2 permissions, got %d", len(got.Permissions))
	}

	// Update with matching version
	r.Description = "full access"
	r.Version = 2
	if err := s.UpdateRole(ctx, r, 1); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetRole(ctx, r.ID)
	if got.Description != "full access" || got.Version != 2 {
		t.Fatal("update failed")
	}

	// List
	list, _ := s.ListRoles(ctx, &role.ListFilter{TenantID: "t1"})
	if len(list) != 1 {
		t.Fatalf("expected 1 role, got %d", len(list))
	}

	// Count
	count, _ := s.CountRoles(ctx, &role.ListFilter{TenantID: "t1"})
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}

	// Delete
	if err := s.DeleteRole(ctx, r.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetRole(ctx, r.ID); !errors.Is(err, role.ErrNotFound) {
		t.Fatal("expected not found after delete")
	}
}

func TestUpdateRoleVersionMismatch(t *testing.T) {
	ctx := context.Background()
	s := New()

	r := &role.Role{ID: id.NewRoleID(), TenantID: "t1", Name: "editor", Version: 1}
	if err := s.CreateRole(ctx, r); err != nil {
		t.Fatal(err)
	}

	stale := *r
	stale.Version = 4
	err := s.UpdateRole(ctx, &stale, 3)
	if !errors.Is(err, role.ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}

	// Stored role is unchanged.
	got, _ := s.GetRole(ctx, r.ID)
	if got.Version != 1 {
		t.Fatalf("expected version 1, got %d", got.Version)
	}
}

func TestListRolesOrdering(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, name := range []string{"viewer", "admin", "member"} {
		_ = s.CreateRole(ctx, &role.Role{ID: id.NewRoleID(), TenantID: "t1", Name: name, Version: 1})
	}

	list, _ := s.ListRoles(ctx, &role.ListFilter{TenantID: "t1"})
	if len(list) != 3 {
		t.Fatalf("expected 3 roles, got %d", len(list))
	}
	for i, want := range []string{"admin", "member", "viewer"} {
		if list[i].Name != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, list[i].Name)
		}
	}
}

func TestListChildRoles(t *testing.T) {
	ctx := context.Background()
	s := New()

	parent := "viewer"
	_ = s.CreateRole(ctx, &role.Role{ID: id.NewRoleID(), TenantID: "t1", Name: "viewer", Version: 1})
	_ = s.CreateRole(ctx, &role.Role{ID: id.NewRoleID(), TenantID: "t1", Name: "member", InheritsFrom: &parent, Version: 1})
	_ = s.CreateRole(ctx, &role.Role{ID: id.NewRoleID(), TenantID: "t2", Name: "member", InheritsFrom: &parent, Version: 1})

	children, _ := s.ListChildRoles(ctx, "t1", "viewer")
	if len(children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(children))
	}
	if children[0].Name != "member" {
		t.Fatalf("expected member, got %s", children[0].Name)
	}
}

func TestCountRolesGranting(t *testing.T) {
	ctx := context.Background()
	s := New()

	_ = s.CreateRole(ctx, &role.Role{ID: id.NewRoleID(), TenantID: "t1", Name: "a", Permissions: []string{"docs:read"}, Version: 1})
	_ = s.CreateRole(ctx, &role.Role{ID: id.NewRoleID(), TenantID: "t1", Name: "b", Permissions: []string{"docs:read", "docs:write"}, Version: 1})
	_ = s.CreateRole(ctx, &role.Role{ID: id.NewRoleID(), TenantID: "t1", Name: "c", Permissions: []string{"docs:write"}, Version: 1})

	count, _ := s.CountRolesGranting(ctx, "t1", "docs:read")
	if count != 2 {
		t.Fatalf("expected 2, got %d", count)
	}
}

func TestPermissionCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	p := &permission.Permission{
		ID:       id.NewPermissionID(),
		TenantID: "t1",
		Name:     "document:read",
		Resource: "document",
		Action:   "read",
	}

	if err := s.CreatePermission(ctx, p); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetPermission(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "document:read" {
		t.Fatal("mismatch")
	}

	got, err = s.GetPermissionByName(ctx, "t1", "document:read")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != p.ID {
		t.Fatal("name lookup mismatch")
	}

	if err := s.DeletePermission(ctx, "t1", "document:read"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetPermission(ctx, p.ID); !errors.Is(err, permission.ErrNotFound) {
		t.Fatal("expected not found")
	}
}

func TestListPermissionsOrdering(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, name := range []string{"users:write", "docs:read", "users:read", "docs:write"} {
		res, act, _ := permission.ParseName(name)
		_ = s.CreatePermission(ctx, &permission.Permission{
			ID: id.NewPermissionID(), TenantID: "t1", Name: name, Resource: res, Action: act,
		})
	}

	list, _ := s.ListPermissions(ctx, &permission.ListFilter{TenantID: "t1"})
	want := []string{"docs:read", "docs:write", "users:read", "users:write"}
	if len(list) != len(want) {
		t.Fatalf("expected %d permissions, got %d", len(want), len(list))
	}
	for i := range want {
		if list[i].Name != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], list[i].Name)
		}
	}
}

func TestAssignmentCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	a := &assignment.Assignment{
		ID:       id.NewGrantID(),
		TenantID: "t1",
		UserID:   "u1",
		RoleName: "admin",
	}

	if err := s.CreateAssignment(ctx, a); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetAssignment(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.UserID != "u1" {
		t.Fatal("mismatch")
	}

	// Duplicate triple rejected.
	dup := &assignment.Assignment{ID: id.NewGrantID(), TenantID: "t1", UserID: "u1", RoleName: "admin"}
	if err := s.CreateAssignment(ctx, dup); !errors.Is(err, assignment.ErrDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	roles, _ := s.ListRolesForUser(ctx, "t1", "u1")
	if len(roles) != 1 || roles[0] != "admin" {
		t.Fatalf("expected [admin], got %v", roles)
	}

	count, _ := s.CountUsersForRole(ctx, "t1", "admin")
	if count != 1 {
		t.Fatalf("expected 1 user, got %d", count)
	}

	if err := s.DeleteAssignment(ctx, "t1", "u1", "admin"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteAssignment(ctx, "t1", "u1", "admin"); !errors.Is(err, assignment.ErrNotFound) {
		t.Fatal("expected not found on second delete")
	}
}

func TestListRolesForUserSorted(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, name := range []string{"viewer", "admin", "member"} {
		_ = s.CreateAssignment(ctx, &assignment.Assignment{
			ID: id.NewGrantID(), TenantID: "t1", UserID: "u1", RoleName: name,
		})
	}

	roles, _ := s.ListRolesForUser(ctx, "t1", "u1")
	want := []string{"admin", "member", "viewer"}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], roles[i])
		}
	}
}

func TestAuditEntryCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	e := &auditlog.Entry{
		ID:        id.NewAuditEntryID(),
		TenantID:  "t1",
		Actor:     "u1",
		Action:    auditlog.ActionRoleCreated,
		RoleName:  "admin",
		CreatedAt: time.Now(),
	}

	if err := s.CreateAuditEntry(ctx, e); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetAuditEntry(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Action != auditlog.ActionRoleCreated {
		t.Fatal("mismatch")
	}

	entries, _ := s.ListAuditEntries(ctx, &auditlog.QueryFilter{TenantID: "t1"})
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	// Purge
	purged, _ := s.PurgeAuditEntries(ctx, time.Now().Add(time.Hour))
	if purged != 1 {
		t.Fatalf("expected 1 purged, got %d", purged)
	}
}

func TestDeleteByTenant(t *testing.T) {
	ctx := context.Background()
	s := New()

	_ = s.CreateRole(ctx, &role.Role{ID: id.NewRoleID(), TenantID: "t1", Name: "r1", Version: 1})
	_ = s.CreatePermission(ctx, &permission.Permission{ID: id.NewPermissionID(), TenantID: "t1", Name: "a:b", Resource: "a", Action: "b"})
	_ = s.CreateAssignment(ctx, &assignment.Assignment{ID: id.NewGrantID(), TenantID: "t1", UserID: "u1", RoleName: "r1"})
	_ = s.CreateRole(ctx, &role.Role{ID: id.NewRoleID(), TenantID: "t2", Name: "r2", Version: 1})

	_ = s.DeleteRolesByTenant(ctx, "t1")
	_ = s.DeletePermissionsByTenant(ctx, "t1")
	_ = s.DeleteAssignmentsByTenant(ctx, "t1")

	roles, _ := s.ListRoles(ctx, &role.ListFilter{TenantID: "t1"})
	if len(roles) != 0 {
		t.Fatal("t1 roles not deleted")
	}
	roles, _ = s.ListRoles(ctx, &role.ListFilter{TenantID: "t2"})
	if len(roles) != 1 {
		t.Fatal("t2 roles should remain")
	}
}

func TestMigratePingClose(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}
