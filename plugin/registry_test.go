package plugin

import (
	"context"
	"log/slog"
	"testing"

	"github.com/xraph/bastion/id"
	"github.com/xraph/bastion/role"
)

// testPlugin implements Plugin + RoleCreated + RoleGrantsChanged.
type testPlugin struct {
	roleCreatedCalled   bool
	grantsChangedCalled bool
}

func (t *testPlugin) Name() string { return "test-plugin" }

func (t *testPlugin) OnRoleCreated(_ context.Context, _ *role.Role) error {
	t.roleCreatedCalled = true
	return nil
}

func (t *testPlugin) OnRoleGrantsChanged(_ context.Context, _ *role.Role) error {
	t.grantsChangedCalled = true
	return nil
}

// minimalPlugin only implements Plugin (no hooks).
type minimalPlugin struct{}

func (m *minimalPlugin) Name() string { return "minimal" }

func TestRegistryDispatch(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(slog.Default())

	tp := &testPlugin{}
	reg.Register(tp)
	reg.Register(&minimalPlugin{})

	if len(reg.Plugins()) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(reg.Plugins()))
	}

	// Should dispatch RoleCreated to testPlugin only.
	reg.EmitRoleCreated(ctx, &role.Role{ID: id.NewRoleID(), Name: "admin"})
	if !tp.roleCreatedCalled {
		t.Fatal("OnRoleCreated was not called")
	}

	// Should dispatch RoleGrantsChanged.
	reg.EmitRoleGrantsChanged(ctx, &role.Role{ID: id.NewRoleID(), Name: "admin"})
	if !tp.grantsChangedCalled {
		t.Fatal("OnRoleGrantsChanged was not called")
	}

	// Should not panic on hooks with no listeners.
	reg.EmitRoleDeleted(ctx, "t1", "admin")
	reg.EmitSeedApplied(ctx, "t1")
	reg.EmitShutdown(ctx)
}

func TestRegistrySetLogger(t *testing.T) {
	reg := NewRegistry(slog.Default())

	replacement := slog.New(slog.DiscardHandler)
	reg.SetLogger(replacement)
	if reg.logger != replacement {
		t.Fatal("SetLogger did not replace the logger")
	}

	// Nil must not clobber the current logger.
	reg.SetLogger(nil)
	if reg.logger != replacement {
		t.Fatal("SetLogger(nil) replaced the logger")
	}
}
