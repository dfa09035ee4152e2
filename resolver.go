package bastion

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/bastion/permission"
	"github.com/xraph/bastion/role"
	"github.com/xraph/bastion/store"
)

// Resolver computes a role's effective permission set by walking its
// inheritance chain.
type Resolver interface {
	Resolve(ctx context.Context, st store.Store, tenantID, roleName string) (PermissionSet, error)
}

// DefaultResolver returns a chain resolver with the given max depth.
func DefaultResolver(maxDepth int) Resolver {
	if maxDepth <= 0 {
		maxDepth = 10
	}
	return &chainResolver{maxDepth: maxDepth}
}

type chainResolver struct {
	maxDepth int
}

// Resolve unions direct grants along the parent chain. A wildcard grant
// anywhere on the chain short-circuits to the full current catalog, so roles
// carrying "*" pick up permissions defined after the role was created.
// The visited guard fails with ErrCyclicInheritance; it should be
// unreachable when the store enforces acyclicity on write.
func (r *chainResolver) Resolve(ctx context.Context, st store.Store, tenantID, roleName string) (PermissionSet, error) {
	visited := make(map[string]struct{})
	result := make(PermissionSet)
	current := roleName

	for depth := 0; current != ""; depth++ {
		if depth > r.maxDepth {
			return nil, fmt.Errorf("resolve %s: %w", roleName, ErrInheritanceDepthExceeded)
		}
		if _, seen := visited[current]; seen {
			return nil, fmt.Errorf("resolve %s: %w", roleName, ErrCyclicInheritance)
		}
		visited[current] = struct{}{}

		rl, err := st.GetRoleByName(ctx, tenantID, current)
		if err != nil {
			if errors.Is(err, role.ErrNotFound) {
				if current == roleName {
					return nil, fmt.Errorf("resolve %s: %w", roleName, ErrRoleNotFound)
				}
				return nil, fmt.Errorf("resolve %s: parent %s: %w", roleName, current, ErrUnknownParentRole)
			}
			return nil, fmt.Errorf("resolve %s: %w", roleName, err)
		}

		if rl.HasWildcard() {
			return allPermissions(ctx, st, tenantID)
		}
		for _, p := range rl.Permissions {
			result[p] = struct{}{}
		}

		if rl.InheritsFrom == nil {
			break
		}
		current = *rl.InheritsFrom
	}

	return result, nil
}

// allPermissions returns the tenant's entire catalog as a set.
func allPermissions(ctx context.Context, st store.Store, tenantID string) (PermissionSet, error) {
	perms, err := st.ListPermissions(ctx, &permission.ListFilter{TenantID: tenantID})
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	all := make(PermissionSet, len(perms))
	for _, p := range perms {
		all[p.Name] = struct{}{}
	}
	return all, nil
}

// wouldCycle reports whether setting roleName's parent to newParent would
// make roleName transitively inherit from itself. It walks the existing
// parent links starting at newParent; reaching roleName means a cycle.
func wouldCycle(ctx context.Context, st store.Store, tenantID, roleName, newParent string, maxDepth int) (bool, error) {
	current := newParent
	for depth := 0; current != ""; depth++ {
		if current == roleName {
			return true, nil
		}
		if depth > maxDepth {
			// A chain longer than maxDepth is unusable by the resolver
			// anyway; treat it as a cycle to reject the write.
			return true, nil
		}
		rl, err := st.GetRoleByName(ctx, tenantID, current)
		if err != nil {
			if errors.Is(err, role.ErrNotFound) {
				return false, fmt.Errorf("parent %s: %w", current, ErrUnknownParentRole)
			}
			return false, err
		}
		if rl.InheritsFrom == nil {
			return false, nil
		}
		current = *rl.InheritsFrom
	}
	return false, nil
}
