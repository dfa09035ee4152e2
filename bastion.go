// Package bastion provides a tenant-scoped role-based access control core
// for Go.
//
// Bastion models roles as named, per-tenant bundles of permission grants
// with optional single-parent inheritance and a wildcard marker that grants
// the whole catalog. It computes effective permission sets for users, keeps
// a permission matrix projection in sync with the authorizing state, and
// guards every mutation with optimistic concurrency version tokens.
//
//	eng, err := bastion.NewEngine(
//	    bastion.WithStore(memStore),
//	)
//	ctx := bastion.WithTenant(context.Background(), "t1")
//	ok, err := eng.HasPermission(ctx, "u1", "users:read")
package bastion

import (
	"sort"

	"github.com/xraph/bastion/role"
)

// Wildcard is the sentinel grant entry meaning "all permissions in the
// catalog, including future ones". Re-exported from the role package.
const Wildcard = role.Wildcard

// Delta is an atomic add/remove mutation against a set of names.
// The resulting set is (old ∪ Add) \ Remove: a name present in both Add
// and Remove ends up removed. Applying the same delta twice yields the
// same result as applying it once.
type Delta struct {
	Add    []string `json:"add,omitempty"`
	Remove []string `json:"remove,omitempty"`
}

// Empty reports whether the delta carries no changes.
func (d Delta) Empty() bool {
	return len(d.Add) == 0 && len(d.Remove) == 0
}

// PermissionSet is a set of permission names.
type PermissionSet map[string]struct{}

// NewPermissionSet builds a set from the given names.
func NewPermissionSet(names ...string) PermissionSet {
	s := make(PermissionSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Has reports whether name is in the set.
func (s PermissionSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Union merges other into s and returns s.
func (s PermissionSet) Union(other PermissionSet) PermissionSet {
	for n := range other {
		s[n] = struct{}{}
	}
	return s
}

// Sorted returns the set's names in alphabetical order.
func (s PermissionSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// applyDelta returns (old ∪ add) \ remove as a fresh set. Remove wins when
// a name appears on both sides of the delta.
func applyDelta(old []string, d Delta) PermissionSet {
	out := NewPermissionSet(old...)
	for _, n := range d.Add {
		out[n] = struct{}{}
	}
	for _, n := range d.Remove {
		delete(out, n)
	}
	return out
}
