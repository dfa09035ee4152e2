// Package role defines the Role entity and its store interface for RBAC.
package role

import (
	"errors"
	"regexp"
	"time"

	"github.com/xraph/bastion/id"
)

// Wildcard is the sentinel permission entry granting every permission in the
// tenant's catalog, including permissions defined after the role was created.
const Wildcard = "*"

// Store-level sentinel errors. The engine translates these into its public
// error vocabulary.
var (
	// ErrNotFound indicates the requested role does not exist.
	ErrNotFound = errors.New("role: not found")

	// ErrVersionMismatch indicates an optimistic-concurrency precondition
	// failed: the stored version differs from the caller's expected version.
	ErrVersionMismatch = errors.New("role: version mismatch")
)

// nameRE is the permitted role name shape: lowercase, digits, underscore,
// hyphen. Names are unique per tenant and immutable once created.
var nameRE = regexp.MustCompile(`^[a-z0-9_-]+$`)

// ValidName reports whether name is a well-formed role name.
func ValidName(name string) bool {
	return nameRE.MatchString(name)
}

// Role is a named, tenant-scoped bundle of permissions that can be assigned
// to users. A role may inherit another role's grants through InheritsFrom.
type Role struct {
	ID           id.RoleID `json:"id" db:"id"`
	TenantID     string    `json:"tenant_id" db:"tenant_id"`
	Name         string    `json:"name" db:"name"`
	Description  string    `json:"description,omitempty" db:"description"`
	System       bool      `json:"system" db:"system"`
	InheritsFrom *string   `json:"inherits_from,omitempty" db:"inherits_from"`
	Permissions  []string  `json:"permissions" db:"-"`
	Version      int64     `json:"version" db:"version"`
	UsersCount   int64     `json:"users_count" db:"-"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// HasWildcard reports whether the role's direct grant set carries the
// wildcard marker. A wildcard role grants the entire catalog; the other
// entries in its set are redundant.
func (r *Role) HasWildcard() bool {
	for _, p := range r.Permissions {
		if p == Wildcard {
			return true
		}
	}
	return false
}

// HasDirect reports whether name is in the role's direct grant set.
// The wildcard marker does not count as a direct grant of name.
func (r *Role) HasDirect(name string) bool {
	for _, p := range r.Permissions {
		if p == name {
			return true
		}
	}
	return false
}

// ListFilter contains filters for listing roles.
type ListFilter struct {
	TenantID string `json:"tenant_id,omitempty"`
	System   *bool  `json:"system,omitempty"`
	Search   string `json:"search,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}
