// Package permission defines the Permission Catalog entity and its store
// interface. Permissions are atomic "resource:action" capability identifiers,
// provisioned at catalog-definition time and effectively append-only.
package permission

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/xraph/bastion/id"
)

// ErrNotFound indicates the requested permission does not exist.
var ErrNotFound = errors.New("permission: not found")

// partRE is the permitted shape of each half of a permission name.
var partRE = regexp.MustCompile(`^[a-z0-9_-]+$`)

// ParseName splits a permission name of the form "resource:action" into its
// components, validating both halves.
func ParseName(name string) (resource, action string, err error) {
	res, act, ok := strings.Cut(name, ":")
	if !ok {
		return "", "", fmt.Errorf("permission: name %q is not of the form resource:action", name)
	}
	if !partRE.MatchString(res) || !partRE.MatchString(act) {
		return "", "", fmt.Errorf("permission: name %q contains invalid characters", name)
	}
	return res, act, nil
}

// Permission represents a specific action allowed on a resource.
type Permission struct {
	ID          id.PermissionID `json:"id" db:"id"`
	TenantID    string          `json:"tenant_id" db:"tenant_id"`
	Name        string          `json:"name" db:"name"`
	Resource    string          `json:"resource" db:"resource"`
	Action      string          `json:"action" db:"action"`
	Description string          `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// ListFilter contains filters for listing permissions.
type ListFilter struct {
	TenantID string `json:"tenant_id,omitempty"`
	Resource string `json:"resource,omitempty"`
	Action   string `json:"action,omitempty"`
	Search   string `json:"search,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}
