// Package assignment defines the Assignment entity (user→role binding).
package assignment

import (
	"errors"
	"time"

	"github.com/xraph/bastion/id"
)

// Store-level sentinel errors.
var (
	// ErrNotFound indicates the requested assignment does not exist.
	ErrNotFound = errors.New("assignment: not found")

	// ErrDuplicate indicates the (tenant, user, role) triple already exists.
	ErrDuplicate = errors.New("assignment: already exists")
)

// Assignment binds a role to a user within a tenant. The triple
// (TenantID, UserID, RoleName) is unique; a user holds zero or more roles
// and no primary-role concept exists.
type Assignment struct {
	ID        id.GrantID `json:"id" db:"id"`
	TenantID  string     `json:"tenant_id" db:"tenant_id"`
	UserID    string     `json:"user_id" db:"user_id"`
	RoleName  string     `json:"role_name" db:"role_name"`
	GrantedBy string     `json:"granted_by,omitempty" db:"granted_by"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// ListFilter contains filters for listing assignments.
type ListFilter struct {
	TenantID string `json:"tenant_id,omitempty"`
	UserID   string `json:"user_id,omitempty"`
	RoleName string `json:"role_name,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}
