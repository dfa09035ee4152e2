// Package auditlog defines the mutation audit log Entry entity. Every role,
// grant, and catalog mutation the engine applies is recorded as one entry.
package auditlog

import (
	"errors"
	"time"

	"github.com/xraph/bastion/id"
)

// ErrNotFound indicates the requested audit entry does not exist.
var ErrNotFound = errors.New("auditlog: not found")

// Audit action codes.
const (
	ActionRoleCreated    = "role.created"
	ActionRoleUpdated    = "role.updated"
	ActionRoleDeleted    = "role.deleted"
	ActionRoleGrants     = "role.grants"
	ActionUserGrants     = "user.grants"
	ActionMatrixToggle   = "matrix.toggle"
	ActionPermDefined    = "permission.defined"
	ActionPermRemoved    = "permission.removed"
	ActionSeedApplied    = "seed.applied"
)

// Entry is a single mutation audit record.
type Entry struct {
	ID        id.AuditEntryID `json:"id" db:"id"`
	TenantID  string          `json:"tenant_id" db:"tenant_id"`
	Actor     string          `json:"actor,omitempty" db:"actor"`
	Action    string          `json:"action" db:"action"`
	RoleName  string          `json:"role_name,omitempty" db:"role_name"`
	UserID    string          `json:"user_id,omitempty" db:"user_id"`
	Detail    string          `json:"detail,omitempty" db:"detail"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// QueryFilter contains filters for querying audit entries.
type QueryFilter struct {
	TenantID string     `json:"tenant_id,omitempty"`
	Action   string     `json:"action,omitempty"`
	RoleName string     `json:"role_name,omitempty"`
	UserID   string     `json:"user_id,omitempty"`
	After    *time.Time `json:"after,omitempty"`
	Before   *time.Time `json:"before,omitempty"`
	Limit    int        `json:"limit,omitempty"`
	Offset   int        `json:"offset,omitempty"`
}
