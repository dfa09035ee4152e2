package api

import (
	"github.com/xraph/bastion/auditlog"
)

// CheckResponse is the response for a permission check.
type CheckResponse struct {
	UserID     string `json:"user_id" description:"User identifier"`
	Permission string `json:"permission" description:"Checked permission name"`
	Allowed    bool   `json:"allowed" description:"Whether the user holds the permission"`
}

// UserRolesResponse carries a user's role names.
type UserRolesResponse struct {
	UserID string   `json:"user_id" description:"User identifier"`
	Roles  []string `json:"roles" description:"Role names, sorted alphabetically"`
}

// RoleGrantsResponse carries a role's direct and effective grant sets.
type RoleGrantsResponse struct {
	Role      string   `json:"role" description:"Role name"`
	Version   int64    `json:"version" description:"Role version"`
	Direct    []string `json:"direct" description:"Direct grant set, sorted"`
	Effective []string `json:"effective" description:"Resolved set including inherited grants, sorted"`
}

// AuditListResponse wraps audit entries with pagination metadata.
type AuditListResponse struct {
	Items  []*auditlog.Entry `json:"items" description:"Audit entries, newest first"`
	Total  int64             `json:"total" description:"Total matching entries"`
	Limit  int               `json:"limit" description:"Page size"`
	Offset int               `json:"offset" description:"Page offset"`
}
