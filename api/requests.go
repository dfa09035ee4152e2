package api

// ──────────────────────────────────────────────────
// Role requests
// ──────────────────────────────────────────────────

// CreateRoleRequest is the body for creating a role.
type CreateRoleRequest struct {
	Name         string   `json:"name" description:"Role name (lowercase, unique per tenant)"`
	Description  string   `json:"description,omitempty" description:"Human-readable description"`
	System       bool     `json:"system,omitempty" description:"System role flag (immutable after creation)"`
	InheritsFrom *string  `json:"inherits_from,omitempty" description:"Parent role name for inheritance"`
	Permissions  []string `json:"permissions,omitempty" description:"Initial direct grant set"`
}

// UpdateRoleRequest is the body for updating a role. Omitted fields are
// left unchanged; clear_inheritance detaches the role from its parent.
type UpdateRoleRequest struct {
	Description      *string   `json:"description,omitempty" description:"Human-readable description"`
	InheritsFrom     *string   `json:"inherits_from,omitempty" description:"Parent role name"`
	ClearInheritance bool      `json:"clear_inheritance,omitempty" description:"Detach from parent role"`
	Permissions      *[]string `json:"permissions,omitempty" description:"Replacement direct grant set"`
	ExpectedVersion  int64     `json:"expected_version,omitempty" description:"Optimistic concurrency guard (0 skips the check)"`
}

// GetRoleRequest is the path parameter for role endpoints.
type GetRoleRequest struct {
	RoleName string `path:"roleName" description:"Role name"`
}

// DeleteRoleRequest holds the path parameter and version guard for deletion.
type DeleteRoleRequest struct {
	RoleName        string `path:"roleName" description:"Role name"`
	ExpectedVersion int64  `query:"expected_version" description:"Optimistic concurrency guard (0 skips the check)"`
}

// ListRolesRequest holds query parameters for listing roles.
type ListRolesRequest struct{}

// RoleGrantsDeltaRequest is the body for changing a role's direct grants.
type RoleGrantsDeltaRequest struct {
	Add             []string `json:"add,omitempty" description:"Permission names to grant"`
	Remove          []string `json:"remove,omitempty" description:"Permission names to revoke"`
	ExpectedVersion int64    `json:"expected_version,omitempty" description:"Optimistic concurrency guard (0 skips the check)"`
}

// ──────────────────────────────────────────────────
// Permission requests
// ──────────────────────────────────────────────────

// DefinePermissionRequest is the body for defining a catalog permission.
type DefinePermissionRequest struct {
	Name        string `json:"name" description:"Permission name (resource:action)"`
	Description string `json:"description,omitempty" description:"Human-readable description"`
}

// GetPermissionRequest is the path parameter for permission endpoints.
type GetPermissionRequest struct {
	PermissionName string `path:"permissionName" description:"Permission name"`
}

// ListPermissionsRequest holds query parameters.
type ListPermissionsRequest struct {
	Resource string `query:"resource" description:"Filter by resource"`
}

// ──────────────────────────────────────────────────
// User role requests
// ──────────────────────────────────────────────────

// GetUserRequest is the path parameter for user endpoints.
type GetUserRequest struct {
	UserID string `path:"userId" description:"User identifier"`
}

// UserRolesDeltaRequest is the body for changing a user's role set.
type UserRolesDeltaRequest struct {
	Add    []string `json:"add,omitempty" description:"Role names to assign"`
	Remove []string `json:"remove,omitempty" description:"Role names to revoke"`
}

// CheckRequest holds query parameters for a permission check.
type CheckRequest struct {
	UserID     string `query:"user_id" description:"User identifier"`
	Permission string `query:"permission" description:"Permission name to check"`
}

// ──────────────────────────────────────────────────
// Matrix requests
// ──────────────────────────────────────────────────

// ToggleCellRequest is the body for flipping one matrix cell.
type ToggleCellRequest struct {
	Role            string `json:"role" description:"Role name"`
	Permission      string `json:"permission" description:"Permission name"`
	ExpectedVersion int64  `json:"expected_version,omitempty" description:"Optimistic concurrency guard (0 skips the check)"`
}

// ──────────────────────────────────────────────────
// Audit requests
// ──────────────────────────────────────────────────

// ListAuditRequest holds query parameters for the audit log.
type ListAuditRequest struct {
	Action   string `query:"action" description:"Filter by action code"`
	RoleName string `query:"role" description:"Filter by role name"`
	UserID   string `query:"user_id" description:"Filter by user identifier"`
	After    string `query:"after" description:"Only entries at or after this time (RFC3339)"`
	Before   string `query:"before" description:"Only entries at or before this time (RFC3339)"`
	Limit    int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset   int    `query:"offset" description:"Results to skip"`
}
