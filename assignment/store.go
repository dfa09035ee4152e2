package assignment

import (
	"context"

	"github.com/xraph/bastion/id"
)

// Store defines persistence operations for user-role assignments.
type Store interface {
	// CreateAssignment persists a new assignment. Fails with ErrDuplicate
	// if the (tenant, user, role) triple already exists.
	CreateAssignment(ctx context.Context, a *Assignment) error

	// GetAssignment retrieves an assignment by ID.
	GetAssignment(ctx context.Context, grantID id.GrantID) (*Assignment, error)

	// DeleteAssignment removes the assignment for the given triple.
	DeleteAssignment(ctx context.Context, tenantID, userID, roleName string) error

	// ListAssignments returns assignments matching the filter.
	ListAssignments(ctx context.Context, filter *ListFilter) ([]*Assignment, error)

	// CountAssignments returns the number of assignments matching the filter.
	CountAssignments(ctx context.Context, filter *ListFilter) (int64, error)

	// ListRolesForUser returns the names of all roles held by a user,
	// sorted alphabetically.
	ListRolesForUser(ctx context.Context, tenantID, userID string) ([]string, error)

	// CountUsersForRole returns the number of distinct users holding a role.
	CountUsersForRole(ctx context.Context, tenantID, roleName string) (int64, error)

	// DeleteAssignmentsByRole removes all assignments referencing a role.
	DeleteAssignmentsByRole(ctx context.Context, tenantID, roleName string) error

	// DeleteAssignmentsByUser removes all assignments for a user.
	DeleteAssignmentsByUser(ctx context.Context, tenantID, userID string) error

	// DeleteAssignmentsByTenant removes all assignments for a tenant.
	DeleteAssignmentsByTenant(ctx context.Context, tenantID string) error
}
