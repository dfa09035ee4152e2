package bastion

import (
	"context"
	"fmt"

	"github.com/xraph/bastion/auditlog"
	"github.com/xraph/bastion/permission"
)

// MatrixCell is a single role × permission intersection.
type MatrixCell struct {
	// Granted reports whether the role's effective set contains the permission.
	Granted bool `json:"granted"`
	// Direct reports whether the role grants the permission itself rather
	// than through inheritance or wildcard. Only direct cells can be toggled
	// off.
	Direct bool `json:"direct"`
}

// MatrixRow is one role's cells, keyed by permission name.
type MatrixRow struct {
	Role     string                `json:"role"`
	System   bool                  `json:"system"`
	Wildcard bool                  `json:"wildcard"`
	Version  int64                 `json:"version"`
	Cells    map[string]MatrixCell `json:"cells"`
}

// Matrix is the full role × permission grid for a tenant. Rows are ordered
// system roles first then alphabetical; columns are the catalog ordered by
// resource then action.
type Matrix struct {
	Permissions []*permission.Permission `json:"permissions"`
	Rows        []*MatrixRow             `json:"rows"`
}

// Matrix computes the current role × permission projection. Every cell
// reflects the role's resolved effective set, so inherited and wildcard
// grants show as granted but not direct.
func (e *Engine) Matrix(ctx context.Context) (*Matrix, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	perms, err := e.store.ListPermissions(ctx, &permission.ListFilter{TenantID: tenantID})
	if err != nil {
		return nil, fmt.Errorf("bastion: matrix: %w", err)
	}
	roles, err := e.ListRoles(ctx)
	if err != nil {
		return nil, err
	}

	m := &Matrix{
		Permissions: perms,
		Rows:        make([]*MatrixRow, 0, len(roles)),
	}
	for _, r := range roles {
		effective, err := e.resolver.Resolve(ctx, e.store, tenantID, r.Name)
		if err != nil {
			return nil, err
		}
		row := &MatrixRow{
			Role:     r.Name,
			System:   r.System,
			Wildcard: r.HasWildcard(),
			Version:  r.Version,
			Cells:    make(map[string]MatrixCell, len(perms)),
		}
		for _, p := range perms {
			row.Cells[p.Name] = MatrixCell{
				Granted: effective.Has(p.Name),
				Direct:  r.HasDirect(p.Name),
			}
		}
		m.Rows = append(m.Rows, row)
	}
	return m, nil
}

// ToggleCell flips a single role × permission cell: granted becomes revoked
// and vice versa, against the role's DIRECT grant set. Wildcard-holding and
// system roles are immutable through the matrix.
func (e *Engine) ToggleCell(ctx context.Context, roleName, permName string, expectedVersion int64) (*Matrix, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	r, err := e.getRole(ctx, tenantID, roleName)
	if err != nil {
		return nil, err
	}
	if r.HasWildcard() {
		return nil, fmt.Errorf("%w: %s", ErrWildcardRoleImmutable, roleName)
	}
	if r.System {
		return nil, fmt.Errorf("%w: %s", ErrSystemRoleImmutable, roleName)
	}

	d := Delta{Add: []string{permName}}
	if r.HasDirect(permName) {
		d = Delta{Remove: []string{permName}}
	}
	if _, err := e.applyRoleDelta(ctx, tenantID, roleName, d, expectedVersion); err != nil {
		return nil, err
	}

	e.audit(ctx, tenantID, auditlog.ActionMatrixToggle, roleName, "", permName)
	return e.Matrix(ctx)
}
