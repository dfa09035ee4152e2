// Package postgres provides a PostgreSQL implementation of the Bastion
// composite store using grove ORM with Go-based migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/bastion/assignment"
	"github.com/xraph/bastion/auditlog"
	"github.com/xraph/bastion/id"
	"github.com/xraph/bastion/permission"
	"github.com/xraph/bastion/role"
	"github.com/xraph/bastion/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a PostgreSQL implementation of the composite Bastion store.
type Store struct {
	db   *grove.DB
	pgdb *pgdriver.PgDB
}

// New creates a new PostgreSQL store.
func New(db *grove.DB) *Store {
	return &Store{
		db:   db,
		pgdb: pgdriver.Unwrap(db),
	}
}

// Migrate runs programmatic migrations via the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pgdb)
	if err != nil {
		return fmt.Errorf("bastion: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("bastion: migration failed: %w", err)
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ──────────────────────────────────────────────────
// Role operations
// ──────────────────────────────────────────────────

func (s *Store) CreateRole(ctx context.Context, r *role.Role) error {
	tx, err := s.pgdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("bastion: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	m := roleToModel(r)
	if _, err := tx.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("bastion: create role: %w", err)
	}
	if grants := grantModels(r.ID.String(), r.Permissions); len(grants) > 0 {
		if _, err := tx.NewInsert(&grants).Exec(ctx); err != nil {
			return fmt.Errorf("bastion: insert role grants: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("bastion: commit tx: %w", err)
	}
	return nil
}

func (s *Store) GetRole(ctx context.Context, roleID id.RoleID) (*role.Role, error) {
	m := new(roleModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", roleID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("role %s: %w", roleID, role.ErrNotFound)
		}
		return nil, fmt.Errorf("bastion: get role: %w", err)
	}
	r := roleFromModel(m)
	if r.Permissions, err = s.loadGrants(ctx, m.ID); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) GetRoleByName(ctx context.Context, tenantID, name string) (*role.Role, error) {
	m := new(roleModel)
	err := s.pgdb.NewSelect(m).
		Where("tenant_id = ?", tenantID).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("role %q: %w", name, role.ErrNotFound)
		}
		return nil, fmt.Errorf("bastion: get role by name: %w", err)
	}
	r := roleFromModel(m)
	if r.Permissions, err = s.loadGrants(ctx, m.ID); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) UpdateRole(ctx context.Context, r *role.Role, expectedVersion int64) error {
	tx, err := s.pgdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("bastion: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	m := roleToModel(r)
	res, err := tx.NewUpdate(m).
		WherePK().
		Where("version = ?", expectedVersion).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("bastion: update role: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("bastion: update role rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("role %s expected version %d: %w", r.Name, expectedVersion, role.ErrVersionMismatch)
	}

	// Replace the grant set.
	if _, err := tx.NewDelete((*roleGrantModel)(nil)).
		Where("role_id = ?", r.ID.String()).
		Exec(ctx); err != nil {
		return fmt.Errorf("bastion: clear role grants: %w", err)
	}
	if grants := grantModels(r.ID.String(), r.Permissions); len(grants) > 0 {
		if _, err := tx.NewInsert(&grants).Exec(ctx); err != nil {
			return fmt.Errorf("bastion: insert role grants: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("bastion: commit tx: %w", err)
	}
	return nil
}

func (s *Store) DeleteRole(ctx context.Context, roleID id.RoleID) error {
	_, err := s.pgdb.NewDelete((*roleModel)(nil)).
		Where("id = ?", roleID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("bastion: delete role: %w", err)
	}
	return nil
}

func (s *Store) ListRoles(ctx context.Context, filter *role.ListFilter) ([]*role.Role, error) {
	var models []roleModel
	q := s.pgdb.NewSelect(&models).OrderExpr("name ASC")
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.System != nil {
			q = q.Where("system = ?", *filter.System)
		}
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("bastion: list roles: %w", err)
	}
	result := make([]*role.Role, len(models))
	for i := range models {
		r := roleFromModel(&models[i])
		perms, err := s.loadGrants(ctx, models[i].ID)
		if err != nil {
			return nil, err
		}
		r.Permissions = perms
		result[i] = r
	}
	return result, nil
}

func (s *Store) CountRoles(ctx context.Context, filter *role.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*roleModel)(nil))
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.System != nil {
			q = q.Where("system = ?", *filter.System)
		}
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("bastion: count roles: %w", err)
	}
	return count, nil
}

func (s *Store) ListChildRoles(ctx context.Context, tenantID, name string) ([]*role.Role, error) {
	var models []roleModel
	err := s.pgdb.NewSelect(&models).
		Where("tenant_id = ?", tenantID).
		Where("inherits_from = ?", name).
		OrderExpr("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("bastion: list child roles: %w", err)
	}
	result := make([]*role.Role, len(models))
	for i := range models {
		result[i] = roleFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountRolesGranting(ctx context.Context, tenantID, permName string) (int64, error) {
	count, err := s.pgdb.NewSelect((*roleGrantModel)(nil)).
		Join("JOIN", "bastion_roles AS r", "r.id = bastion_role_grants.role_id").
		Where("r.tenant_id = ?", tenantID).
		Where("bastion_role_grants.permission = ?", permName).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("bastion: count roles granting: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteRolesByTenant(ctx context.Context, tenantID string) error {
	_, err := s.pgdb.NewDelete((*roleModel)(nil)).
		Where("tenant_id = ?", tenantID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("bastion: delete roles by tenant: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Permission operations
// ──────────────────────────────────────────────────

func (s *Store) CreatePermission(ctx context.Context, p *permission.Permission) error {
	m := permissionToModel(p)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("bastion: create permission: %w", err)
	}
	return nil
}

func (s *Store) GetPermission(ctx context.Context, permID id.PermissionID) (*permission.Permission, error) {
	m := new(permissionModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", permID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("permission %s: %w", permID, permission.ErrNotFound)
		}
		return nil, fmt.Errorf("bastion: get permission: %w", err)
	}
	return permissionFromModel(m), nil
}

func (s *Store) GetPermissionByName(ctx context.Context, tenantID, name string) (*permission.Permission, error) {
	m := new(permissionModel)
	err := s.pgdb.NewSelect(m).
		Where("tenant_id = ?", tenantID).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("permission %q: %w", name, permission.ErrNotFound)
		}
		return nil, fmt.Errorf("bastion: get permission by name: %w", err)
	}
	return permissionFromModel(m), nil
}

func (s *Store) DeletePermission(ctx context.Context, tenantID, name string) error {
	res, err := s.pgdb.NewDelete((*permissionModel)(nil)).
		Where("tenant_id = ?", tenantID).
		Where("name = ?", name).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("bastion: delete permission: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("bastion: delete permission rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("permission %q: %w", name, permission.ErrNotFound)
	}
	return nil
}

func (s *Store) ListPermissions(ctx context.Context, filter *permission.ListFilter) ([]*permission.Permission, error) {
	var models []permissionModel
	q := s.pgdb.NewSelect(&models).OrderExpr("resource ASC, action ASC")
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.Resource != "" {
			q = q.Where("resource = ?", filter.Resource)
		}
		if filter.Action != "" {
			q = q.Where("action = ?", filter.Action)
		}
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("bastion: list permissions: %w", err)
	}
	result := make([]*permission.Permission, len(models))
	for i := range models {
		result[i] = permissionFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountPermissions(ctx context.Context, filter *permission.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*permissionModel)(nil))
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.Resource != "" {
			q = q.Where("resource = ?", filter.Resource)
		}
		if filter.Action != "" {
			q = q.Where("action = ?", filter.Action)
		}
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("bastion: count permissions: %w", err)
	}
	return count, nil
}

func (s *Store) DeletePermissionsByTenant(ctx context.Context, tenantID string) error {
	_, err := s.pgdb.NewDelete((*permissionModel)(nil)).
		Where("tenant_id = ?", tenantID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("bastion: delete permissions by tenant: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Assignment operations
// ──────────────────────────────────────────────────

func (s *Store) CreateAssignment(ctx context.Context, a *assignment.Assignment) error {
	m := assignmentToModel(a)
	res, err := s.pgdb.NewInsert(m).
		OnConflict("(tenant_id, user_id, role_name) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("bastion: create assignment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("bastion: create assignment rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %s role %s: %w", a.UserID, a.RoleName, assignment.ErrDuplicate)
	}
	return nil
}

func (s *Store) GetAssignment(ctx context.Context, grantID id.GrantID) (*assignment.Assignment, error) {
	m := new(assignmentModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", grantID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("assignment %s: %w", grantID, assignment.ErrNotFound)
		}
		return nil, fmt.Errorf("bastion: get assignment: %w", err)
	}
	return assignmentFromModel(m), nil
}

func (s *Store) DeleteAssignment(ctx context.Context, tenantID, userID, roleName string) error {
	res, err := s.pgdb.NewDelete((*assignmentModel)(nil)).
		Where("tenant_id = ?", tenantID).
		Where("user_id = ?", userID).
		Where("role_name = ?", roleName).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("bastion: delete assignment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("bastion: delete assignment rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %s role %s: %w", userID, roleName, assignment.ErrNotFound)
	}
	return nil
}

func (s *Store) ListAssignments(ctx context.Context, filter *assignment.ListFilter) ([]*assignment.Assignment, error) {
	var models []assignmentModel
	q := s.pgdb.NewSelect(&models).OrderExpr("user_id ASC, role_name ASC")
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.UserID != "" {
			q = q.Where("user_id = ?", filter.UserID)
		}
		if filter.RoleName != "" {
			q = q.Where("role_name = ?", filter.RoleName)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("bastion: list assignments: %w", err)
	}
	result := make([]*assignment.Assignment, len(models))
	for i := range models {
		result[i] = assignmentFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountAssignments(ctx context.Context, filter *assignment.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*assignmentModel)(nil))
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.UserID != "" {
			q = q.Where("user_id = ?", filter.UserID)
		}
		if filter.RoleName != "" {
			q = q.Where("role_name = ?", filter.RoleName)
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("bastion: count assignments: %w", err)
	}
	return count, nil
}

func (s *Store) ListRolesForUser(ctx context.Context, tenantID, userID string) ([]string, error) {
	var models []assignmentModel
	err := s.pgdb.NewSelect(&models).
		Where("tenant_id = ?", tenantID).
		Where("user_id = ?", userID).
		OrderExpr("role_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("bastion: list roles for user: %w", err)
	}
	result := make([]string, len(models))
	for i := range models {
		result[i] = models[i].RoleName
	}
	return result, nil
}

func (s *Store) CountUsersForRole(ctx context.Context, tenantID, roleName string) (int64, error) {
	// The (tenant_id, user_id, role_name) triple is unique, so row count
	// equals distinct user count.
	count, err := s.pgdb.NewSelect((*assignmentModel)(nil)).
		Where("tenant_id = ?", tenantID).
		Where("role_name = ?", roleName).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("bastion: count users for role: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteAssignmentsByRole(ctx context.Context, tenantID, roleName string) error {
	_, err := s.pgdb.NewDelete((*assignmentModel)(nil)).
		Where("tenant_id = ?", tenantID).
		Where("role_name = ?", roleName).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("bastion: delete assignments by role: %w", err)
	}
	return nil
}

func (s *Store) DeleteAssignmentsByUser(ctx context.Context, tenantID, userID string) error {
	_, err := s.pgdb.NewDelete((*assignmentModel)(nil)).
		Where("tenant_id = ?", tenantID).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("bastion: delete assignments by user: %w", err)
	}
	return nil
}

func (s *Store) DeleteAssignmentsByTenant(ctx context.Context, tenantID string) error {
	_, err := s.pgdb.NewDelete((*assignmentModel)(nil)).
		Where("tenant_id = ?", tenantID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("bastion: delete assignments by tenant: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Audit log operations
// ──────────────────────────────────────────────────

func (s *Store) CreateAuditEntry(ctx context.Context, e *auditlog.Entry) error {
	m := auditEntryToModel(e)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("bastion: create audit entry: %w", err)
	}
	return nil
}

func (s *Store) GetAuditEntry(ctx context.Context, entryID id.AuditEntryID) (*auditlog.Entry, error) {
	m := new(auditEntryModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", entryID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("audit entry %s: %w", entryID, auditlog.ErrNotFound)
		}
		return nil, fmt.Errorf("bastion: get audit entry: %w", err)
	}
	return auditEntryFromModel(m), nil
}

func (s *Store) ListAuditEntries(ctx context.Context, filter *auditlog.QueryFilter) ([]*auditlog.Entry, error) {
	var models []auditEntryModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at DESC")
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.Action != "" {
			q = q.Where("action = ?", filter.Action)
		}
		if filter.RoleName != "" {
			q = q.Where("role_name = ?", filter.RoleName)
		}
		if filter.UserID != "" {
			q = q.Where("user_id = ?", filter.UserID)
		}
		if filter.After != nil {
			q = q.Where("created_at >= ?", *filter.After)
		}
		if filter.Before != nil {
			q = q.Where("created_at <= ?", *filter.Before)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("bastion: list audit entries: %w", err)
	}
	result := make([]*auditlog.Entry, len(models))
	for i := range models {
		result[i] = auditEntryFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountAuditEntries(ctx context.Context, filter *auditlog.QueryFilter) (int64, error) {
	q := s.pgdb.NewSelect((*auditEntryModel)(nil))
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.Action != "" {
			q = q.Where("action = ?", filter.Action)
		}
		if filter.RoleName != "" {
			q = q.Where("role_name = ?", filter.RoleName)
		}
		if filter.UserID != "" {
			q = q.Where("user_id = ?", filter.UserID)
		}
		if filter.After != nil {
			q = q.Where("created_at >= ?", *filter.After)
		}
		if filter.Before != nil {
			q = q.Where("created_at <= ?", *filter.Before)
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("bastion: count audit entries: %w", err)
	}
	return count, nil
}

func (s *Store) PurgeAuditEntries(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.pgdb.NewDelete((*auditEntryModel)(nil)).
		Where("created_at < ?", before).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("bastion: purge audit entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("bastion: purge audit entries rows: %w", err)
	}
	return n, nil
}

func (s *Store) DeleteAuditEntriesByTenant(ctx context.Context, tenantID string) error {
	_, err := s.pgdb.NewDelete((*auditEntryModel)(nil)).
		Where("tenant_id = ?", tenantID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("bastion: delete audit entries by tenant: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func grantModels(roleID string, perms []string) []roleGrantModel {
	models := make([]roleGrantModel, len(perms))
	for i, p := range perms {
		models[i] = roleGrantModel{RoleID: roleID, Permission: p}
	}
	return models
}

func (s *Store) loadGrants(ctx context.Context, roleID string) ([]string, error) {
	var models []roleGrantModel
	err := s.pgdb.NewSelect(&models).
		Where("role_id = ?", roleID).
		OrderExpr("permission ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("bastion: load role grants: %w", err)
	}
	result := make([]string, len(models))
	for i := range models {
		result[i] = models[i].Permission
	}
	return result, nil
}
