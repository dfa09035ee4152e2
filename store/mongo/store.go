package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/bastion/assignment"
	"github.com/xraph/bastion/auditlog"
	"github.com/xraph/bastion/id"
	"github.com/xraph/bastion/permission"
	"github.com/xraph/bastion/role"
	"github.com/xraph/bastion/store"
)

// Collection name constants.
const (
	colRoles       = "bastion_roles"
	colPermissions = "bastion_permissions"
	colAssignments = "bastion_assignments"
	colAuditLog    = "bastion_audit_log"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a MongoDB implementation of the composite Bastion store. Unlike
// the SQL backends, role grants live as an embedded array on the role
// document rather than in a junction table.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// Migrate creates indexes for all bastion collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()
	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("bastion/mongo: migrate %s indexes: %w", col, err)
		}
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

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all bastion collections.
func migrationIndexes() map[string][]mongod.IndexModel {
	return map[string][]mongod.IndexModel{
		colRoles: {
			{
				Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "inherits_from", Value: 1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "permissions", Value: 1}}},
		},
		colPermissions: {
			{
				Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "resource", Value: 1}, {Key: "action", Value: 1}}},
		},
		colAssignments: {
			{
				Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "role_name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "role_name", Value: 1}}},
		},
		colAuditLog: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "action", Value: 1}}},
		},
	}
}

// ──────────────────────────────────────────────────
// Role operations
// ──────────────────────────────────────────────────

func (s *Store) CreateRole(ctx context.Context, r *role.Role) error {
	t := now()
	r.CreatedAt = t
	r.UpdatedAt = t
	m := roleToModel(r)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("bastion: create role: %w", err)
	}
	return nil
}

func (s *Store) GetRole(ctx context.Context, roleID id.RoleID) (*role.Role, error) {
	var m roleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": roleID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("role %s: %w", roleID, role.ErrNotFound)
		}
		return nil, fmt.Errorf("bastion: get role: %w", err)
	}
	return roleFromModel(&m), nil
}

func (s *Store) GetRoleByName(ctx context.Context, tenantID, name string) (*role.Role, error) {
	var m roleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"tenant_id": tenantID, "name": name}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("role %q: %w", name, role.ErrNotFound)
		}
		return nil, fmt.Errorf("bastion: get role by name: %w", err)
	}
	return roleFromModel(&m), nil
}

func (s *Store) UpdateRole(ctx context.Context, r *role.Role, expectedVersion int64) error {
	r.UpdatedAt = now()
	m := roleToModel(r)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID, "version": expectedVersion}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("bastion: update role: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("role %s expected version %d: %w", r.Name, expectedVersion, role.ErrVersionMismatch)
	}
	return nil
}

func (s *Store) DeleteRole(ctx context.Context, roleID id.RoleID) error {
	_, err := s.mdb.NewDelete((*roleModel)(nil)).
		Filter(bson.M{"_id": roleID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("bastion: delete role: %w", err)
	}
	return nil
}

func roleListFilter(filter *role.ListFilter) bson.M {
	f := bson.M{}
	if filter != nil {
		if filter.TenantID != "" {
			f["tenant_id"] = filter.TenantID
		}
		if filter.System != nil {
			f["system"] = *filter.System
		}
		if filter.Search != "" {
			f["name"] = bson.M{"$regex": filter.Search, "$options": "i"}
		}
	}
	return f
}

func (s *Store) ListRoles(ctx context.Context, filter *role.ListFilter) ([]*role.Role, error) {
	var models []roleModel
	q := s.mdb.NewFind(&models).
		Filter(roleListFilter(filter)).
		Sort(bson.D{{Key: "name", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("bastion: list roles: %w", err)
	}
	result := make([]*role.Role, len(models))
	for i := range models {
		result[i] = roleFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountRoles(ctx context.Context, filter *role.ListFilter) (int64, error) {
	count, err := s.mdb.NewFind((*roleModel)(nil)).
		Filter(roleListFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("bastion: count roles: %w", err)
	}
	return count, nil
}

func (s *Store) ListChildRoles(ctx context.Context, tenantID, name string) ([]*role.Role, error) {
	var models []roleModel
	if err := s.mdb.NewFind(&models).
		Filter(bson.M{"tenant_id": tenantID, "inherits_from": name}).
		Sort(bson.D{{Key: "name", Value: 1}}).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("bastion: list child roles: %w", err)
	}
	result := make([]*role.Role, len(models))
	for i := range models {
		result[i] = roleFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountRolesGranting(ctx context.Context, tenantID, permName string) (int64, error) {
	// Array-membership match on the embedded grant set.
	count, err := s.mdb.NewFind((*roleModel)(nil)).
		Filter(bson.M{"tenant_id": tenantID, "permissions": permName}).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("bastion: count roles granting: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteRolesByTenant(ctx context.Context, tenantID string) error {
	_, err := s.mdb.NewDelete((*roleModel)(nil)).
		Many().
		Filter(bson.M{"tenant_id": tenantID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("bastion: delete roles by tenant: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Permission operations
// ──────────────────────────────────────────────────

func (s *Store) CreatePermission(ctx context.Context, p *permission.Permission) error {
	p.CreatedAt = now()
	m := permissionToModel(p)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("bastion: create permission: %w", err)
	}
	return nil
}

func (s *Store) GetPermission(ctx context.Context, permID id.PermissionID) (*permission.Permission, error) {
	var m permissionModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": permID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("permission %s: %w", permID, permission.ErrNotFound)
		}
		return nil, fmt.Errorf("bastion: get permission: %w", err)
	}
	return permissionFromModel(&m), nil
}

func (s *Store) GetPermissionByName(ctx context.Context, tenantID, name string) (*permission.Permission, error) {
	var m permissionModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"tenant_id": tenantID, "name": name}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("permission %q: %w", name, permission.ErrNotFound)
		}
		return nil, fmt.Errorf("bastion: get permission by name: %w", err)
	}
	return permissionFromModel(&m), nil
}

func (s *Store) DeletePermission(ctx context.Context, tenantID, name string) error {
	res, err := s.mdb.NewDelete((*permissionModel)(nil)).
		Filter(bson.M{"tenant_id": tenantID, "name": name}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("bastion: delete permission: %w", err)
	}
	if res.DeletedCount() == 0 {
		return fmt.Errorf("permission %q: %w", name, permission.ErrNotFound)
	}
	return nil
}

func permissionListFilter(filter *permission.ListFilter) bson.M {
	f := bson.M{}
	if filter != nil {
		if filter.TenantID != "" {
			f["tenant_id"] = filter.TenantID
		}
		if filter.Resource != "" {
			f["resource"] = filter.Resource
		}
		if filter.Action != "" {
			f["action"] = filter.Action
		}
		if filter.Search != "" {
			f["name"] = bson.M{"$regex": filter.Search, "$options": "i"}
		}
	}
	return f
}

func (s *Store) ListPermissions(ctx context.Context, filter *permission.ListFilter) ([]*permission.Permission, error) {
	var models []permissionModel
	q := s.mdb.NewFind(&models).
		Filter(permissionListFilter(filter)).
		Sort(bson.D{{Key: "resource", Value: 1}, {Key: "action", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
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
	count, err := s.mdb.NewFind((*permissionModel)(nil)).
		Filter(permissionListFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("bastion: count permissions: %w", err)
	}
	return count, nil
}

func (s *Store) DeletePermissionsByTenant(ctx context.Context, tenantID string) error {
	_, err := s.mdb.NewDelete((*permissionModel)(nil)).
		Many().
		Filter(bson.M{"tenant_id": tenantID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("bastion: delete permissions by tenant: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Assignment operations
// ──────────────────────────────────────────────────

func (s *Store) CreateAssignment(ctx context.Context, a *assignment.Assignment) error {
	a.CreatedAt = now()
	m := assignmentToModel(a)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return fmt.Errorf("assignment %s/%s: %w", a.UserID, a.RoleName, assignment.ErrDuplicate)
		}
		return fmt.Errorf("bastion: create assignment: %w", err)
	}
	return nil
}

func (s *Store) GetAssignment(ctx context.Context, grantID id.GrantID) (*assignment.Assignment, error) {
	var m assignmentModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": grantID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("assignment %s: %w", grantID, assignment.ErrNotFound)
		}
		return nil, fmt.Errorf("bastion: get assignment: %w", err)
	}
	return assignmentFromModel(&m), nil
}

func (s *Store) DeleteAssignment(ctx context.Context, tenantID, userID, roleName string) error {
	res, err := s.mdb.NewDelete((*assignmentModel)(nil)).
		Filter(bson.M{"tenant_id": tenantID, "user_id": userID, "role_name": roleName}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("bastion: delete assignment: %w", err)
	}
	if res.DeletedCount() == 0 {
		return fmt.Errorf("assignment %s/%s: %w", userID, roleName, assignment.ErrNotFound)
	}
	return nil
}

func assignmentListFilter(filter *assignment.ListFilter) bson.M {
	f := bson.M{}
	if filter != nil {
		if filter.TenantID != "" {
			f["tenant_id"] = filter.TenantID
		}
		if filter.UserID != "" {
			f["user_id"] = filter.UserID
		}
		if filter.RoleName != "" {
			f["role_name"] = filter.RoleName
		}
	}
	return f
}

func (s *Store) ListAssignments(ctx context.Context, filter *assignment.ListFilter) ([]*assignment.Assignment, error) {
	var models []assignmentModel
	q := s.mdb.NewFind(&models).
		Filter(assignmentListFilter(filter)).
		Sort(bson.D{{Key: "user_id", Value: 1}, {Key: "role_name", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
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
	count, err := s.mdb.NewFind((*assignmentModel)(nil)).
		Filter(assignmentListFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("bastion: count assignments: %w", err)
	}
	return count, nil
}

func (s *Store) ListRolesForUser(ctx context.Context, tenantID, userID string) ([]string, error) {
	var models []assignmentModel
	if err := s.mdb.NewFind(&models).
		Filter(bson.M{"tenant_id": tenantID, "user_id": userID}).
		Sort(bson.D{{Key: "role_name", Value: 1}}).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("bastion: list roles for user: %w", err)
	}
	names := make([]string, len(models))
	for i := range models {
		names[i] = models[i].RoleName
	}
	return names, nil
}

func (s *Store) CountUsersForRole(ctx context.Context, tenantID, roleName string) (int64, error) {
	// The (tenant, user, role) triple is unique, so the assignment count is
	// already the distinct user count.
	count, err := s.mdb.NewFind((*assignmentModel)(nil)).
		Filter(bson.M{"tenant_id": tenantID, "role_name": roleName}).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("bastion: count users for role: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteAssignmentsByRole(ctx context.Context, tenantID, roleName string) error {
	_, err := s.mdb.NewDelete((*assignmentModel)(nil)).
		Many().
		Filter(bson.M{"tenant_id": tenantID, "role_name": roleName}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("bastion: delete assignments by role: %w", err)
	}
	return nil
}

func (s *Store) DeleteAssignmentsByUser(ctx context.Context, tenantID, userID string) error {
	_, err := s.mdb.NewDelete((*assignmentModel)(nil)).
		Many().
		Filter(bson.M{"tenant_id": tenantID, "user_id": userID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("bastion: delete assignments by user: %w", err)
	}
	return nil
}

func (s *Store) DeleteAssignmentsByTenant(ctx context.Context, tenantID string) error {
	_, err := s.mdb.NewDelete((*assignmentModel)(nil)).
		Many().
		Filter(bson.M{"tenant_id": tenantID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("bastion: delete assignments by tenant: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Audit log operations
// ──────────────────────────────────────────────────

func (s *Store) CreateAuditEntry(ctx context.Context, e *auditlog.Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now()
	}
	m := auditEntryToModel(e)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("bastion: create audit entry: %w", err)
	}
	return nil
}

func (s *Store) GetAuditEntry(ctx context.Context, entryID id.AuditEntryID) (*auditlog.Entry, error) {
	var m auditEntryModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": entryID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("audit entry %s: %w", entryID, auditlog.ErrNotFound)
		}
		return nil, fmt.Errorf("bastion: get audit entry: %w", err)
	}
	return auditEntryFromModel(&m), nil
}

func auditQueryFilter(filter *auditlog.QueryFilter) bson.M {
	f := bson.M{}
	if filter != nil {
		if filter.TenantID != "" {
			f["tenant_id"] = filter.TenantID
		}
		if filter.Action != "" {
			f["action"] = filter.Action
		}
		if filter.RoleName != "" {
			f["role_name"] = filter.RoleName
		}
		if filter.UserID != "" {
			f["user_id"] = filter.UserID
		}
		created := bson.M{}
		if filter.After != nil {
			created["$gte"] = *filter.After
		}
		if filter.Before != nil {
			created["$lte"] = *filter.Before
		}
		if len(created) > 0 {
			f["created_at"] = created
		}
	}
	return f
}

func (s *Store) ListAuditEntries(ctx context.Context, filter *auditlog.QueryFilter) ([]*auditlog.Entry, error) {
	var models []auditEntryModel
	q := s.mdb.NewFind(&models).
		Filter(auditQueryFilter(filter)).
		Sort(bson.D{{Key: "created_at", Value: -1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
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
	count, err := s.mdb.NewFind((*auditEntryModel)(nil)).
		Filter(auditQueryFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("bastion: count audit entries: %w", err)
	}
	return count, nil
}

func (s *Store) PurgeAuditEntries(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.mdb.NewDelete((*auditEntryModel)(nil)).
		Many().
		Filter(bson.M{"created_at": bson.M{"$lt": before}}).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("bastion: purge audit entries: %w", err)
	}
	return res.DeletedCount(), nil
}

func (s *Store) DeleteAuditEntriesByTenant(ctx context.Context, tenantID string) error {
	_, err := s.mdb.NewDelete((*auditEntryModel)(nil)).
		Many().
		Filter(bson.M{"tenant_id": tenantID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("bastion: delete audit entries by tenant: %w", err)
	}
	return nil
}
