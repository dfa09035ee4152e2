// Package memory provides an in-memory implementation of the Bastion
// composite store. It is intended for testing and development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xraph/bastion/assignment"
	"github.com/xraph/bastion/auditlog"
	"github.com/xraph/bastion/id"
	"github.com/xraph/bastion/permission"
	"github.com/xraph/bastion/role"
)

// Compile-time interface checks.
var (
	_ role.Store       = (*Store)(nil)
	_ permission.Store = (*Store)(nil)
	_ assignment.Store = (*Store)(nil)
	_ auditlog.Store   = (*Store)(nil)
)

// Store is a thread-safe in-memory store for all Bastion entities.
type Store struct {
	mu sync.RWMutex

	roles        map[string]*role.Role
	permissions  map[string]*permission.Permission
	assignments  map[string]*assignment.Assignment
	auditEntries map[string]*auditlog.Entry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		roles:        make(map[string]*role.Role),
		permissions:  make(map[string]*permission.Permission),
		assignments:  make(map[string]*assignment.Assignment),
		auditEntries: make(map[string]*auditlog.Entry),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Role Store
// ──────────────────────────────────────────────────

func (s *Store) CreateRole(_ context.Context, r *role.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[r.ID.String()] = copyRole(r)
	return nil
}

func (s *Store) GetRole(_ context.Context, roleID id.RoleID) (*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[roleID.String()]
	if !ok {
		return nil, fmt.Errorf("role %s: %w", roleID, role.ErrNotFound)
	}
	return copyRole(r), nil
}

func (s *Store) GetRoleByName(_ context.Context, tenantID, name string) (*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.roles {
		if r.TenantID == tenantID && r.Name == name {
			return copyRole(r), nil
		}
	}
	return nil, fmt.Errorf("role %q: %w", name, role.ErrNotFound)
}

func (s *Store) UpdateRole(_ context.Context, r *role.Role, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.roles[r.ID.String()]
	if !ok {
		return fmt.Errorf("role %s: %w", r.ID, role.ErrNotFound)
	}
	if stored.Version != expectedVersion {
		return fmt.Errorf("role %s at version %d: %w", r.Name, stored.Version, role.ErrVersionMismatch)
	}
	s.roles[r.ID.String()] = copyRole(r)
	return nil
}

func (s *Store) DeleteRole(_ context.Context, roleID id.RoleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.roles, roleID.String())
	return nil
}

func (s *Store) ListRoles(_ context.Context, filter *role.ListFilter) ([]*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*role.Role, 0, len(s.roles))
	for _, r := range s.roles {
		if filter != nil {
			if filter.TenantID != "" && r.TenantID != filter.TenantID {
				continue
			}
			if filter.System != nil && r.System != *filter.System {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(filter.Search)) {
				continue
			}
		}
		result = append(result, copyRole(r))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	limit, offset := 0, 0
	if filter != nil {
		limit, offset = filter.Limit, filter.Offset
	}
	return applyPagination(result, limit, offset), nil
}

func (s *Store) CountRoles(ctx context.Context, filter *role.ListFilter) (int64, error) {
	list, err := s.ListRoles(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) ListChildRoles(_ context.Context, tenantID, name string) ([]*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*role.Role
	for _, r := range s.roles {
		if r.TenantID == tenantID && r.InheritsFrom != nil && *r.InheritsFrom == name {
			result = append(result, copyRole(r))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *Store) CountRolesGranting(_ context.Context, tenantID, permName string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, r := range s.roles {
		if r.TenantID == tenantID && r.HasDirect(permName) {
			count++
		}
	}
	return count, nil
}

func (s *Store) DeleteRolesByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, r := range s.roles {
		if r.TenantID == tenantID {
			delete(s.roles, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Permission Store
// ──────────────────────────────────────────────────

func (s *Store) CreatePermission(_ context.Context, p *permission.Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permissions[p.ID.String()] = copyPermission(p)
	return nil
}

func (s *Store) GetPermission(_ context.Context, permID id.PermissionID) (*permission.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.permissions[permID.String()]
	if !ok {
		return nil, fmt.Errorf("permission %s: %w", permID, permission.ErrNotFound)
	}
	return copyPermission(p), nil
}

func (s *Store) GetPermissionByName(_ context.Context, tenantID, name string) (*permission.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.permissions {
		if p.TenantID == tenantID && p.Name == name {
			return copyPermission(p), nil
		}
	}
	return nil, fmt.Errorf("permission %q: %w", name, permission.ErrNotFound)
}

func (s *Store) DeletePermission(_ context.Context, tenantID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, p := range s.permissions {
		if p.TenantID == tenantID && p.Name == name {
			delete(s.permissions, k)
			return nil
		}
	}
	return fmt.Errorf("permission %q: %w", name, permission.ErrNotFound)
}

func (s *Store) ListPermissions(_ context.Context, filter *permission.ListFilter) ([]*permission.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*permission.Permission, 0, len(s.permissions))
	for _, p := range s.permissions {
		if filter != nil {
			if filter.TenantID != "" && p.TenantID != filter.TenantID {
				continue
			}
			if filter.Resource != "" && p.Resource != filter.Resource {
				continue
			}
			if filter.Action != "" && p.Action != filter.Action {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
				continue
			}
		}
		result = append(result, copyPermission(p))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Resource != result[j].Resource {
			return result[i].Resource < result[j].Resource
		}
		return result[i].Action < result[j].Action
	})
	limit, offset := 0, 0
	if filter != nil {
		limit, offset = filter.Limit, filter.Offset
	}
	return applyPagination(result, limit, offset), nil
}

func (s *Store) CountPermissions(ctx context.Context, filter *permission.ListFilter) (int64, error) {
	list, err := s.ListPermissions(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) DeletePermissionsByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, p := range s.permissions {
		if p.TenantID == tenantID {
			delete(s.permissions, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Assignment Store
// ──────────────────────────────────────────────────

func (s *Store) CreateAssignment(_ context.Context, a *assignment.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.assignments {
		if existing.TenantID == a.TenantID && existing.UserID == a.UserID && existing.RoleName == a.RoleName {
			return fmt.Errorf("user %s role %s: %w", a.UserID, a.RoleName, assignment.ErrDuplicate)
		}
	}
	s.assignments[a.ID.String()] = copyAssignment(a)
	return nil
}

func (s *Store) GetAssignment(_ context.Context, grantID id.GrantID) (*assignment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[grantID.String()]
	if !ok {
		return nil, fmt.Errorf("assignment %s: %w", grantID, assignment.ErrNotFound)
	}
	return copyAssignment(a), nil
}

func (s *Store) DeleteAssignment(_ context.Context, tenantID, userID, roleName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, a := range s.assignments {
		if a.TenantID == tenantID && a.UserID == userID && a.RoleName == roleName {
			delete(s.assignments, k)
			return nil
		}
	}
	return fmt.Errorf("user %s role %s: %w", userID, roleName, assignment.ErrNotFound)
}

func (s *Store) ListAssignments(_ context.Context, filter *assignment.ListFilter) ([]*assignment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*assignment.Assignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		if filter != nil {
			if filter.TenantID != "" && a.TenantID != filter.TenantID {
				continue
			}
			if filter.UserID != "" && a.UserID != filter.UserID {
				continue
			}
			if filter.RoleName != "" && a.RoleName != filter.RoleName {
				continue
			}
		}
		result = append(result, copyAssignment(a))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].UserID != result[j].UserID {
			return result[i].UserID < result[j].UserID
		}
		return result[i].RoleName < result[j].RoleName
	})
	limit, offset := 0, 0
	if filter != nil {
		limit, offset = filter.Limit, filter.Offset
	}
	return applyPagination(result, limit, offset), nil
}

func (s *Store) CountAssignments(ctx context.Context, filter *assignment.ListFilter) (int64, error) {
	list, err := s.ListAssignments(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) ListRolesForUser(_ context.Context, tenantID, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []string
	for _, a := range s.assignments {
		if a.TenantID == tenantID && a.UserID == userID {
			result = append(result, a.RoleName)
		}
	}
	sort.Strings(result)
	return result, nil
}

func (s *Store) CountUsersForRole(_ context.Context, tenantID, roleName string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make(map[string]struct{})
	for _, a := range s.assignments {
		if a.TenantID == tenantID && a.RoleName == roleName {
			users[a.UserID] = struct{}{}
		}
	}
	return int64(len(users)), nil
}

func (s *Store) DeleteAssignmentsByRole(_ context.Context, tenantID, roleName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, a := range s.assignments {
		if a.TenantID == tenantID && a.RoleName == roleName {
			delete(s.assignments, k)
		}
	}
	return nil
}

func (s *Store) DeleteAssignmentsByUser(_ context.Context, tenantID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, a := range s.assignments {
		if a.TenantID == tenantID && a.UserID == userID {
			delete(s.assignments, k)
		}
	}
	return nil
}

func (s *Store) DeleteAssignmentsByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, a := range s.assignments {
		if a.TenantID == tenantID {
			delete(s.assignments, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Audit Log Store
// ──────────────────────────────────────────────────

func (s *Store) CreateAuditEntry(_ context.Context, e *auditlog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auditEntries[e.ID.String()] = copyAuditEntry(e)
	return nil
}

func (s *Store) GetAuditEntry(_ context.Context, entryID id.AuditEntryID) (*auditlog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.auditEntries[entryID.String()]
	if !ok {
		return nil, fmt.Errorf("audit entry %s: %w", entryID, auditlog.ErrNotFound)
	}
	return copyAuditEntry(e), nil
}

func (s *Store) ListAuditEntries(_ context.Context, filter *auditlog.QueryFilter) ([]*auditlog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*auditlog.Entry, 0, len(s.auditEntries))
	for _, e := range s.auditEntries {
		if filter != nil {
			if filter.TenantID != "" && e.TenantID != filter.TenantID {
				continue
			}
			if filter.Action != "" && e.Action != filter.Action {
				continue
			}
			if filter.RoleName != "" && e.RoleName != filter.RoleName {
				continue
			}
			if filter.UserID != "" && e.UserID != filter.UserID {
				continue
			}
			if filter.After != nil && e.CreatedAt.Before(*filter.After) {
				continue
			}
			if filter.Before != nil && e.CreatedAt.After(*filter.Before) {
				continue
			}
		}
		result = append(result, copyAuditEntry(e))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	limit, offset := 0, 0
	if filter != nil {
		limit, offset = filter.Limit, filter.Offset
	}
	return applyPagination(result, limit, offset), nil
}

func (s *Store) CountAuditEntries(ctx context.Context, filter *auditlog.QueryFilter) (int64, error) {
	list, err := s.ListAuditEntries(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) PurgeAuditEntries(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for k, e := range s.auditEntries {
		if e.CreatedAt.Before(before) {
			delete(s.auditEntries, k)
			count++
		}
	}
	return count, nil
}

func (s *Store) DeleteAuditEntriesByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.auditEntries {
		if e.TenantID == tenantID {
			delete(s.auditEntries, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func copyRole(r *role.Role) *role.Role {
	c := *r
	if r.Permissions != nil {
		c.Permissions = make([]string, len(r.Permissions))
		copy(c.Permissions, r.Permissions)
	}
	if r.InheritsFrom != nil {
		parent := *r.InheritsFrom
		c.InheritsFrom = &parent
	}
	return &c
}

func copyPermission(p *permission.Permission) *permission.Permission {
	c := *p
	return &c
}

func copyAssignment(a *assignment.Assignment) *assignment.Assignment {
	c := *a
	return &c
}

func copyAuditEntry(e *auditlog.Entry) *auditlog.Entry {
	c := *e
	return &c
}

func applyPagination[T any](items []*T, limit, offset int) []*T {
	if offset > 0 && offset < len(items) {
		items = items[offset:]
	} else if offset >= len(items) && offset > 0 {
		return nil
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
