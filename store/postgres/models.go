package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/bastion/assignment"
	"github.com/xraph/bastion/auditlog"
	"github.com/xraph/bastion/id"
	"github.com/xraph/bastion/permission"
	"github.com/xraph/bastion/role"
)

// ──────────────────────────────────────────────────
// Role model
// ──────────────────────────────────────────────────

type roleModel struct {
	grove.BaseModel `grove:"table:bastion_roles"`
	ID              string    `grove:"id,pk"`
	TenantID        string    `grove:"tenant_id,notnull"`
	Name            string    `grove:"name,notnull"`
	Description     string    `grove:"description"`
	System          bool      `grove:"system,notnull"`
	InheritsFrom    *string   `grove:"inherits_from"`
	Version         int64     `grove:"version,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func roleToModel(r *role.Role) *roleModel {
	m := &roleModel{
		ID:          r.ID.String(),
		TenantID:    r.TenantID,
		Name:        r.Name,
		Description: r.Description,
		System:      r.System,
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.InheritsFrom != nil {
		parent := *r.InheritsFrom
		m.InheritsFrom = &parent
	}
	return m
}

func roleFromModel(m *roleModel) *role.Role {
	rid, _ := id.ParseRoleID(m.ID) //nolint:errcheck // stored IDs are always valid
	r := &role.Role{
		ID:          rid,
		TenantID:    m.TenantID,
		Name:        m.Name,
		Description: m.Description,
		System:      m.System,
		Version:     m.Version,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.InheritsFrom != nil {
		parent := *m.InheritsFrom
		r.InheritsFrom = &parent
	}
	return r
}

// ──────────────────────────────────────────────────
// Role grant junction model
// ──────────────────────────────────────────────────

type roleGrantModel struct {
	grove.BaseModel `grove:"table:bastion_role_grants"`
	RoleID          string `grove:"role_id,pk"`
	Permission      string `grove:"permission,pk"`
}

// ──────────────────────────────────────────────────
// Permission model
// ──────────────────────────────────────────────────

type permissionModel struct {
	grove.BaseModel `grove:"table:bastion_permissions"`
	ID              string    `grove:"id,pk"`
	TenantID        string    `grove:"tenant_id,notnull"`
	Name            string    `grove:"name,notnull"`
	Resource        string    `grove:"resource,notnull"`
	Action          string    `grove:"action,notnull"`
	Description     string    `grove:"description"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func permissionToModel(p *permission.Permission) *permissionModel {
	return &permissionModel{
		ID:          p.ID.String(),
		TenantID:    p.TenantID,
		Name:        p.Name,
		Resource:    p.Resource,
		Action:      p.Action,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}

func permissionFromModel(m *permissionModel) *permission.Permission {
	pid, _ := id.ParsePermissionID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &permission.Permission{
		ID:          pid,
		TenantID:    m.TenantID,
		Name:        m.Name,
		Resource:    m.Resource,
		Action:      m.Action,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}

// ──────────────────────────────────────────────────
// Assignment model
// ──────────────────────────────────────────────────

type assignmentModel struct {
	grove.BaseModel `grove:"table:bastion_assignments"`
	ID              string    `grove:"id,pk"`
	TenantID        string    `grove:"tenant_id,notnull"`
	UserID          string    `grove:"user_id,notnull"`
	RoleName        string    `grove:"role_name,notnull"`
	GrantedBy       string    `grove:"granted_by"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func assignmentToModel(a *assignment.Assignment) *assignmentModel {
	return &assignmentModel{
		ID:        a.ID.String(),
		TenantID:  a.TenantID,
		UserID:    a.UserID,
		RoleName:  a.RoleName,
		GrantedBy: a.GrantedBy,
		CreatedAt: a.CreatedAt,
	}
}

func assignmentFromModel(m *assignmentModel) *assignment.Assignment {
	gid, _ := id.ParseGrantID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &assignment.Assignment{
		ID:        gid,
		TenantID:  m.TenantID,
		UserID:    m.UserID,
		RoleName:  m.RoleName,
		GrantedBy: m.GrantedBy,
		CreatedAt: m.CreatedAt,
	}
}

// ──────────────────────────────────────────────────
// Audit log model
// ──────────────────────────────────────────────────

type auditEntryModel struct {
	grove.BaseModel `grove:"table:bastion_audit_log"`
	ID              string    `grove:"id,pk"`
	TenantID        string    `grove:"tenant_id,notnull"`
	Actor           string    `grove:"actor"`
	Action          string    `grove:"action,notnull"`
	RoleName        string    `grove:"role_name"`
	UserID          string    `grove:"user_id"`
	Detail          string    `grove:"detail"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func auditEntryToModel(e *auditlog.Entry) *auditEntryModel {
	return &auditEntryModel{
		ID:        e.ID.String(),
		TenantID:  e.TenantID,
		Actor:     e.Actor,
		Action:    e.Action,
		RoleName:  e.RoleName,
		UserID:    e.UserID,
		Detail:    e.Detail,
		CreatedAt: e.CreatedAt,
	}
}

func auditEntryFromModel(m *auditEntryModel) *auditlog.Entry {
	eid, _ := id.ParseAuditEntryID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &auditlog.Entry{
		ID:        eid,
		TenantID:  m.TenantID,
		Actor:     m.Actor,
		Action:    m.Action,
		RoleName:  m.RoleName,
		UserID:    m.UserID,
		Detail:    m.Detail,
		CreatedAt: m.CreatedAt,
	}
}
