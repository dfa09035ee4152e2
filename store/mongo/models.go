package mongo

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

// roleModel embeds the direct grant set in the role document, so a role and
// its grants are always written in a single operation.
type roleModel struct {
	grove.BaseModel `grove:"table:bastion_roles"`
	ID              string    `grove:"id,pk"          bson:"_id"`
	TenantID        string    `grove:"tenant_id"      bson:"tenant_id"`
	Name            string    `grove:"name"           bson:"name"`
	Description     string    `grove:"description"    bson:"description"`
	System          bool      `grove:"system"         bson:"system"`
	InheritsFrom    *string   `grove:"inherits_from"  bson:"inherits_from,omitempty"`
	Permissions     []string  `grove:"permissions"    bson:"permissions"`
	Version         int64     `grove:"version"        bson:"version"`
	CreatedAt       time.Time `grove:"created_at"     bson:"created_at"`
	UpdatedAt       time.Time `grove:"updated_at"     bson:"updated_at"`
}

func roleToModel(r *role.Role) *roleModel {
	m := &roleModel{
		ID:          r.ID.String(),
		TenantID:    r.TenantID,
		Name:        r.Name,
		Description: r.Description,
		System:      r.System,
		Permissions: r.Permissions,
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if m.Permissions == nil {
		m.Permissions = []string{}
	}
	if r.InheritsFrom != nil {
		p := *r.InheritsFrom
		m.InheritsFrom = &p
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
		Permissions: m.Permissions,
		Version:     m.Version,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if r.Permissions == nil {
		r.Permissions = []string{}
	}
	if m.InheritsFrom != nil {
		p := *m.InheritsFrom
		r.InheritsFrom = &p
	}
	return r
}

// ──────────────────────────────────────────────────
// Permission model
// ──────────────────────────────────────────────────

type permissionModel struct {
	grove.BaseModel `grove:"table:bastion_permissions"`
	ID              string    `grove:"id,pk"        bson:"_id"`
	TenantID        string    `grove:"tenant_id"    bson:"tenant_id"`
	Name            string    `grove:"name"         bson:"name"`
	Resource        string    `grove:"resource"     bson:"resource"`
	Action          string    `grove:"action"       bson:"action"`
	Description     string    `grove:"description"  bson:"description"`
	CreatedAt       time.Time `grove:"created_at"   bson:"created_at"`
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
	ID              string    `grove:"id,pk"       bson:"_id"`
	TenantID        string    `grove:"tenant_id"   bson:"tenant_id"`
	UserID          string    `grove:"user_id"     bson:"user_id"`
	RoleName        string    `grove:"role_name"   bson:"role_name"`
	GrantedBy       string    `grove:"granted_by"  bson:"granted_by"`
	CreatedAt       time.Time `grove:"created_at"  bson:"created_at"`
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
// Audit entry model
// ──────────────────────────────────────────────────

type auditEntryModel struct {
	grove.BaseModel `grove:"table:bastion_audit_log"`
	ID              string    `grove:"id,pk"       bson:"_id"`
	TenantID        string    `grove:"tenant_id"   bson:"tenant_id"`
	Actor           string    `grove:"actor"       bson:"actor"`
	Action          string    `grove:"action"      bson:"action"`
	RoleName        string    `grove:"role_name"   bson:"role_name"`
	UserID          string    `grove:"user_id"     bson:"user_id"`
	Detail          string    `grove:"detail"      bson:"detail"`
	CreatedAt       time.Time `grove:"created_at"  bson:"created_at"`
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
