package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Bastion store (PostgreSQL).
var Migrations = migrate.NewGroup("bastion")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_roles",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS bastion_roles (
    id              TEXT PRIMARY KEY,
    tenant_id       TEXT NOT NULL,
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    system          BOOLEAN NOT NULL DEFAULT FALSE,
    inherits_from   TEXT,
    version         BIGINT NOT NULL DEFAULT 1,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),

    UNIQUE(tenant_id, name)
);

CREATE INDEX IF NOT EXISTS idx_bastion_roles_tenant ON bastion_roles (tenant_id);
CREATE INDEX IF NOT EXISTS idx_bastion_roles_parent ON bastion_roles (tenant_id, inherits_from);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS bastion_roles`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_role_grants",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS bastion_role_grants (
    role_id         TEXT NOT NULL REFERENCES bastion_roles(id) ON DELETE CASCADE,
    permission      TEXT NOT NULL,

    PRIMARY KEY (role_id, permission)
);

CREATE INDEX IF NOT EXISTS idx_bastion_role_grants_perm ON bastion_role_grants (permission);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS bastion_role_grants`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_permissions",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS bastion_permissions (
    id              TEXT PRIMARY KEY,
    tenant_id       TEXT NOT NULL,
    name            TEXT NOT NULL,
    resource        TEXT NOT NULL,
    action          TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),

    UNIQUE(tenant_id, name)
);

CREATE INDEX IF NOT EXISTS idx_bastion_permissions_tenant ON bastion_permissions (tenant_id);
CREATE INDEX IF NOT EXISTS idx_bastion_permissions_resource ON bastion_permissions (tenant_id, resource, action);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS bastion_permissions`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_assignments",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS bastion_assignments (
    id              TEXT PRIMARY KEY,
    tenant_id       TEXT NOT NULL,
    user_id         TEXT NOT NULL,
    role_name       TEXT NOT NULL,
    granted_by      TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),

    UNIQUE(tenant_id, user_id, role_name)
);

CREATE INDEX IF NOT EXISTS idx_bastion_assignments_user ON bastion_assignments (tenant_id, user_id);
CREATE INDEX IF NOT EXISTS idx_bastion_assignments_role ON bastion_assignments (tenant_id, role_name);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS bastion_assignments`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_audit_log",
			Version: "20240101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS bastion_audit_log (
    id              TEXT PRIMARY KEY,
    tenant_id       TEXT NOT NULL,
    actor           TEXT NOT NULL DEFAULT '',
    action          TEXT NOT NULL,
    role_name       TEXT NOT NULL DEFAULT '',
    user_id         TEXT NOT NULL DEFAULT '',
    detail          TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_bastion_audit_tenant ON bastion_audit_log (tenant_id, created_at);
CREATE INDEX IF NOT EXISTS idx_bastion_audit_action ON bastion_audit_log (tenant_id, action);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS bastion_audit_log`)
				return err
			},
		},
	)
}
