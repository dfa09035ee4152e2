package bastion

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/bastion/auditlog"
)

// SeedPermission is a catalog entry to provision for a tenant.
type SeedPermission struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// SeedRole is a role to provision for a tenant.
type SeedRole struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	System       bool     `json:"system,omitempty"`
	InheritsFrom string   `json:"inherits_from,omitempty"`
	Permissions  []string `json:"permissions,omitempty"`
}

// Seed is a declarative bundle of permissions and roles to provision into a
// tenant, replacing any notion of globally predefined roles.
type Seed struct {
	Permissions []SeedPermission `json:"permissions"`
	Roles       []SeedRole       `json:"roles"`
}

// DefaultSeed returns the stock seed: a system admin role holding the
// wildcard, plus member and viewer roles over a small common catalog.
// Member inherits from viewer.
func DefaultSeed() Seed {
	return Seed{
		Permissions: []SeedPermission{
			{Name: "users:read", Description: "View users"},
			{Name: "users:write", Description: "Create and update users"},
			{Name: "users:delete", Description: "Remove users"},
			{Name: "roles:read", Description: "View roles and assignments"},
			{Name: "roles:write", Description: "Manage roles and assignments"},
			{Name: "settings:read", Description: "View tenant settings"},
			{Name: "settings:write", Description: "Change tenant settings"},
		},
		Roles: []SeedRole{
			{
				Name:        "admin",
				Description: "Full access to every resource",
				System:      true,
				Permissions: []string{Wildcard},
			},
			{
				Name:        "viewer",
				Description: "Read-only access",
				Permissions: []string{"users:read", "roles:read", "settings:read"},
			},
			{
				Name:         "member",
				Description:  "Standard member access",
				InheritsFrom: "viewer",
				Permissions:  []string{"users:write"},
			},
		},
	}
}

// Seed provisions the given permissions and roles into the caller's tenant.
// Seeding is idempotent: entries that already exist are left untouched, so
// re-running the same seed is safe and never clobbers tenant customization.
func (e *Engine) Seed(ctx context.Context, seed Seed) error {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return err
	}

	for _, sp := range seed.Permissions {
		_, err := e.DefinePermission(ctx, DefinePermissionInput{
			Name:        sp.Name,
			Description: sp.Description,
		})
		if err != nil && !errors.Is(err, ErrDuplicatePermission) {
			return fmt.Errorf("bastion: seed permission %s: %w", sp.Name, err)
		}
	}

	// Roles seed in declaration order, so parents must precede children.
	for _, sr := range seed.Roles {
		in := CreateRoleInput{
			Name:        sr.Name,
			Description: sr.Description,
			System:      sr.System,
			Permissions: sr.Permissions,
		}
		if sr.InheritsFrom != "" {
			parent := sr.InheritsFrom
			in.InheritsFrom = &parent
		}
		_, err := e.CreateRole(ctx, in)
		if err != nil && !errors.Is(err, ErrDuplicateRole) {
			return fmt.Errorf("bastion: seed role %s: %w", sr.Name, err)
		}
	}

	e.audit(ctx, tenantID, auditlog.ActionSeedApplied, "", "", fmt.Sprintf("%d permissions, %d roles", len(seed.Permissions), len(seed.Roles)))
	if e.plugins != nil {
		e.plugins.EmitSeedApplied(ctx, tenantID)
	}
	return nil
}
