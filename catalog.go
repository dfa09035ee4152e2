package bastion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xraph/bastion/auditlog"
	"github.com/xraph/bastion/id"
	"github.com/xraph/bastion/permission"
)

// DefinePermissionInput carries the fields for a new catalog entry.
type DefinePermissionInput struct {
	Name        string
	Description string
}

// DefinePermission registers a permission in the tenant's catalog. The name
// must be of the form "resource:action". Re-defining an existing name fails
// with ErrDuplicatePermission.
func (e *Engine) DefinePermission(ctx context.Context, in DefinePermissionInput) (*permission.Permission, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	resource, action, err := permission.ParseName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPermissionName, err)
	}

	if _, err := e.store.GetPermissionByName(ctx, tenantID, name); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicatePermission, name)
	} else if !errors.Is(err, permission.ErrNotFound) {
		return nil, fmt.Errorf("bastion: define permission: %w", err)
	}

	p := &permission.Permission{
		ID:          id.NewPermissionID(),
		TenantID:    tenantID,
		Name:        name,
		Resource:    resource,
		Action:      action,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   time.Now().UTC(),
	}
	if err := e.store.CreatePermission(ctx, p); err != nil {
		return nil, fmt.Errorf("bastion: define permission: %w", err)
	}

	e.audit(ctx, tenantID, auditlog.ActionPermDefined, "", "", name)
	if e.plugins != nil {
		e.plugins.EmitPermissionDefined(ctx, p)
	}
	return p, nil
}

// RemovePermission deletes a catalog entry. A permission still granted to
// any role cannot be removed.
func (e *Engine) RemovePermission(ctx context.Context, name string) error {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return err
	}

	if _, err := e.store.GetPermissionByName(ctx, tenantID, name); err != nil {
		if errors.Is(err, permission.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrPermissionNotFound, name)
		}
		return fmt.Errorf("bastion: remove permission: %w", err)
	}

	granting, err := e.store.CountRolesGranting(ctx, tenantID, name)
	if err != nil {
		return fmt.Errorf("bastion: remove permission: %w", err)
	}
	if granting > 0 {
		return fmt.Errorf("%w: %s granted to %d roles", ErrPermissionInUse, name, granting)
	}

	if err := e.store.DeletePermission(ctx, tenantID, name); err != nil {
		return fmt.Errorf("bastion: remove permission: %w", err)
	}

	e.invalidateTenant(ctx, tenantID)
	e.audit(ctx, tenantID, auditlog.ActionPermRemoved, "", "", name)
	if e.plugins != nil {
		e.plugins.EmitPermissionRemoved(ctx, tenantID, name)
	}
	return nil
}

// GetPermission returns a single catalog entry by name.
func (e *Engine) GetPermission(ctx context.Context, name string) (*permission.Permission, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	p, err := e.store.GetPermissionByName(ctx, tenantID, name)
	if err != nil {
		if errors.Is(err, permission.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionNotFound, name)
		}
		return nil, fmt.Errorf("bastion: get permission: %w", err)
	}
	return p, nil
}

// ListPermissions returns the tenant's catalog ordered by resource then
// action, optionally filtered by resource.
func (e *Engine) ListPermissions(ctx context.Context, resource string) ([]*permission.Permission, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	perms, err := e.store.ListPermissions(ctx, &permission.ListFilter{
		TenantID: tenantID,
		Resource: resource,
	})
	if err != nil {
		return nil, fmt.Errorf("bastion: list permissions: %w", err)
	}
	return perms, nil
}
