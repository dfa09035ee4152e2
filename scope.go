package bastion

import (
	"context"

	"github.com/xraph/forge"
)

// tenantFromContext extracts the tenant scope from forge.Scope or the
// standalone context. Returns ErrTenantScopeMissing when neither is set;
// no operation may proceed without an explicit tenant.
func tenantFromContext(ctx context.Context) (string, error) {
	if s, ok := forge.ScopeFrom(ctx); ok {
		if org := s.OrgID(); org != "" {
			return org, nil
		}
	}
	if tenantID := tenantIDFromContext(ctx); tenantID != "" {
		return tenantID, nil
	}
	return "", ErrTenantScopeMissing
}
