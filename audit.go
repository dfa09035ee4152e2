package bastion

import (
	"context"
	"fmt"

	"github.com/xraph/bastion/auditlog"
)

// AuditEntries returns the tenant's audit entries matching the filter,
// newest first, together with the total match count. The filter's TenantID
// is always overwritten with the caller's tenant scope.
func (e *Engine) AuditEntries(ctx context.Context, filter *auditlog.QueryFilter) ([]*auditlog.Entry, int64, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, 0, err
	}
	if filter == nil {
		filter = &auditlog.QueryFilter{}
	}
	filter.TenantID = tenantID

	entries, err := e.store.ListAuditEntries(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("bastion: list audit entries: %w", err)
	}
	total, err := e.store.CountAuditEntries(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("bastion: count audit entries: %w", err)
	}
	return entries, total, nil
}
