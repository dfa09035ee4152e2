package auditlog

import (
	"context"
	"time"

	"github.com/xraph/bastion/id"
)

// Store defines persistence operations for audit log entries.
type Store interface {
	// CreateAuditEntry persists a new audit entry.
	CreateAuditEntry(ctx context.Context, e *Entry) error

	// GetAuditEntry retrieves an audit entry by ID.
	GetAuditEntry(ctx context.Context, entryID id.AuditEntryID) (*Entry, error)

	// ListAuditEntries returns audit entries matching the filter, newest
	// first.
	ListAuditEntries(ctx context.Context, filter *QueryFilter) ([]*Entry, error)

	// CountAuditEntries returns the number of entries matching the filter.
	CountAuditEntries(ctx context.Context, filter *QueryFilter) (int64, error)

	// PurgeAuditEntries removes audit entries older than the given time.
	PurgeAuditEntries(ctx context.Context, before time.Time) (int64, error)

	// DeleteAuditEntriesByTenant removes all audit entries for a tenant.
	DeleteAuditEntriesByTenant(ctx context.Context, tenantID string) error
}
