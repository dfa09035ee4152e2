package bastion

import "context"

// Cache provides caching for resolved effective permission sets.
// Effective sets are recomputed on every read path; a cache keyed by
// (tenant, user) keeps the hot path cheap. The engine invalidates entries
// on every mutation that can change a user's effective set.
type Cache interface {
	// GetEffective returns a cached effective permission set, if available.
	GetEffective(ctx context.Context, tenantID, userID string) (PermissionSet, bool)

	// SetEffective stores an effective permission set in the cache.
	SetEffective(ctx context.Context, tenantID, userID string, set PermissionSet)

	// InvalidateTenant removes all cached sets for a tenant.
	InvalidateTenant(ctx context.Context, tenantID string)

	// InvalidateUser removes the cached set for a specific user.
	InvalidateUser(ctx context.Context, tenantID, userID string)
}
