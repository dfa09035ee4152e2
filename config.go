package bastion

import "time"

// DeletePolicy controls what happens to user-role assignments when a role
// is deleted.
type DeletePolicy string

const (
	// DeleteCascade removes all assignments referencing the deleted role.
	DeleteCascade DeletePolicy = "cascade"

	// DeleteRestrict rejects deletion while any user still holds the role.
	DeleteRestrict DeletePolicy = "restrict"
)

// Config holds configuration for the Bastion engine.
type Config struct {
	// MaxInheritanceDepth is the maximum length of a role inheritance chain
	// the resolver will walk. Defaults to 10.
	MaxInheritanceDepth int `json:"max_inheritance_depth,omitempty"`

	// CacheTTL is the time-to-live for cached effective permission sets.
	// Zero means no caching even when a cache is configured.
	CacheTTL time.Duration `json:"cache_ttl,omitempty"`

	// DeletePolicy controls assignment handling on role deletion.
	// Defaults to DeleteCascade.
	DeletePolicy DeletePolicy `json:"delete_policy,omitempty"`

	// DisableAudit turns off audit log writes for mutations.
	DisableAudit bool `json:"disable_audit,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxInheritanceDepth: 10,
		CacheTTL:            time.Minute,
		DeletePolicy:        DeleteCascade,
	}
}

func (c Config) deletePolicy() DeletePolicy {
	if c.DeletePolicy == DeleteRestrict {
		return DeleteRestrict
	}
	return DeleteCascade
}
