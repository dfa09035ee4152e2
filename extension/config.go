package extension

// Config holds the Bastion extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.bastion" or "bastion" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// SeedDefaults applies the built-in default seed (admin/member/viewer
	// roles plus the base catalog) on start for the tenants listed in
	// SeedTenants.
	SeedDefaults bool `json:"seed_defaults" mapstructure:"seed_defaults" yaml:"seed_defaults"`

	// SeedTenants lists the tenant IDs to seed on start.
	SeedTenants []string `json:"seed_tenants" mapstructure:"seed_tenants" yaml:"seed_tenants"`

	// MaxInheritanceDepth controls the maximum role inheritance chain
	// length the resolver will walk.
	MaxInheritanceDepth int `json:"max_inheritance_depth" mapstructure:"max_inheritance_depth" yaml:"max_inheritance_depth"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxInheritanceDepth: 10,
	}
}
