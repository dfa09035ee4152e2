// Package extension provides a Forge extension entry point for Bastion.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/bastion"
	"github.com/xraph/bastion/api"
	"github.com/xraph/bastion/plugin"
	"github.com/xraph/bastion/store"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "bastion"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Multi-tenant RBAC engine (roles, permissions, inheritance, audit)"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Bastion as a Forge extension.
type Extension struct {
	config     Config
	eng        *bastion.Engine
	apiHandler *api.API
	logger     *slog.Logger
	engineOpts []bastion.Option
	plugins    []plugin.Plugin
}

// New creates a Bastion Forge extension with the given options.
func New(opts ...ExtOption) *Extension {
	e := &Extension{config: DefaultConfig()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the extension name.
func (e *Extension) Name() string { return ExtensionName }

// Description returns the extension description.
func (e *Extension) Description() string { return ExtensionDescription }

// Version returns the extension version.
func (e *Extension) Version() string { return ExtensionVersion }

// Dependencies returns the list of extension names this extension depends on.
func (e *Extension) Dependencies() []string { return []string{} }

// Engine returns the underlying Bastion engine.
func (e *Extension) Engine() *bastion.Engine { return e.eng }

// API returns the API handler.
func (e *Extension) API() *api.API { return e.apiHandler }

// Register implements [forge.Extension]. It initializes the engine,
// registers it in the DI container, and optionally registers HTTP routes.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.init(fapp); err != nil {
		return err
	}

	// Register the engine in the DI container.
	if err := vessel.Provide(fapp.Container(), func() (*bastion.Engine, error) {
		return e.eng, nil
	}); err != nil {
		return fmt.Errorf("bastion: register engine in container: %w", err)
	}

	return nil
}

func (e *Extension) init(fapp forge.App) error {
	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := make([]bastion.Option, 0, len(e.engineOpts)+len(e.plugins)+2)
	opts = append(opts, bastion.WithLogger(logger))

	if e.config.MaxInheritanceDepth > 0 {
		cfg := bastion.DefaultConfig()
		cfg.MaxInheritanceDepth = e.config.MaxInheritanceDepth
		opts = append(opts, bastion.WithConfig(cfg))
	}

	// Try to resolve store from DI container, fall back to option-provided store.
	if s, err := forge.Inject[store.Store](fapp.Container()); err == nil {
		opts = append(opts, bastion.WithStore(s))
	}

	// Append user-provided options (may override store and config).
	opts = append(opts, e.engineOpts...)

	for _, x := range e.plugins {
		opts = append(opts, bastion.WithPlugin(x))
	}

	eng, err := bastion.NewEngine(opts...)
	if err != nil {
		return fmt.Errorf("bastion: create engine: %w", err)
	}
	e.eng = eng

	e.apiHandler = api.New(eng, fapp.Router())

	if !e.config.DisableRoutes {
		if err := e.apiHandler.RegisterRoutes(fapp.Router()); err != nil {
			return fmt.Errorf("bastion: register routes: %w", err)
		}
	}

	return nil
}

// Start begins the engine, runs migrations, and applies the default seed
// when configured.
func (e *Extension) Start(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("bastion: extension not initialized")
	}

	if !e.config.DisableMigrate {
		s := e.eng.Store()
		if s != nil {
			if err := s.Migrate(ctx); err != nil {
				return fmt.Errorf("bastion: migration failed: %w", err)
			}
		}
	}

	if e.config.SeedDefaults {
		seed := bastion.DefaultSeed()
		for _, tenantID := range e.config.SeedTenants {
			if err := e.eng.Seed(bastion.WithTenant(ctx, tenantID), seed); err != nil {
				return fmt.Errorf("bastion: seed tenant %s: %w", tenantID, err)
			}
		}
	}

	return e.eng.Start(ctx)
}

// Stop gracefully shuts down the engine.
func (e *Extension) Stop(ctx context.Context) error {
	if e.eng == nil {
		return nil
	}
	return e.eng.Stop(ctx)
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("bastion: extension not initialized")
	}
	s := e.eng.Store()
	if s == nil {
		return errors.New("bastion: no store configured")
	}
	return s.Ping(ctx)
}

// Handler returns the HTTP handler for all API routes.
func (e *Extension) Handler() http.Handler {
	if e.apiHandler == nil {
		return http.NotFoundHandler()
	}
	return e.apiHandler.Handler()
}

// RegisterRoutes registers all bastion API routes into a Forge router.
func (e *Extension) RegisterRoutes(router forge.Router) error {
	if e.apiHandler != nil {
		return e.apiHandler.RegisterRoutes(router)
	}
	return nil
}
