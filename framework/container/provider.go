package container

import (
	"maps"
	"slices"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider contributes pre-built instances to the container.
//
// Register runs as soon as the provider is added, which is before the
// catalog is scanned, so the keys a provider claims win over any scanned
// bean deriving the same key. Boot runs once the container is wired, the
// route table is built and the registry is frozen.
//
//	type LoggingProvider struct {
//	    container.BaseProvider
//	    Logger *zap.Logger
//	}
//
//	func (p *LoggingProvider) Register(c *container.Container) {
//	    c.Provide("logger", p.Logger) // beans with `Logger *zap.Logger `inject:""`` get it
//	}
type ServiceProvider interface {
	// Register adds instances to the container. The registry is still
	// in its build phase.
	Register(c *Container)

	// Boot is called after the registry is frozen. Lookups are safe;
	// registration fails with ErrFrozen.
	Boot(c *Container)
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct with a no-op Boot.
//
//	type MyProvider struct{ container.BaseProvider }
//	func (p *MyProvider) Register(c *container.Container) { ... }
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) {}

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders.
type ProviderRegistry struct {
	app        *Container
	providers  []ServiceProvider
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register method. Adding the same
// provider twice is a no-op.
func (r *ProviderRegistry) Register(provider ServiceProvider) {
	if r.registered[provider] {
		return
	}
	r.registered[provider] = true

	provider.Register(r.app)
	r.providers = append(r.providers, provider)

	// If already booted, boot this provider immediately
	if r.booted {
		provider.Boot(r.app)
	}
}

// Boot calls Boot on every provider, in registration order.
func (r *ProviderRegistry) Boot() {
	if r.booted {
		return
	}
	r.booted = true
	for _, provider := range r.providers {
		provider.Boot(r.app)
	}
}

// Booted returns true if Boot has been called.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns all registered providers.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.providers }

// ── InstanceProvider ──────────────────────────────────────────────────────────

// InstanceProvider registers a fixed set of keyed instances.
//
//	reg.Register(&container.InstanceProvider{Instances: map[string]any{"clock": clock}})
//
// Keys are inserted in sorted order so collisions resolve the same way on
// every run.
type InstanceProvider struct {
	BaseProvider
	Instances map[string]any
}

func (p *InstanceProvider) Register(c *Container) {
	for _, key := range slices.Sorted(maps.Keys(p.Instances)) {
		c.Provide(key, p.Instances[key])
	}
}
