// Package providers holds the service providers the application kernel
// registers before it scans for beans. Each one claims its keys first, so
// scanned beans inject the framework's own config, logger and metrics.
package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/config"
	"github.com/km-arc/go-mvc/framework/container"
	"github.com/km-arc/go-mvc/framework/metrics"
)

// Keys claimed by the framework providers.
const (
	KeyConfig    = "config"
	KeyLogger    = "logger"
	KeyCollector = "collector"
	KeyRegistry  = "registry"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the loaded configuration.
//
// Bound keys:
//   - "config" → *config.Config
type ConfigServiceProvider struct {
	container.BaseProvider
	Config *config.Config
}

func (p *ConfigServiceProvider) Register(c *container.Container) {
	if p.Config != nil {
		c.Provide(KeyConfig, p.Config)
	}
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider binds the application logger and reports the
// registry once it is frozen.
//
// Bound keys:
//   - "logger" → *zap.Logger
type LoggingServiceProvider struct {
	Logger *zap.Logger
}

func (p *LoggingServiceProvider) Register(c *container.Container) {
	if p.Logger != nil {
		c.Provide(KeyLogger, p.Logger)
	}
}

func (p *LoggingServiceProvider) Boot(c *container.Container) {
	if p.Logger == nil {
		return
	}
	p.Logger.Info("container booted",
		zap.Int("keys", c.Len()),
		zap.Int("beans", len(c.Beans())))
	p.Logger.Debug("container keys", zap.Strings("keys", c.Bindings()))
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider binds the framework collectors and the registry
// they are registered with, and records the bean count at boot.
//
// Bound keys:
//   - "collector" → *metrics.Collector
//   - "registry"  → *prometheus.Registry
type MetricsServiceProvider struct {
	Collector *metrics.Collector
	Registry  *prometheus.Registry
}

func (p *MetricsServiceProvider) Register(c *container.Container) {
	if p.Collector != nil {
		c.Provide(KeyCollector, p.Collector)
	}
	if p.Registry != nil {
		c.Provide(KeyRegistry, p.Registry)
	}
}

func (p *MetricsServiceProvider) Boot(c *container.Container) {
	p.Collector.SetBeans(c.Len())
}
