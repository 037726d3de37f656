// Package metrics exposes Prometheus collectors for the boot pipeline and
// for request dispatch.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "mvc").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for dispatch duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) { c.Namespace = namespace }
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) { c.Subsystem = subsystem }
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) { c.ConstLabels = labels }
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) { c.Buckets = buckets }
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) { c.Registry = registry }
}

func defaultConfig() Config {
	return Config{
		Namespace: "mvc",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector holds the framework metrics. A nil *Collector is valid and
// records nothing.
type Collector struct {
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	beans      prometheus.Gauge
	routes     prometheus.Gauge
	bootErrors *prometheus.CounterVec
}

// New registers the collectors.
//
// Metrics collected:
//   - mvc_dispatch_total: requests by outcome
//   - mvc_dispatch_duration_seconds: dispatch latency by outcome
//   - mvc_beans: registered lookup keys after boot
//   - mvc_routes: compiled routes after boot
//   - mvc_boot_errors_total: isolated boot failures by stage
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Collector{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatch_total",
			Help:        "Total number of dispatched requests by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatch_duration_seconds",
			Help:        "Dispatch duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"outcome"}),

		beans: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "beans",
			Help:        "Number of registered bean lookup keys",
			ConstLabels: config.ConstLabels,
		}),

		routes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "routes",
			Help:        "Number of compiled routes",
			ConstLabels: config.ConstLabels,
		}),

		bootErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "boot_errors_total",
			Help:        "Total number of isolated boot failures by stage",
			ConstLabels: config.ConstLabels,
		}, []string{"stage"}),
	}
}

// ObserveDispatch records one request.
func (c *Collector) ObserveDispatch(outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(outcome).Inc()
	c.duration.WithLabelValues(outcome).Observe(d.Seconds())
}

// SetBeans records the registry size.
func (c *Collector) SetBeans(n int) {
	if c == nil {
		return
	}
	c.beans.Set(float64(n))
}

// SetRoutes records the route table size.
func (c *Collector) SetRoutes(n int) {
	if c == nil {
		return
	}
	c.routes.Set(float64(n))
}

// BootError counts a failure isolated during the given boot stage.
func (c *Collector) BootError(stage string) {
	if c == nil {
		return
	}
	c.bootErrors.WithLabelValues(stage).Inc()
}

// Handler serves the metrics gathered by g.
//
//	router.Get("/metrics", metrics.Handler(registry))
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
