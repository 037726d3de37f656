// Package app is the application kernel: it loads configuration, runs the
// bean and route boot pipeline and serves the result over HTTP.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/config"
	"github.com/km-arc/go-mvc/framework/container"
	"github.com/km-arc/go-mvc/framework/dispatch"
	gohttp "github.com/km-arc/go-mvc/framework/http"
	"github.com/km-arc/go-mvc/framework/logging"
	"github.com/km-arc/go-mvc/framework/metrics"
	"github.com/km-arc/go-mvc/framework/providers"
	"github.com/km-arc/go-mvc/framework/routing"
	"github.com/km-arc/go-mvc/framework/scanner"
	"github.com/km-arc/go-mvc/framework/stereotype"
	"github.com/km-arc/go-mvc/framework/tracing"
)

// DefaultConfigLocation is the properties resource read when none is given.
const DefaultConfigLocation = "application.properties"

// Boot stages, as reported in logs and the boot error counter.
const (
	StageConfig      = "config"
	StageScan        = "scan"
	StageInstantiate = "instantiate"
	StageWire        = "wire"
	StageRoutes      = "routes"
	StageTracing     = "tracing"
)

// ShutdownTimeout bounds how long Run waits for in-flight requests.
const ShutdownTimeout = 10 * time.Second

// Application is the top-level application container.
// It embeds the bean Container and a ProviderRegistry so user code can
// call app.Lookup(), app.Register() directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	cfg      *config.Config
	cfgErr   error
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Collector
	tracer   trace.Tracer

	tracing    *tracing.Provider
	tracingErr error

	table  *routing.Table
	router *routing.Router
	booted bool
}

type options struct {
	location string
	envFiles []string
	cfg      *config.Config
	logger   *zap.Logger
	catalog  *stereotype.Catalog
	registry *prometheus.Registry
	tracer   trace.Tracer
}

// Option configures New.
type Option func(*options)

// WithConfigLocation sets the properties resource to load.
func WithConfigLocation(location string) Option {
	return func(o *options) { o.location = location }
}

// WithEnvFiles sets the .env files overlaid on the environment.
func WithEnvFiles(files ...string) Option {
	return func(o *options) { o.envFiles = files }
}

// WithConfig uses cfg as is instead of loading a resource.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithCatalog scans c instead of stereotype.Default.
func WithCatalog(c *stereotype.Catalog) Option {
	return func(o *options) { o.catalog = c }
}

// WithRegistry registers the framework metrics with r. By default each
// Application gets its own registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithTracer sets the tracer used by the dispatcher. It takes precedence
// over an OTLP exporter configured with tracing.endpoint.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// New loads the configuration, builds the logger and registers the
// framework providers. A configuration that fails to load is not fatal:
// the error is reported by Boot and the application serves with defaults
// and no routes.
func New(opts ...Option) *Application {
	o := options{location: DefaultConfigLocation}
	for _, opt := range opts {
		opt(&o)
	}

	cfg, cfgErr := o.cfg, error(nil)
	if cfg == nil {
		cfg, cfgErr = config.Load(o.location, o.envFiles...)
		if cfgErr != nil {
			cfg = config.Default()
		}
	}

	logger := o.logger
	if logger == nil {
		logger = logging.Must(cfg.App)
	}
	registry := o.registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	collector := metrics.New(metrics.WithRegistry(registry))

	c := container.New(o.catalog, container.WithLogger(logger))
	a := &Application{
		Container: c,
		Providers: container.NewProviderRegistry(c),
		cfg:       cfg,
		cfgErr:    cfgErr,
		logger:    logger,
		registry:  registry,
		metrics:   collector,
		tracer:    o.tracer,
	}

	if o.tracer == nil && cfg.Tracing.Endpoint != "" {
		a.tracing, a.tracingErr = tracing.New(context.Background(), tracing.Config{
			ServiceName: cfg.App.Name,
			Environment: cfg.App.Env,
			Endpoint:    cfg.Tracing.Endpoint,
			Insecure:    cfg.Tracing.Insecure,
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		a.tracing.Install()
	}

	a.Register(&providers.ConfigServiceProvider{Config: cfg})
	a.Register(&providers.LoggingServiceProvider{Logger: logger})
	a.Register(&providers.MetricsServiceProvider{Collector: collector, Registry: registry})
	return a
}

// Register adds a ServiceProvider to the application. Providers registered
// before Boot claim their keys ahead of scanned beans. After Boot the
// registry is frozen: the provider is still booted, and each binding it
// attempts is logged as rejected.
func (a *Application) Register(provider container.ServiceProvider) {
	a.Providers.Register(provider)
}

// Boot runs the startup pipeline:
//
//	scan → instantiate → wire → build routes → freeze → boot providers → mount
//
// Every stage isolates its failures: they are logged, counted, and joined
// into the returned error, and the pipeline continues with whatever did
// succeed. The application is servable after Boot whatever it returns.
// Calling Boot again is a no-op.
func (a *Application) Boot() error {
	if a.booted {
		return nil
	}
	a.booted = true

	var errs []error
	fail := func(stage string, err error) {
		if err == nil {
			return
		}
		a.logger.Error("boot stage failed", zap.String("stage", stage), zap.Error(err))
		a.metrics.BootError(stage)
		errs = append(errs, fmt.Errorf("%s: %w", stage, err))
	}

	fail(StageTracing, a.tracingErr)
	if a.cfgErr != nil {
		fail(StageConfig, a.cfgErr)
	} else {
		a.table = a.build(fail)
	}

	a.Freeze()
	a.Providers.Boot()
	a.metrics.SetRoutes(a.table.Len())

	a.router = a.mount()
	a.logger.Info("application booted",
		zap.String("env", a.cfg.App.Env),
		zap.Int("routes", a.table.Len()),
		zap.Int("errors", len(errs)))
	return errors.Join(errs...)
}

func (a *Application) build(fail func(string, error)) *routing.Table {
	ids, err := scanner.Scan(a.Catalog(), a.cfg.Scan.Package)
	if errors.Is(err, scanner.ErrNamespaceNotFound) {
		a.logger.Warn("nothing catalogued under scan package",
			zap.String("package", a.cfg.Scan.Package))
	} else {
		fail(StageScan, err)
	}

	fail(StageInstantiate, a.Instantiate(ids))
	fail(StageWire, a.Wire())

	table, err := routing.Build(a.Container,
		routing.WithLogger(a.logger),
		routing.WithCumulativePaths(a.cfg.Route.Cumulative),
	)
	fail(StageRoutes, err)
	return table
}

func (a *Application) mount() *routing.Router {
	opts := []dispatch.Option{
		dispatch.WithContextPath(a.cfg.Server.ContextPath),
		dispatch.WithLogger(a.logger),
		dispatch.WithMetrics(a.metrics),
	}
	if a.tracer != nil {
		opts = append(opts, dispatch.WithTracer(a.tracer))
	}

	router := routing.NewRouter(a.logger)
	if path := a.cfg.Metrics.Path; path != "" {
		router.Get(path, metrics.Handler(a.registry))
	}
	router.Fallback(dispatch.New(a.table, opts...))
	return router
}

// Handler boots the application if needed and returns the root handler.
func (a *Application) Handler() http.Handler {
	_ = a.Boot()
	return a.router
}

// Run boots the application (if needed) and serves HTTP on the configured
// port until ctx is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + a.cfg.Server.Port,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("server starting",
			zap.String("name", a.cfg.App.Name),
			zap.String("addr", srv.Addr),
			zap.String("context_path", a.cfg.Server.ContextPath))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("app: serve: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("app: shutdown: %w", err)
	}
	a.logger.Info("server stopped")
	return a.Close(shutdownCtx)
}

// Close flushes and stops the span exporter, if one is configured.
func (a *Application) Close(ctx context.Context) error {
	if err := a.tracing.Shutdown(ctx); err != nil {
		return fmt.Errorf("app: close tracing: %w", err)
	}
	return nil
}

// Config returns the active configuration.
func (a *Application) Config() *config.Config { return a.cfg }

// Logger returns the application logger.
func (a *Application) Logger() *zap.Logger { return a.logger }

// Table returns the route table. It is empty until Boot.
func (a *Application) Table() *routing.Table { return a.table }

// Gatherer returns the registry holding the framework metrics.
func (a *Application) Gatherer() prometheus.Gatherer { return a.registry }

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.cfg.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsDebug() bool       { return a.cfg.App.Debug }

// Controller is an embeddable base for controllers that prefer the
// framework wrappers to the raw request and response.
type Controller struct{}

func (c *Controller) Request(r *http.Request) *gohttp.Request {
	return gohttp.NewRequest(r)
}
func (c *Controller) Response(w http.ResponseWriter) *gohttp.Response {
	return gohttp.NewResponse(w)
}
