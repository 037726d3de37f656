// Package config loads the framework properties resource and overlays the
// environment on it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Property keys read from the configuration resource.
const (
	KeyAppName         = "app.name"
	KeyAppEnv          = "app.env"
	KeyAppDebug        = "app.debug"
	KeyServerPort      = "server.port"
	KeyContextPath     = "server.context_path"
	KeyScanPackage     = "scan.package"
	KeyRouteCumulative = "route.cumulative"
	KeyMetricsPath     = "metrics.path"
	KeyTracingEndpoint = "tracing.endpoint"
	KeyTracingInsecure = "tracing.insecure"
	KeyTracingRatio    = "tracing.sample_ratio"
)

var (
	// ErrEmptyProperties is returned when the resource holds no keys.
	ErrEmptyProperties = errors.New("config: properties resource is empty")
	// ErrInvalid wraps struct validation failures.
	ErrInvalid = errors.New("config: invalid configuration")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("port", validPort); err != nil {
		panic(err)
	}
	return v
}

// validPort accepts the TCP ports a server can be configured to bind.
func validPort(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Field().String())
	return err == nil && n >= 1 && n <= 65535
}

// Config is the central typed configuration struct.
type Config struct {
	App     AppConfig
	Server  ServerConfig
	Scan    ScanConfig
	Route   RouteConfig
	Metrics MetricsConfig
	Tracing TracingConfig

	// Properties holds every key of the resource, flattened.
	Properties map[string]string
	// Location is the resource the configuration came from.
	Location string
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
}

type ServerConfig struct {
	Port        string `validate:"required,number,port"`
	ContextPath string
}

type ScanConfig struct {
	// Package is the root namespace the scanner walks.
	Package string `validate:"required"`
}

type RouteConfig struct {
	// Cumulative makes each method path extend the previous one.
	Cumulative bool
}

type MetricsConfig struct {
	// Path serves Prometheus metrics; empty disables the endpoint.
	Path string
}

type TracingConfig struct {
	// Endpoint is the OTLP/gRPC collector; empty disables export.
	Endpoint    string
	Insecure    bool
	SampleRatio float64 `validate:"gte=0,lte=1"`
}

// Default returns the configuration used when no resource value or
// environment variable says otherwise. Its scan package is empty, so it
// does not validate on its own.
func Default() *Config {
	return &Config{
		App:     AppConfig{Name: "go-mvc", Env: "local"},
		Server:  ServerConfig{Port: "8080"},
		Metrics: MetricsConfig{Path: "/metrics"},
		Tracing: TracingConfig{SampleRatio: 1},
	}
}

// Load reads the properties resource at location, overlays .env files
// (if present) and the APP_* environment, and validates the result.
//
// Precedence, lowest first: defaults, the resource, the environment.
//
//	cfg, err := config.Load("application.properties")
func Load(location string, envFiles ...string) (*Config, error) {
	props, err := ReadProperties(location)
	if err != nil {
		return nil, err
	}
	if len(props) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyProperties, location)
	}

	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	p := properties(props)
	def := Default()
	metricsPath, ok := props[KeyMetricsPath]
	if !ok {
		metricsPath = def.Metrics.Path
	}

	cfg := &Config{
		App: AppConfig{
			Name:  env("APP_NAME", p.get(KeyAppName, def.App.Name)),
			Env:   env("APP_ENV", p.get(KeyAppEnv, def.App.Env)),
			Debug: envBool("APP_DEBUG", p.getBool(KeyAppDebug, def.App.Debug)),
		},
		Server: ServerConfig{
			Port:        env("APP_PORT", p.get(KeyServerPort, def.Server.Port)),
			ContextPath: p.get(KeyContextPath, ""),
		},
		Scan: ScanConfig{
			Package: strings.TrimSpace(env("SCAN_PACKAGE", p.get(KeyScanPackage, ""))),
		},
		Route: RouteConfig{
			Cumulative: p.getBool(KeyRouteCumulative, false),
		},
		Metrics: MetricsConfig{Path: strings.TrimSpace(metricsPath)},
		Tracing: TracingConfig{
			Endpoint:    env("OTEL_EXPORTER_OTLP_ENDPOINT", p.get(KeyTracingEndpoint, "")),
			Insecure:    p.getBool(KeyTracingInsecure, def.Tracing.Insecure),
			SampleRatio: p.getFloat(KeyTracingRatio, def.Tracing.SampleRatio),
		},
		Properties: props,
		Location:   location,
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, formatValidationError(err)
	}
	return cfg, nil
}

// Property returns the raw resource value of key, falling back to
// defaultVal.
func (c *Config) Property(key, defaultVal string) string {
	return properties(c.Properties).get(key, defaultVal)
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

type properties map[string]string

func (p properties) get(key, fallback string) string {
	if v, ok := p[key]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func (p properties) getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(p.get(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

func (p properties) getFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(p.get(key, ""), 64)
	if err != nil {
		return fallback
	}
	return f
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// formatValidationError turns validator errors into one readable error.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Namespace())
	field = strings.TrimPrefix(field, "config.")

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "number":
		return fmt.Sprintf("%s must be numeric", field)
	case "port":
		return fmt.Sprintf("%s must be between 1 and 65535", field)
	case "gte", "lte":
		return fmt.Sprintf("%s must be between 0 and 1", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
