package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-mvc/framework/config"
)

// ── helpers ──────────────────────────────────────────────────────────────────

const noEnvFile = "testdata/absent.env"

// clearEnv blanks the APP_* overrides for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"APP_NAME", "APP_ENV", "APP_DEBUG", "APP_PORT", "SCAN_PACKAGE", "OTEL_EXPORTER_OTLP_ENDPOINT"} {
		t.Setenv(key, "") // automatically restored after test
	}
}

// unsetEnv removes key entirely so a .env file may set it.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// ── Load ─────────────────────────────────────────────────────────────────────

func TestLoad_Properties(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load("testdata/application.properties", noEnvFile)
	require.NoError(t, err)

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"App.Name", cfg.App.Name, "shop"},
		{"App.Env", cfg.App.Env, "local"},
		{"App.Debug", cfg.App.Debug, true},
		{"Server.Port", cfg.Server.Port, "9090"},
		{"Server.ContextPath", cfg.Server.ContextPath, "/shop"},
		{"Scan.Package", cfg.Scan.Package, "github.com/acme/shop/app"},
		{"Route.Cumulative", cfg.Route.Cumulative, false},
		{"Metrics.Path", cfg.Metrics.Path, ""},
		{"Location", cfg.Location, "testdata/application.properties"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}

	assert.Equal(t, "en", cfg.Property("greeting.locale", "fr"))
	assert.Equal(t, "fr", cfg.Property("greeting.missing", "fr"))
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load("testdata/application.yaml", noEnvFile)
	require.NoError(t, err)

	assert.Equal(t, "shop-yaml", cfg.App.Name)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "/api", cfg.Server.ContextPath)
	assert.Equal(t, "github.com/acme/shop/app", cfg.Scan.Package)
	assert.True(t, cfg.Route.Cumulative)
	assert.Equal(t, "/metrics", cfg.Metrics.Path, "absent key keeps the default")
	assert.Equal(t, "github.com/acme/shop/app", cfg.Properties["scan.package"])
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "min.properties", "scan.package=acme/app\n")

	cfg, err := config.Load(path, noEnvFile)
	require.NoError(t, err)

	assert.Equal(t, "go-mvc", cfg.App.Name)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Empty(t, cfg.Server.ContextPath)
	assert.False(t, cfg.App.Debug)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_EnvOverridesProperties(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_NAME", "MyApp")
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("APP_DEBUG", "false")

	cfg, err := config.Load("testdata/application.properties", noEnvFile)
	require.NoError(t, err)

	assert.Equal(t, "MyApp", cfg.App.Name)
	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.False(t, cfg.App.Debug)
}

func TestLoad_Tracing(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "trace.properties",
		"scan.package=acme/app\ntracing.endpoint=collector:4317\ntracing.insecure=true\ntracing.sample_ratio=0.25\n")

	cfg, err := config.Load(path, noEnvFile)
	require.NoError(t, err)
	assert.Equal(t, config.TracingConfig{Endpoint: "collector:4317", Insecure: true, SampleRatio: 0.25}, cfg.Tracing)

	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	cfg, err = config.Load(path, noEnvFile)
	require.NoError(t, err)
	assert.Equal(t, "otel:4317", cfg.Tracing.Endpoint)
}

func TestLoad_TracingDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Load("testdata/application.properties", noEnvFile)
	require.NoError(t, err)

	assert.Empty(t, cfg.Tracing.Endpoint)
	assert.InDelta(t, 1.0, cfg.Tracing.SampleRatio, 0)
}

func TestLoad_DotEnvOverlay(t *testing.T) {
	clearEnv(t)
	unsetEnv(t, "APP_NAME")

	cfg, err := config.Load("testdata/application.properties", "testdata/override.env")
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.App.Name)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name     string
		location string
		errIs    error
		contains string
	}{
		{"empty", "testdata/empty.properties", config.ErrEmptyProperties, ""},
		{"missing scan.package", "testdata/no-scan.properties", config.ErrInvalid, "scan.package is required"},
		{"non numeric port", "testdata/bad-port.properties", config.ErrInvalid, "server.port must be numeric"},
		{"sample ratio out of range", "testdata/bad-ratio.properties", config.ErrInvalid, "tracing.sampleratio must be between 0 and 1"},
		{"unsupported format", "testdata/application.toml", config.ErrUnsupportedFormat, ""},
		{"missing file", "testdata/absent.properties", os.ErrNotExist, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load(tt.location, noEnvFile)
			assert.Nil(t, cfg)
			require.ErrorIs(t, err, tt.errIs)
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestLoad_RejectsInvalidPorts(t *testing.T) {
	tests := []struct {
		port     string
		contains string
	}{
		{"80.5", "server.port must be numeric"},
		{"-1", "server.port must be numeric"},
		{"+80", "server.port must be numeric"},
		{"0", "server.port must be between 1 and 65535"},
		{"70000", "server.port must be between 1 and 65535"},
	}
	for _, tt := range tests {
		t.Run(tt.port, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("APP_PORT", tt.port)

			cfg, err := config.Load("testdata/application.properties", noEnvFile)
			assert.Nil(t, cfg)
			require.ErrorIs(t, err, config.ErrInvalid)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

// ── Loaders ──────────────────────────────────────────────────────────────────

func TestReadProperties_YAMLFlattening(t *testing.T) {
	path := writeFile(t, "nested.yml", "a:\n  b:\n    c: 1\n  d: x\ne: null\n")

	props, err := config.ReadProperties(path)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"a.b.c": "1", "a.d": "x", "e": ""}, props)
}

func TestReadProperties_EmptyYAML(t *testing.T) {
	props, err := config.ReadProperties(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Empty(t, props)
}

func TestReadProperties_Comments(t *testing.T) {
	path := writeFile(t, "c.properties", "# comment\nscan.package=acme/app\n\n# another\n")

	props, err := config.ReadProperties(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"scan.package": "acme/app"}, props)
}

// ── Env helpers ──────────────────────────────────────────────────────────────

func TestGet_Fallback(t *testing.T) {
	t.Setenv("MVC_CONFIG", "")
	assert.Equal(t, "application.properties", config.Get("MVC_CONFIG", "application.properties"))

	t.Setenv("MVC_CONFIG", "conf/app.yaml")
	assert.Equal(t, "conf/app.yaml", config.Get("MVC_CONFIG", "application.properties"))
}

func TestGetBool(t *testing.T) {
	tests := []struct {
		val      string
		fallback bool
		want     bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"false", true, false},
		{"0", true, false},
		{"", true, true},
		{"garbage", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.val, func(t *testing.T) {
			t.Setenv("MY_BOOL", tt.val)
			assert.Equal(t, tt.want, config.GetBool("MY_BOOL", tt.fallback))
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, "go-mvc", cfg.App.Name)
	assert.Equal(t, "local", cfg.App.Env)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Empty(t, cfg.Scan.Package)
}
