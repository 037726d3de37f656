// Package logging builds the framework's zap logger.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/km-arc/go-mvc/framework/config"
)

// New builds a logger for app. Production environments get JSON at info
// level with sampling; everything else gets console output, at debug level
// when app.Debug is set.
func New(app config.AppConfig) (*zap.Logger, error) {
	var cfg zap.Config

	if app.Env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.Sampling = &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		}
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if !app.Debug {
			cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		}
	}
	if app.Debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build(zap.AddStacktrace(zap.ErrorLevel))
	if err != nil {
		return nil, err
	}
	if app.Name != "" {
		logger = logger.With(zap.String("app", app.Name))
	}
	return logger, nil
}

// Must is like New but falls back to a no-op logger on error.
func Must(app config.AppConfig) *zap.Logger {
	logger, err := New(app)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
