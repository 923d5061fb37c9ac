// Package logging builds the process zap logger.
package logging

import (
	"os"
	"strings"

	"github.com/roadrunner-server/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	EnvLogLevel  = "XEDGE_LOG_LEVEL"
	EnvLogFormat = "XEDGE_LOG_FORMAT"
)

type Config struct {
	// Level is one of debug, info, warn, error, default - info
	Level string
	// Format is console or json, default - console
	Format string
}

// Logger hands out named child loggers of the root logger.
type Logger struct {
	base *zap.Logger
}

// New builds the root logger, the environment overrides the config values.
func New(cfg Config) (*Logger, error) {
	const op = errors.Op("logging_new")
	applyEnvOverrides(&cfg)

	lvl, ok := parseLevel(cfg.Level)
	if !ok {
		return nil, errors.E(op, errors.Errorf("unknown log level: %q", cfg.Level))
	}

	var zc zap.Config
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "console":
		zc = zap.NewDevelopmentConfig()
		zc.Development = false
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case "json":
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return nil, errors.E(op, errors.Errorf("unknown log format: %q", cfg.Format))
	}

	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.DisableStacktrace = true

	base, err := zc.Build()
	if err != nil {
		return nil, errors.E(op, err)
	}

	return &Logger{base: base}, nil
}

// NewFromZap wraps an existing logger, used by tests.
func NewFromZap(log *zap.Logger) *Logger {
	return &Logger{base: log}
}

func (l *Logger) NamedLogger(name string) *zap.Logger {
	return l.base.Named(name)
}

func (l *Logger) Sync() error {
	return l.base.Sync()
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Format = v
	}
}

func parseLevel(raw string) (zapcore.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return zapcore.InfoLevel, true
	case "debug", "trace":
		return zapcore.DebugLevel, true
	case "warn", "warning":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}
