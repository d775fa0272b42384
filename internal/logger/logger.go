// Package logger provides structured logging for the lead-harvester service.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the interface for structured logging.
type Logger interface {
	// Debug logs a message at debug level.
	Debug(msg string, fields ...Field)

	// Info logs a message at info level.
	Info(msg string, fields ...Field)

	// Warn logs a message at warning level.
	Warn(msg string, fields ...Field)

	// Error logs a message at error level.
	Error(msg string, fields ...Field)

	// With returns a new logger with the given fields attached to all
	// subsequent entries.
	With(fields ...Field) Logger

	// Sync flushes any buffered log entries. Applications should call Sync
	// before exiting.
	Sync() error
}

// Config holds logger construction settings.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string

	// Format is "json" or "console".
	Format string

	// Development enables colorized console output and debug-friendly
	// formatting.
	Development bool
}

type zapLogger struct {
	logger *zap.Logger
}

func (l *zapLogger) Debug(msg string, fields ...Field) {
	l.logger.Debug(msg, fields...)
}

func (l *zapLogger) Info(msg string, fields ...Field) {
	l.logger.Info(msg, fields...)
}

func (l *zapLogger) Warn(msg string, fields ...Field) {
	l.logger.Warn(msg, fields...)
}

func (l *zapLogger) Error(msg string, fields ...Field) {
	l.logger.Error(msg, fields...)
}

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{logger: l.logger.With(fields...)}
}

func (l *zapLogger) Sync() error {
	return l.logger.Sync()
}

var logLevels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// New creates a Logger from the given config.
func New(cfg Config) (Logger, error) {
	level, ok := logLevels[cfg.Level]
	if !ok {
		if cfg.Level == "" {
			level = zapcore.InfoLevel
		} else {
			return nil, fmt.Errorf("invalid log level: %q", cfg.Level)
		}
	}

	var zapCfg zap.Config
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zapCfg.Sampling = nil
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	if cfg.Format == "console" {
		zapCfg.Encoding = "console"
	} else {
		zapCfg.Encoding = "json"
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	z, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return &zapLogger{logger: z}, nil
}

// NewNop returns a no-op logger that discards all entries. Useful in tests.
func NewNop() Logger {
	return &zapLogger{logger: zap.NewNop()}
}
