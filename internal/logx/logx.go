// Package logx provides structured logging functionality
package logx

import (
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger to provide a consistent interface
type Logger struct {
	zap   *zap.Logger
	sugar *zap.SugaredLogger
}

var globalLogger *Logger

func init() {
	globalLogger = build(defaultLevel(), "console")
}

func defaultLevel() zapcore.Level {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "local" || appEnv == "dev" || appEnv == "development" {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
}

func loggerConfig(level zapcore.Level, format string) zap.Config {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.Sampling = nil
	config.EncoderConfig = zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	switch strings.ToLower(format) {
	case "json":
		config.Encoding = "json"
		config.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	default:
		config.Encoding = "console"
	}
	return config
}

func build(level zapcore.Level, format string) *Logger {
	zapLogger, err := loggerConfig(level, format).Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	return &Logger{zap: zapLogger, sugar: zapLogger.Sugar()}
}

// Init reconfigures the global logger from config values.
func Init(level, format string) {
	globalLogger = build(parseLevel(level), format)
}

// GetScope returns a logger named after a subsystem; the scope shows up as
// the logger name in every entry.
func GetScope(scope string) *Logger {
	named := globalLogger.zap.Named(scope)
	return &Logger{zap: named, sugar: named.Sugar()}
}

// L returns the global sugar logger for key-value style logging.
func L() *zap.SugaredLogger {
	if globalLogger == nil {
		return nil
	}
	return globalLogger.sugar
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Sugar returns the sugar logger for key-value style logging
func (l *Logger) Sugar() *zap.SugaredLogger { return l.sugar }

// Zap returns the underlying zap logger for structured logging
func (l *Logger) Zap() *zap.Logger { return l.zap }

// Debug logs a debug message with structured fields
func (l *Logger) Debug(msg string, fields ...zap.Field) { l.zap.Debug(msg, fields...) }

// Info logs an info message with structured fields
func (l *Logger) Info(msg string, fields ...zap.Field) { l.zap.Info(msg, fields...) }

// Warn logs a warning message with structured fields
func (l *Logger) Warn(msg string, fields ...zap.Field) { l.zap.Warn(msg, fields...) }

// Error logs an error message with structured fields
func (l *Logger) Error(msg string, fields ...zap.Field) { l.zap.Error(msg, fields...) }
