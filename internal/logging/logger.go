// Package logging provides structured logging for NetGuard-AI.
// It wraps the standard library slog package with pipeline-specific
// defaults and convenience functions.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/arjitrawat15/NetGuard-AI/internal/models"
)

// Level represents log levels
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Logger is the NetGuard-AI structured logger
type Logger struct {
	*slog.Logger
	level  *slog.LevelVar
	output io.Writer
}

// Config holds logger configuration
type Config struct {
	// Level is the minimum log level
	Level Level

	// Output is the log output destination
	Output io.Writer

	// Format is the log format ("json" or "text")
	Format string

	// AddSource adds source file and line to log entries
	AddSource bool
}

// DefaultConfig returns default logger configuration
func DefaultConfig() *Config {
	return &Config{
		Level:  LevelInfo,
		Output: os.Stderr,
		Format: "text",
	}
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Init initializes the default logger
func Init(cfg *Config) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	levelVar := &slog.LevelVar{}
	levelVar.Set(cfg.Level)

	opts := &slog.HandlerOptions{
		Level:     levelVar,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		handler = slog.NewTextHandler(cfg.Output, opts)
	}

	defaultLogger = &Logger{
		Logger: slog.New(handler),
		level:  levelVar,
		output: cfg.Output,
	}

	slog.SetDefault(defaultLogger.Logger)
}

// Default returns the default logger, initializing if necessary
func Default() *Logger {
	once.Do(func() {
		if defaultLogger == nil {
			Init(nil)
		}
	})
	return defaultLogger
}

// SetLevel changes the log level at runtime
func (l *Logger) SetLevel(level Level) {
	l.level.Set(level)
}

// WithComponent returns a logger with a component field
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", name),
		level:  l.level,
		output: l.output,
	}
}

// =============================================================================
// Convenience Functions (use default logger)
// =============================================================================

// Debug logs at debug level
func Debug(msg string, args ...any) {
	Default().Debug(msg, args...)
}

// Info logs at info level
func Info(msg string, args ...any) {
	Default().Info(msg, args...)
}

// Warn logs at warn level
func Warn(msg string, args ...any) {
	Default().Warn(msg, args...)
}

// Error logs at error level
func Error(msg string, args ...any) {
	Default().Error(msg, args...)
}

// =============================================================================
// Specialized Loggers for Pipeline Components
// =============================================================================

// GeneratorLogger returns a logger for the packet source
func GeneratorLogger() *Logger {
	return Default().WithComponent("generator")
}

// ClassifierLogger returns a logger for the classifier adapter
func ClassifierLogger() *Logger {
	return Default().WithComponent("classifier")
}

// AnalyzerLogger returns a logger for the analyzer loop
func AnalyzerLogger() *Logger {
	return Default().WithComponent("analyzer")
}

// StoreLogger returns a logger for the event log store
func StoreLogger() *Logger {
	return Default().WithComponent("store")
}

// APILogger returns a logger for the dashboard API
func APILogger() *Logger {
	return Default().WithComponent("api")
}

// =============================================================================
// Structured Field Helpers
// =============================================================================

// Packet returns log attributes for a packet record
func Packet(r *models.PacketRecord) slog.Attr {
	return slog.Group("packet",
		slog.String("src_ip", r.SrcIP.String()),
		slog.String("dst_ip", r.DstIP.String()),
		slog.Int("src_port", int(r.SrcPort)),
		slog.Int("dst_port", int(r.DstPort)),
		slog.String("protocol", r.Protocol),
		slog.Int("length", int(r.Length)),
	)
}

// Threat returns log attributes for a threat event
func Threat(t *models.ThreatEvent) slog.Attr {
	return slog.Group("threat",
		slog.String("label", string(t.Label)),
		slog.Float64("confidence", t.Confidence),
		slog.String("severity", string(t.Severity)),
	)
}

// Err returns a log attribute for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}

// Count returns a log attribute for a count
func Count(name string, n int64) slog.Attr {
	return slog.Int64(name, n)
}

// Duration returns a log attribute for a duration
func Duration(name string, d time.Duration) slog.Attr {
	return slog.Duration(name, d)
}
