package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides a unified logging interface for the tutor service.
// The package-level functions delegate to a zap SugaredLogger that is
// swapped by Init, UseDevelopment or UseNop.

// LogLevel represents log severity levels
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu    sync.RWMutex
	base  = zap.NewNop()
	sugar = base.Sugar()

	// atomicLevel backs CurrentLevel for loggers built by Init.
	atomicLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Options controls how Init builds the zap logger.
type Options struct {
	Level       string // debug, info, warn, error
	Development bool   // console encoder with caller info
}

// Init builds the process-wide logger. It is safe to call more than once.
func Init(opts Options) error {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return err
	}
	atomicLevel.SetLevel(toZap(lvl))

	var cfg zap.Config
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = atomicLevel
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("build zap logger: %w", err)
	}
	replace(l)
	return nil
}

// UseDevelopment switches to a development console logger at debug level.
func UseDevelopment() {
	atomicLevel.SetLevel(zapcore.DebugLevel)
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = atomicLevel
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return
	}
	replace(l)
}

// UseNop silences all output (useful for tests)
func UseNop() {
	replace(zap.NewNop())
}

// UseLogger installs l, e.g. an observer core in tests.
func UseLogger(l *zap.Logger) {
	replace(l.WithOptions(zap.AddCallerSkip(1)))
}

// Sync flushes buffered entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}

// Zap exposes the underlying logger for libraries that take a *zap.Logger.
func Zap() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func replace(l *zap.Logger) {
	mu.Lock()
	base = l
	sugar = l.Sugar()
	mu.Unlock()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// Debugf logs a debug message
func Debugf(format string, args ...interface{}) {
	current().Debugf(format, args...)
}

// Infof logs an info message
func Infof(format string, args ...interface{}) {
	current().Infof(format, args...)
}

// Warnf logs a warning message
func Warnf(format string, args ...interface{}) {
	current().Warnf(format, args...)
}

// Errorf logs an error message
func Errorf(format string, args ...interface{}) {
	current().Errorf(format, args...)
}

// SetLevel sets the minimum log level
func SetLevel(level LogLevel) {
	atomicLevel.SetLevel(toZap(level))
}

// CurrentLevel reports the minimum enabled level.
func CurrentLevel() LogLevel {
	switch atomicLevel.Level() {
	case zapcore.DebugLevel:
		return LevelDebug
	case zapcore.InfoLevel:
		return LevelInfo
	case zapcore.WarnLevel:
		return LevelWarn
	default:
		return LevelError
	}
}

// ParseLevel maps a config string to a LogLevel. Empty means info.
func ParseLevel(s string) (LogLevel, error) {
	switch s {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func toZap(level LogLevel) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// ContextLogger carries structured fields into every entry.
type ContextLogger struct {
	s *zap.SugaredLogger
}

// WithContext creates a new logger with context
func WithContext(context map[string]interface{}) *ContextLogger {
	kv := make([]interface{}, 0, len(context)*2)
	for k, v := range context {
		kv = append(kv, k, v)
	}
	return &ContextLogger{s: current().With(kv...)}
}

// Debugf logs with context
func (c *ContextLogger) Debugf(format string, args ...interface{}) {
	c.s.Debugf(format, args...)
}

// Infof logs with context
func (c *ContextLogger) Infof(format string, args ...interface{}) {
	c.s.Infof(format, args...)
}

// Warnf logs with context
func (c *ContextLogger) Warnf(format string, args ...interface{}) {
	c.s.Warnf(format, args...)
}

// Errorf logs with context
func (c *ContextLogger) Errorf(format string, args ...interface{}) {
	c.s.Errorf(format, args...)
}
