// Package logger is the process-wide leveled logger.
//
// Callers use printf-style helpers (Debug, Info, Warn, Error). Output is
// produced by zap, either as human readable console lines or as JSON.
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel converts "DEBUG", "INFO", "WARN" or "ERROR" (any case).
func ParseLevel(level string) (Level, bool) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	}
	return LevelInfo, false
}

// Config selects level, encoding and destination.
type Config struct {
	Level string

	// Format is "text" (console) or "json"
	Format string

	// Output is "stdout", "stderr" or a file path
	Output string
}

var (
	level   = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	current atomic.Pointer[zap.SugaredLogger]
)

func init() {
	current.Store(build(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.Lock(os.Stdout)))
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

func build(encoder zapcore.Encoder, sink zapcore.WriteSyncer) *zap.SugaredLogger {
	return zap.New(zapcore.NewCore(encoder, sink, level)).Sugar()
}

// Configure replaces the process logger.
func Configure(cfg Config) error {
	if cfg.Level != "" {
		lvl, ok := ParseLevel(cfg.Level)
		if !ok {
			return fmt.Errorf("invalid log level %q", cfg.Level)
		}
		level.SetLevel(lvl.zapLevel())
	}

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		encoder = zapcore.NewConsoleEncoder(encoderConfig())
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderConfig())
	default:
		return fmt.Errorf("invalid log format %q", cfg.Format)
	}

	var sink zapcore.WriteSyncer
	switch cfg.Output {
	case "", "stdout":
		sink = zapcore.Lock(os.Stdout)
	case "stderr":
		sink = zapcore.Lock(os.Stderr)
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		sink = zapcore.Lock(file)
	}

	current.Store(build(encoder, sink))
	return nil
}

// SetLevel changes the minimum level. Unknown names are ignored.
func SetLevel(name string) {
	if lvl, ok := ParseLevel(name); ok {
		level.SetLevel(lvl.zapLevel())
	}
}

// Enabled reports whether messages at l are currently written.
func Enabled(l Level) bool {
	return level.Enabled(l.zapLevel())
}

// Sync flushes buffered output.
func Sync() error {
	return current.Load().Sync()
}

func Debug(format string, v ...any) {
	current.Load().Debugf(format, v...)
}

func Info(format string, v ...any) {
	current.Load().Infof(format, v...)
}

func Warn(format string, v ...any) {
	current.Load().Warnf(format, v...)
}

func Error(format string, v ...any) {
	current.Load().Errorf(format, v...)
}
