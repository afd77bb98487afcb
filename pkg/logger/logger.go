// Package logger wraps zap with a small, CLI-oriented surface: a
// colored console core on stderr, an optional rotating JSON file core,
// and both global and instance-based loggers.
package logger

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level defines the log level, mapped to zapcore.Level underneath.
type Level int8

const (
	DebugLevel Level = iota - 1
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ToZapLevel converts a Level to its zapcore equivalent.
func (l Level) ToZapLevel() zapcore.Level {
	switch l {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Options holds configuration for the logger.
type Options struct {
	// ConsoleLevel sets the minimum log level for console output.
	ConsoleLevel Level
	// ConsoleOutput enables logging to the console (os.Stderr, so that
	// command output on stdout stays machine-readable).
	ConsoleOutput bool
	// ColorConsole enables ANSI-colored level tags on the console.
	ColorConsole bool
	// FileOutput enables JSON logging to a rotating file.
	FileOutput bool
	// LogFilePath is the rotating log file. Required if FileOutput is set.
	LogFilePath string
	// TimestampFormat is the timestamp layout, time.RFC3339 when empty.
	TimestampFormat string
}

// DefaultOptions returns the standard CLI configuration: colored INFO+
// console output, no file output.
func DefaultOptions() Options {
	return Options{
		ConsoleLevel:    InfoLevel,
		ConsoleOutput:   true,
		ColorConsole:    true,
		FileOutput:      false,
		TimestampFormat: time.RFC3339,
	}
}

// Logger wraps zap.SugaredLogger.
type Logger struct {
	*zap.SugaredLogger
	opts Options
}

var (
	globalLogger *Logger
	once         sync.Once
)

// Init initializes the global logger. Subsequent calls are no-ops.
// On failure it falls back to a plain development logger on stderr so
// logging is always available in some form.
func Init(opts Options) {
	once.Do(func() {
		var err error
		globalLogger, err = NewLogger(opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize logger: %v; falling back to basic console logging\n", err)
			l, _ := zap.NewDevelopment()
			globalLogger = &Logger{SugaredLogger: l.Sugar(), opts: DefaultOptions()}
		}
	})
}

// Get returns the global logger, initializing it with DefaultOptions
// if Init was never called.
func Get() *Logger {
	if globalLogger == nil {
		Init(DefaultOptions())
	}
	return globalLogger
}

// NewLogger creates an independent logger instance. Commands use this
// rather than the global logger so each invocation carries its own
// verbosity.
func NewLogger(opts Options) (*Logger, error) {
	if opts.TimestampFormat == "" {
		opts.TimestampFormat = time.RFC3339
	}

	var cores []zapcore.Core

	if opts.ConsoleOutput {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout(opts.TimestampFormat)
		if opts.ColorConsole {
			cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		}
		enc := zapcore.NewConsoleEncoder(cfg)
		enabler := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= opts.ConsoleLevel.ToZapLevel()
		})
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(os.Stderr), enabler))
	}

	if opts.FileOutput {
		if opts.LogFilePath == "" {
			return nil, fmt.Errorf("log file path cannot be empty when file output is enabled")
		}
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout(opts.TimestampFormat)
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc := zapcore.NewJSONEncoder(cfg)
		sink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.LogFilePath,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
		cores = append(cores, zapcore.NewCore(enc, sink, zapcore.DebugLevel))
	}

	if len(cores) == 0 {
		return &Logger{SugaredLogger: zap.NewNop().Sugar(), opts: opts}, nil
	}

	zl := zap.New(zapcore.NewTee(cores...))
	return &Logger{SugaredLogger: zl.Sugar(), opts: opts}, nil
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	if l == nil || l.SugaredLogger == nil {
		return nil
	}
	return l.SugaredLogger.Sync()
}

// Convenience global functions.

func Debug(template string, args ...interface{}) { Get().Debugf(template, args...) }
func Info(template string, args ...interface{})  { Get().Infof(template, args...) }
func Warn(template string, args ...interface{})  { Get().Warnf(template, args...) }
func Error(template string, args ...interface{}) { Get().Errorf(template, args...) }
