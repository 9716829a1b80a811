// Package logger holds the process-wide zap logger. Components log through
// Named children; until Init runs everything is discarded.
package logger

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the global logger.
var Log = zap.NewNop()

// Options configures Init.
type Options struct {
	// Level is debug, info, warn or error. Empty means info.
	Level string
	// Format is console or json. Empty means console.
	Format string
	// File enables rotating file output when File.Path is set.
	File FileConfig
	// Console receives the console stream; nil disables it.
	Console io.Writer
}

// FileConfig sets up lumberjack rotation.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// RotatedFile returns the rotation used for a plain log file path.
func RotatedFile(path string) FileConfig {
	return FileConfig{
		Path:       path,
		MaxSizeMB:  20,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Compress:   true,
	}
}

// Init replaces the global logger. Console output is colored and
// timestamped to the millisecond; file output never carries color codes.
func Init(opts Options) error {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		var err error
		if level, err = zapcore.ParseLevel(opts.Level); err != nil {
			return fmt.Errorf("logger: %w", err)
		}
	}

	newEncoder := zapcore.NewConsoleEncoder
	switch opts.Format {
	case "", "console":
	case "json":
		newEncoder = zapcore.NewJSONEncoder
	default:
		return fmt.Errorf("logger: unknown format %q", opts.Format)
	}

	var cores []zapcore.Core
	if opts.Console != nil {
		enc := encoderConfig()
		if opts.Format != "json" {
			enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
			enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		cores = append(cores, zapcore.NewCore(newEncoder(enc), zapcore.AddSync(opts.Console), level))
	}
	if f := opts.File; f.Path != "" {
		w := &lumberjack.Logger{
			Filename:   f.Path,
			MaxSize:    f.MaxSizeMB,
			MaxBackups: f.MaxBackups,
			MaxAge:     f.MaxAgeDays,
			Compress:   f.Compress,
			LocalTime:  true,
		}
		cores = append(cores, zapcore.NewCore(newEncoder(encoderConfig()), zapcore.AddSync(w), level))
	}

	Log = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return nil
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "component",
		MessageKey:       "msg",
		CallerKey:        "caller",
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
}

// Named returns a child of the current global logger for one component.
// Components call it in their constructors, after Init.
func Named(component string) *zap.Logger {
	return Log.Named(component)
}

// Sync flushes buffered entries.
func Sync() {
	_ = Log.Sync()
}

// Info logs on the root logger.
func Info(msg string, fields ...zap.Field) {
	Log.Info(msg, fields...)
}

// Warn logs on the root logger.
func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}

// Error logs on the root logger.
func Error(msg string, fields ...zap.Field) {
	Log.Error(msg, fields...)
}
