// Package logger exposes the two logging channels used by the pipeline:
// ProgressLogger for the main steps of the rendering, and WarningLogger for
// every non fatal error, like unsupported CSS properties, invalid values or
// missing intrinsic sizes.
//
// Both channels write to a global zap logger, which may be configured with
// Initialize.
package logger

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/benoitkugler/vformat/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var global atomic.Pointer[zap.Logger]

// Channel is a named sub-logger with a fixed level.
type Channel struct {
	name  string
	level zapcore.Level
}

var (
	// ProgressLogger logs the main steps of the formatting pipeline.
	ProgressLogger = Channel{name: "progress", level: zapcore.InfoLevel}

	// WarningLogger emits a warning for each absorbed error.
	WarningLogger = Channel{name: "warning", level: zapcore.WarnLevel}
)

// Printf formats and logs a message, if the channel level is enabled.
func (c Channel) Printf(format string, args ...interface{}) {
	l := L().Named(c.name)
	if !l.Core().Enabled(c.level) {
		return
	}
	if ce := l.Check(c.level, fmt.Sprintf(format, args...)); ce != nil {
		ce.Write()
	}
}

// Log logs a structured message.
func (c Channel) Log(msg string, fields ...zap.Field) {
	if ce := L().Named(c.name).Check(c.level, msg); ce != nil {
		ce.Write(fields...)
	}
}

// L returns the global logger. Before Initialize is called,
// warnings and errors are written to stderr.
func L() *zap.Logger {
	if l := global.Load(); l != nil {
		return l
	}
	l := newDefault()
	if global.CompareAndSwap(nil, l) {
		return l
	}
	return global.Load()
}

func newDefault() *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stderr), zapcore.WarnLevel)
	return zap.New(core).Named("vformat")
}

// Initialize builds the global logger from [cfg], writing to [sink]
// and, if cfg.File is not empty, to a rotated log file.
func Initialize(cfg config.LogConfig, sink zapcore.WriteSyncer) error {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	cores := []zapcore.Core{zapcore.NewCore(encoder(cfg.Format), sink, level)}
	if cfg.File != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
		cores = append(cores, zapcore.NewCore(encoder("json"), fileWriter, level))
	}

	Replace(zap.New(zapcore.NewTee(cores...)).Named("vformat"))
	return nil
}

func encoder(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
	if format == "json" {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(ec)
}

// Replace installs [l] as the global logger and returns
// a function restoring the previous one.
func Replace(l *zap.Logger) (restore func()) {
	previous := global.Swap(l)
	return func() { global.Store(previous) }
}

// ResetForTest drops the global logger, so that the next call to L
// rebuilds the default one.
func ResetForTest() { global.Store(nil) }
