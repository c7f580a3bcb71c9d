package logger

import (
	"fmt"
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Info  *log.Logger
	Error *log.Logger
	Debug *log.Logger
	Warn  *log.Logger

	level = zap.NewAtomicLevelAt(zap.InfoLevel)
	base  *zap.Logger
)

func init() {
	base = build(level)
	bind(base)
}

// Init sets the minimum level ("debug", "info", "warn", "error") of every
// package logger.
func Init(lvl string) error {
	parsed, err := zapcore.ParseLevel(lvl)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", lvl, err)
	}
	level.SetLevel(parsed)
	return nil
}

// Zap returns the structured logger the package loggers write to.
func Zap() *zap.Logger {
	return base
}

func Sync() {
	_ = base.Sync()
}

func build(lvl zap.AtomicLevel) *zap.Logger {
	cfg := &zap.Config{
		Level:    lvl,
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "severity",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeTime:     zapcore.RFC3339TimeEncoder,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	l, err := cfg.Build(zap.AddStacktrace(zap.DPanicLevel))
	if err != nil {
		panic(err)
	}
	return l
}

func bind(l *zap.Logger) {
	Info = stdAt(l, zap.InfoLevel)
	Error = stdAt(l, zap.ErrorLevel)
	Debug = stdAt(l, zap.DebugLevel)
	Warn = stdAt(l, zap.WarnLevel)
}

func stdAt(l *zap.Logger, lvl zapcore.Level) *log.Logger {
	std, err := zap.NewStdLogAt(l, lvl)
	if err != nil {
		panic(err)
	}
	return std
}
