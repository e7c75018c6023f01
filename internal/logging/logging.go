// ABOUTME: Structured logger construction
// ABOUTME: Wraps a zap sugared logger writing to stderr or a log file
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the application logger
type Logger struct {
	*zap.SugaredLogger
}

// NewLogger returns a console logger on stderr. verbose enables debug output.
func NewLogger(verbose bool) *Logger {
	l, err := build(verbose, "stderr")
	if err != nil {
		return Nop()
	}
	return l
}

// NewFileLogger returns a logger appending to path. Used by the terminal UI
// so log lines don't draw over the screen.
func NewFileLogger(verbose bool, path string) (*Logger, error) {
	if path == "" {
		return NewLogger(verbose), nil
	}
	l, err := build(verbose, path)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return l, nil
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}

func build(verbose bool, output string) (*Logger, error) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      verbose,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
	}
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	if !verbose {
		cfg.EncoderConfig.CallerKey = ""
	}

	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{z.Sugar()}, nil
}

// Sync flushes buffered entries, ignoring the error stderr returns on some
// platforms
func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}
