package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kingrea/class-divider/internal/config"
)

// FileName is the structured log inside .divider/logs.
const FileName = "divider.log"

// Logger appends JSON lines to .divider/logs/divider.log so users can
// inspect failures after the terminal UI has closed.
type Logger struct {
	*zap.Logger
	file *os.File
}

// New creates (or reuses) the log file for the project described by cfg.
func New(cfg *config.Config) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Project.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	logDir := cfg.LogsDir()
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(logDir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(f), level)
	return &Logger{
		Logger: zap.New(core).With(zap.String("project", cfg.ProjectDir)),
		file:   f,
	}, nil
}

// Nop returns a logger that discards everything, for commands that run
// without a project directory and for tests.
func Nop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// WithConsole returns a logger that also writes human-readable entries at
// debug level to w. The returned logger owns the same file handle.
func (l *Logger) WithConsole(w io.Writer) *Logger {
	if w == nil {
		return l
	}
	console := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)
	return &Logger{
		Logger: l.Logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, console)
		})),
		file: l.file,
	}
}

// Close flushes buffered entries and releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	_ = l.Logger.Sync()
	return l.file.Close()
}
