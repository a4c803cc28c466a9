// Package logger is a thin structured-logging layer over log/slog with a
// process-wide level, text or json output, and context-carried fields.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config holds logger configuration
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or file path
}

var (
	mu      sync.RWMutex
	level             = new(slog.LevelVar)
	format            = "text"
	output  io.Writer = os.Stderr
	slogger *slog.Logger
)

func init() {
	level.Set(slog.LevelInfo)
	reconfigure()
}

// reconfigure rebuilds the handler; callers must not hold mu.
func reconfigure() {
	mu.Lock()
	defer mu.Unlock()
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(output, opts)
	} else {
		h = slog.NewTextHandler(output, opts)
	}
	slogger = slog.New(h)
}

// Init applies cfg. Output can be "stdout", "stderr", or a file path.
func Init(cfg Config) error {
	if cfg.Output != "" {
		var w io.Writer
		switch strings.ToLower(cfg.Output) {
		case "stdout":
			w = os.Stdout
		case "stderr":
			w = os.Stderr
		default:
			f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
			}
			w = f
		}
		mu.Lock()
		output = w
		mu.Unlock()
	}
	if cfg.Level != "" {
		SetLevel(cfg.Level)
	}
	if cfg.Format != "" {
		SetFormat(cfg.Format)
	}
	reconfigure()
	return nil
}

// InitWithWriter routes output to w. Used by tests.
func InitWithWriter(w io.Writer, lvl, fmtName string) {
	mu.Lock()
	output = w
	mu.Unlock()
	if lvl != "" {
		SetLevel(lvl)
	}
	if fmtName != "" {
		SetFormat(fmtName)
	}
	reconfigure()
}

// SetLevel sets the minimum level; unknown names are ignored.
func SetLevel(name string) {
	switch strings.ToUpper(name) {
	case "DEBUG":
		level.Set(slog.LevelDebug)
	case "INFO":
		level.Set(slog.LevelInfo)
	case "WARN":
		level.Set(slog.LevelWarn)
	case "ERROR":
		level.Set(slog.LevelError)
	}
}

// SetFormat selects "text" or "json"; anything else is ignored.
func SetFormat(name string) {
	name = strings.ToLower(name)
	if name != "text" && name != "json" {
		return
	}
	mu.Lock()
	format = name
	mu.Unlock()
	reconfigure()
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

// Enabled reports whether lvl would be logged.
func Enabled(lvl slog.Level) bool { return level.Level() <= lvl }

func Debug(msg string, args ...any) { get().Debug(msg, args...) }
func Info(msg string, args ...any)  { get().Info(msg, args...) }
func Warn(msg string, args ...any)  { get().Warn(msg, args...) }
func Error(msg string, args ...any) { get().Error(msg, args...) }

// DebugCtx logs with the fields attached to ctx.
func DebugCtx(ctx context.Context, msg string, args ...any) {
	get().DebugContext(ctx, msg, append(Fields(ctx), args...)...)
}

// InfoCtx logs with the fields attached to ctx.
func InfoCtx(ctx context.Context, msg string, args ...any) {
	get().InfoContext(ctx, msg, append(Fields(ctx), args...)...)
}

// WarnCtx logs with the fields attached to ctx.
func WarnCtx(ctx context.Context, msg string, args ...any) {
	get().WarnContext(ctx, msg, append(Fields(ctx), args...)...)
}

// ErrorCtx logs with the fields attached to ctx.
func ErrorCtx(ctx context.Context, msg string, args ...any) {
	get().ErrorContext(ctx, msg, append(Fields(ctx), args...)...)
}
