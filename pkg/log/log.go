// Package log is a printf-style front for a process-wide slog logger.
// Scan sessions, history writes and the TUI all log through it; the TUI
// redirects it to a file so log lines never reach the terminal grid.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

// LogLevel is an alias for slog's Level
type LogLevel = slog.Level

const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format selects how records are encoded.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Options is the full logger configuration.
type Options struct {
	Level  LogLevel
	Format Format
	Output io.Writer
}

var (
	mu      sync.Mutex
	current = Options{Level: LevelInfo, Format: FormatText, Output: os.Stderr}

	active = slog.New(newHandler(current))
)

// sourceRoot is the module directory, cut from the front of caller paths.
var sourceRoot = func() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}
	return strings.TrimSuffix(file, "pkg/log/log.go")
}()

func trimSource(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.SourceKey || sourceRoot == "" {
		return a
	}
	if src, ok := a.Value.Any().(*slog.Source); ok {
		src.File = strings.TrimPrefix(src.File, sourceRoot)
	}
	return a
}

func newHandler(o Options) slog.Handler {
	ho := &slog.HandlerOptions{AddSource: true, Level: o.Level, ReplaceAttr: trimSource}
	if o.Format == FormatJSON {
		return slog.NewJSONHandler(o.Output, ho)
	}
	return slog.NewTextHandler(o.Output, ho)
}

// Configure replaces the logger. Zero fields keep their current value.
func Configure(o Options) {
	mu.Lock()
	defer mu.Unlock()
	if o.Format != "" {
		current.Format = o.Format
	}
	if o.Output != nil {
		current.Output = o.Output
	}
	current.Level = o.Level
	active = slog.New(newHandler(current))
}

// Current returns the active configuration.
func Current() Options {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// SetLevel changes only the minimum level.
func SetLevel(level LogLevel) {
	o := Current()
	o.Level = level
	Configure(o)
}

// SetOutput changes only the writer.
func SetOutput(w io.Writer) {
	o := Current()
	o.Output = w
	Configure(o)
}

// SetFormat changes only the encoding.
func SetFormat(f Format) {
	o := Current()
	o.Format = f
	Configure(o)
}

// ParseLevel maps "trace", "debug", "info", "warn" or "error" to a level.
// The second return value is false for unknown names, in which case
// LevelInfo is returned.
func ParseLevel(name string) (LogLevel, bool) {
	switch strings.ToLower(name) {
	case "trace":
		return LevelTrace, true
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// ParseFormat accepts "text" or "json", falling back to text.
func ParseFormat(name string) (Format, bool) {
	switch Format(strings.ToLower(name)) {
	case FormatJSON:
		return FormatJSON, true
	case FormatText:
		return FormatText, true
	default:
		return FormatText, false
	}
}

// Enabled reports whether records at level are written.
func Enabled(level LogLevel) bool {
	return logger().Enabled(context.Background(), level)
}

func logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return active
}

// emit records the message against the caller of the exported helper.
func emit(level LogLevel, format string, v ...any) {
	l := logger()
	if !l.Enabled(context.Background(), level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), level, fmt.Sprintf(format, v...), pcs[0])
	_ = l.Handler().Handle(context.Background(), r)
}

func Trace(format string, v ...any) { emit(LevelTrace, format, v...) }
func Debug(format string, v ...any) { emit(LevelDebug, format, v...) }
func Info(format string, v ...any)  { emit(LevelInfo, format, v...) }
func Warn(format string, v ...any)  { emit(LevelWarn, format, v...) }
func Error(format string, v ...any) { emit(LevelError, format, v...) }

// Fatalf logs at Error and exits with status 1.
func Fatalf(format string, v ...any) {
	emit(LevelError, format, v...)
	os.Exit(1)
}
