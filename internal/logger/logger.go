// Package logger writes diagnostics to stderr. Errors are always written;
// warnings, progress notes and engine details only with --verbose, where
// they show which engine handled each document and why.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Level orders messages by importance.
type Level int

// Available levels, least verbose first.
const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// String returns the tag written before messages of the level.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

var (
	mu     sync.RWMutex
	level              = LevelError
	output io.Writer   = os.Stderr
	before func()
)

// SetVerbose enables or disables everything below errors.
func SetVerbose(v bool) {
	if v {
		SetLevel(LevelDebug)
	} else {
		SetLevel(LevelError)
	}
}

// IsVerbose returns true if more than errors are written.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return level > LevelError
}

// SetLevel sets the most verbose level that is written.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// SetOutput sets the output writer. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetBeforeWrite registers fn to run before each message is written, so a
// redrawn terminal line can be cleared first. nil removes the hook.
func SetBeforeWrite(fn func()) {
	mu.Lock()
	defer mu.Unlock()
	before = fn
}

// Debug reports engine-level detail such as skipped passes.
func Debug(format string, args ...any) {
	logf(LevelDebug, format, args...)
}

// Info reports run progress.
func Info(format string, args ...any) {
	logf(LevelInfo, format, args...)
}

// Warn reports a degraded but working setup, such as a missing engine.
func Warn(format string, args ...any) {
	logf(LevelWarn, format, args...)
}

// Error reports a failure. It is written at every level.
func Error(format string, args ...any) {
	logf(LevelError, format, args...)
}

// Section prints a header separating the phases of a verbose run.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if level < LevelInfo {
		return
	}
	if before != nil {
		before()
	}
	fmt.Fprintf(output, "\n=== %s ===\n", name)
}

func logf(l Level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if l > level {
		return
	}
	if before != nil {
		before()
	}
	fmt.Fprintf(output, "[%s] %s\n", l, fmt.Sprintf(format, args...))
}
