// Package spanlog is a structured-event formatter for nested spans.
//
// spanlog turns span enter/record/end and event notifications into one
// serialized record per event - newline-delimited JSON or a colorized
// human-readable block - while propagating key/value context down the
// span hierarchy.
//
// Core Components:.
//   - Logger: Configuration plus the record-assembly engine.
//   - SpanHandle: The caller's grip on an entered span.
//   - Field: A named, typed value attached to a span or event.
//
// Basic Usage:.
//
//	log := spanlog.New()
//	defer log.Close()
//	log.On()
//
//	ctx, span := spanlog.StartSpan(ctx, "checkout", spanlog.String("user", "u1"))
//	defer span.End()
//
//	spanlog.Info(ctx, "order placed", spanlog.Int("items", 3))
//
// Context Propagation:.
//
// A child span created under a live span inherits a snapshot of the
// parent's fields, resolved once at creation time under the configured
// join policy. Event cost is proportional to the current span's field
// count, not to tree depth; the snapshot is deliberately stale with
// respect to later parent records.
//
// Thread Safety:.
//
// The emit path is safe for concurrent use. A single mutex guards the
// output sink, so records are never interleaved mid-line. Configure a
// Logger fully before sharing it.
package spanlog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrInstalled is returned by TryOn when a process-global default logger
// is already installed.
var ErrInstalled = errors.New("spanlog: default logger already installed")

var (
	current   atomic.Pointer[Logger]
	installMu sync.Mutex
	installed bool
)

// On installs the logger as the process-global default.
// Panics if a default is already installed; use TryOn to get an error
// instead.
func (l *Logger) On() {
	if err := l.TryOn(); err != nil {
		panic(err)
	}
}

// TryOn installs the logger as the process-global default, failing if one
// is already installed. Installation is a setup-time concern - this never
// fails per event.
func (l *Logger) TryOn() error {
	installMu.Lock()
	defer installMu.Unlock()
	if installed {
		return ErrInstalled
	}
	installed = true
	current.Store(l)
	return nil
}

// OnScoped installs the logger as the default and returns a restore
// function that reinstates the previous default. Call the restore function
// on every exit path, typically via defer.
func (l *Logger) OnScoped() func() {
	installMu.Lock()
	defer installMu.Unlock()
	prev := current.Load()
	current.Store(l)
	return func() {
		installMu.Lock()
		defer installMu.Unlock()
		current.Store(prev)
	}
}

// Default returns the installed default logger, or nil.
func Default() *Logger {
	return current.Load()
}

// StartSpan enters a span against the installed default logger.
// Without an installed default it returns the context unchanged and a nil
// handle, whose methods are safe no-ops.
func StartSpan(ctx context.Context, name string, fields ...Field) (context.Context, *SpanHandle) {
	l := current.Load()
	if l == nil {
		return ctx, nil
	}
	return l.StartSpan(ctx, name, fields...)
}

// Trace emits a trace-level event against the installed default logger.
func Trace(ctx context.Context, msg string, fields ...Field) {
	if l := current.Load(); l != nil {
		l.emit(ctx, LevelTrace, msg, fields)
	}
}

// Debug emits a debug-level event against the installed default logger.
func Debug(ctx context.Context, msg string, fields ...Field) {
	if l := current.Load(); l != nil {
		l.emit(ctx, LevelDebug, msg, fields)
	}
}

// Info emits an info-level event against the installed default logger.
func Info(ctx context.Context, msg string, fields ...Field) {
	if l := current.Load(); l != nil {
		l.emit(ctx, LevelInfo, msg, fields)
	}
}

// Warn emits a warn-level event against the installed default logger.
func Warn(ctx context.Context, msg string, fields ...Field) {
	if l := current.Load(); l != nil {
		l.emit(ctx, LevelWarn, msg, fields)
	}
}

// Error emits an error-level event against the installed default logger.
func Error(ctx context.Context, msg string, fields ...Field) {
	if l := current.Load(); l != nil {
		l.emit(ctx, LevelError, msg, fields)
	}
}

// Event emits an event at an arbitrary level against the installed default
// logger.
func Event(ctx context.Context, level Level, msg string, fields ...Field) {
	if l := current.Load(); l != nil {
		l.emit(ctx, level, msg, fields)
	}
}
