package spanlog

import (
	"context"
	"sync"
)

// bundleKeyType is a private type for context keys to avoid collisions.
type bundleKeyType string

const (
	bundleKey bundleKeyType = "spanlog"
)

// contextBundle holds both logger and span to reduce context allocations.
type contextBundle struct {
	logger *Logger
	entry  *spanEntry
}

// SpanHandle is the caller's grip on an entered span: record fields onto
// its storage, end it, and carry it through contexts.
// Safe for concurrent use by multiple goroutines.
type SpanHandle struct {
	logger *Logger
	entry  *spanEntry
	mu     sync.Mutex
	ended  bool
}

// Record merges new fields into the span's existing storage, against the
// span's own current values rather than its parent's. The logger's
// per-field join policy applies on collisions.
// No-op if the span has ended, and safe on a nil handle.
func (h *SpanHandle) Record(fields ...Field) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ended {
		return
	}

	h.entry.mu.Lock()
	defer h.entry.mu.Unlock()
	if h.entry.storage == nil {
		panic("spanlog: storage missing on live span, this is a bug")
	}
	for _, f := range fields {
		h.entry.storage.observe(f.Key, f.Value)
	}
}

// End destroys the span and releases its registry entry.
// Safe to call multiple times, and safe on a nil handle.
func (h *SpanHandle) End() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ended {
		return
	}
	h.ended = true

	h.entry.done.Store(true)
	h.logger.registry.remove(h.entry.id)
}

// SpanID returns the span's registry identifier.
func (h *SpanHandle) SpanID() string {
	if h == nil {
		return ""
	}
	return h.entry.id
}

// Name returns the span's declared name.
func (h *SpanHandle) Name() string {
	if h == nil {
		return ""
	}
	return h.entry.name
}

// Context embeds this span in parent, for callers that did not keep the
// context returned by StartSpan.
func (h *SpanHandle) Context(parent context.Context) context.Context {
	if h == nil {
		return parent
	}
	bundle := &contextBundle{logger: h.logger, entry: h.entry}
	return context.WithValue(parent, bundleKey, bundle)
}

// activeEntry extracts the current live span from a context.
// Returns nil if no span is present or the span has ended.
func activeEntry(ctx context.Context) *spanEntry {
	if ctx == nil {
		return nil
	}
	if bundle, ok := ctx.Value(bundleKey).(*contextBundle); ok {
		if bundle.entry.done.Load() {
			return nil
		}
		return bundle.entry
	}
	return nil
}
