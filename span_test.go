package spanlog

import (
	"bytes"
	"context"
	"testing"
)

func testLogger() (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := New().Writer(buf).Time(TimeOff)
	return logger, buf
}

func spanName(h *SpanHandle) (string, bool) {
	h.entry.mu.Lock()
	defer h.entry.mu.Unlock()
	v, ok := h.entry.storage.get(spanField)
	return v.str, ok
}

func TestSpanNameJoin(t *testing.T) {
	logger, _ := testLogger()
	defer logger.Close()

	ctx, outer := logger.StartSpan(context.Background(), "outer")
	defer outer.End()
	_, inner := logger.StartSpan(ctx, "inner")
	defer inner.End()

	if name, _ := spanName(outer); name != "outer" {
		t.Errorf("Expected 'outer', got %q", name)
	}
	if name, _ := spanName(inner); name != "outer::inner" {
		t.Errorf("Expected 'outer::inner', got %q", name)
	}
}

func TestSpanNameOverwrite(t *testing.T) {
	logger, _ := testLogger()
	logger.SpanJoin(SpanJoinOverwrite())
	defer logger.Close()

	ctx, outer := logger.StartSpan(context.Background(), "outer")
	defer outer.End()
	_, inner := logger.StartSpan(ctx, "inner")
	defer inner.End()

	if name, _ := spanName(inner); name != "inner" {
		t.Errorf("Expected 'inner', got %q", name)
	}
}

func TestSpanNameNone(t *testing.T) {
	logger, _ := testLogger()
	logger.SpanJoin(SpanJoinNone())
	defer logger.Close()

	ctx, outer := logger.StartSpan(context.Background(), "outer")
	defer outer.End()
	_, inner := logger.StartSpan(ctx, "inner")
	defer inner.End()

	if _, ok := spanName(inner); ok {
		t.Error("Expected no span-name field under SpanJoinNone")
	}
}

func TestChildInheritsParentFields(t *testing.T) {
	logger, _ := testLogger()
	defer logger.Close()

	ctx, parent := logger.StartSpan(context.Background(), "parent", String("a", "1"))
	defer parent.End()
	_, child := logger.StartSpan(ctx, "child", String("b", "2"))
	defer child.End()

	child.entry.mu.Lock()
	a, aok := child.entry.storage.get("a")
	b, bok := child.entry.storage.get("b")
	child.entry.mu.Unlock()

	if !aok || a.str != "1" {
		t.Error("Expected child to inherit parent field a=1")
	}
	if !bok || b.str != "2" {
		t.Error("Expected child to keep its own field b=2")
	}
}

// Inheritance is a snapshot taken at child creation; later parent records
// are not reflected in the child.
func TestInheritanceIsSnapshot(t *testing.T) {
	logger, _ := testLogger()
	defer logger.Close()

	ctx, parent := logger.StartSpan(context.Background(), "parent", String("a", "1"))
	defer parent.End()
	_, child := logger.StartSpan(ctx, "child")
	defer child.End()

	parent.Record(String("late", "x"))

	child.entry.mu.Lock()
	_, ok := child.entry.storage.get("late")
	child.entry.mu.Unlock()
	if ok {
		t.Error("Expected child storage to be a snapshot, not a live view")
	}
}

func TestChildFieldCollisionUsesPolicy(t *testing.T) {
	logger, _ := testLogger()
	logger.FieldJoin(JoinAll("||"))
	defer logger.Close()

	ctx, parent := logger.StartSpan(context.Background(), "parent", String("a", "A"))
	defer parent.End()
	_, child := logger.StartSpan(ctx, "child", String("a", "B"))
	defer child.End()

	child.entry.mu.Lock()
	v, _ := child.entry.storage.get("a")
	child.entry.mu.Unlock()
	if v.str != "A||B" {
		t.Errorf("Expected 'A||B', got %q", v.str)
	}
}

// Re-recording merges against the span's own current value, not the
// parent's.
func TestRecordMergesAgainstOwnStorage(t *testing.T) {
	logger, _ := testLogger()
	logger.FieldJoin(JoinAll("||"))
	defer logger.Close()

	_, span := logger.StartSpan(context.Background(), "op", String("f", "A"))
	defer span.End()

	span.Record(String("f", "B"))

	span.entry.mu.Lock()
	v, _ := span.entry.storage.get("f")
	span.entry.mu.Unlock()
	if v.str != "A||B" {
		t.Errorf("Expected 'A||B', got %q", v.str)
	}
}

func TestRecordOverwrite(t *testing.T) {
	logger, _ := testLogger()
	defer logger.Close()

	_, span := logger.StartSpan(context.Background(), "op", String("f", "A"))
	defer span.End()

	span.Record(String("f", "B"))

	span.entry.mu.Lock()
	v, _ := span.entry.storage.get("f")
	span.entry.mu.Unlock()
	if v.str != "B" {
		t.Errorf("Expected 'B', got %q", v.str)
	}
}

func TestEndReleasesSpan(t *testing.T) {
	logger, _ := testLogger()
	defer logger.Close()

	ctx, span := logger.StartSpan(context.Background(), "op")
	id := span.SpanID()
	span.End()

	if _, ok := logger.registry.get(id); ok {
		t.Error("Expected registry entry to be released on End")
	}
	if activeEntry(ctx) != nil {
		t.Error("Expected no active span after End")
	}

	// Safe to call again, and records after End are no-ops.
	span.End()
	span.Record(String("a", "1"))
}

func TestNilHandleIsSafe(t *testing.T) {
	var h *SpanHandle
	h.Record(String("a", "1"))
	h.End()
	if h.SpanID() != "" || h.Name() != "" {
		t.Error("Expected empty IDs from nil handle")
	}
	ctx := context.Background()
	if h.Context(ctx) != ctx {
		t.Error("Expected unchanged context from nil handle")
	}
}
