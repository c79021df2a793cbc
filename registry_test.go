package spanlog

import "testing"

func TestRegistryCreateAndGet(t *testing.T) {
	r := newRegistry()
	defer r.close()

	entry := r.create("op", "")
	if entry.id == "" {
		t.Error("Expected non-empty span ID")
	}
	if entry.name != "op" {
		t.Errorf("Expected name 'op', got %s", entry.name)
	}

	got, ok := r.get(entry.id)
	if !ok || got != entry {
		t.Error("Expected to get the created entry back")
	}
}

func TestRegistryParentOf(t *testing.T) {
	r := newRegistry()
	defer r.close()

	parent := r.create("parent", "")
	child := r.create("child", parent.id)

	got, ok := r.parentOf(child.id)
	if !ok || got != parent {
		t.Error("Expected parentOf to return the parent entry")
	}

	if _, ok := r.parentOf(parent.id); ok {
		t.Error("Expected no parent for a root span")
	}
}

func TestRegistryRemove(t *testing.T) {
	r := newRegistry()
	defer r.close()

	entry := r.create("op", "")
	r.remove(entry.id)

	if _, ok := r.get(entry.id); ok {
		t.Error("Expected entry to be gone after remove")
	}

	// A child whose parent ended has no live parent.
	orphan := r.create("orphan", entry.id)
	if _, ok := r.parentOf(orphan.id); ok {
		t.Error("Expected no live parent after removal")
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	r := newRegistry()
	defer r.close()

	entry := r.create("op", "")
	storage := newFieldMap(Overwrite())
	storage.observe("a", stringValue("1"))
	r.attach(entry.id, storage)

	snap := entry.snapshot()

	entry.mu.Lock()
	entry.storage.observe("b", stringValue("2"))
	entry.mu.Unlock()

	if _, ok := snap.get("b"); ok {
		t.Error("Snapshot saw a later mutation")
	}
	if v, ok := snap.get("a"); !ok || v.str != "1" {
		t.Error("Snapshot missing field present at snapshot time")
	}
}

func TestAttachMissingSpanPanics(t *testing.T) {
	r := newRegistry()
	defer r.close()

	defer func() {
		if recover() == nil {
			t.Error("Expected panic when attaching to an unknown span")
		}
	}()
	r.attach("no-such-id", newFieldMap(Overwrite()))
}
