package spanlog

import (
	"sync"
	"sync/atomic"
)

// spanEntry is one live span in the registry side-table. The storage slot
// is exclusively owned by the span for its lifetime; mu serializes the
// record/read paths when the same span is shared across goroutines.
type spanEntry struct {
	id       string
	parentID string
	name     string
	mu       sync.Mutex
	storage  *fieldMap
	done     atomic.Bool
}

// registry is the side-table of live spans, keyed by span ID. It replaces
// per-span opaque extension slots with explicit create/parentOf/attach/get
// operations.
type registry struct {
	spans map[string]*spanEntry
	ids   *idPool
	mu    sync.RWMutex
}

func newRegistry() *registry {
	return &registry{
		spans: make(map[string]*spanEntry),
		ids:   newIDPool(128),
	}
}

// create allocates a new entry with a fresh span ID. Storage is attached
// separately, before the entry is handed to callers that can record on it.
func (r *registry) create(name, parentID string) *spanEntry {
	entry := &spanEntry{
		id:       r.ids.get(),
		parentID: parentID,
		name:     name,
	}

	r.mu.Lock()
	r.spans[entry.id] = entry
	r.mu.Unlock()

	return entry
}

// get returns the live entry for id.
func (r *registry) get(id string) (*spanEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.spans[id]
	return entry, ok
}

// parentOf returns the live parent entry of id, if any.
func (r *registry) parentOf(id string) (*spanEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.spans[id]
	if !ok || entry.parentID == "" {
		return nil, false
	}
	parent, ok := r.spans[entry.parentID]
	return parent, ok
}

// attach sets the storage slot for id. Propagation guarantees storage is
// attached exactly once, before any record can target the span; a missing
// entry here is a bug, not a runtime condition.
func (r *registry) attach(id string, storage *fieldMap) {
	r.mu.RLock()
	entry, ok := r.spans[id]
	r.mu.RUnlock()
	if !ok {
		panic("spanlog: span missing from registry, this is a bug")
	}

	entry.mu.Lock()
	entry.storage = storage
	entry.mu.Unlock()
}

// remove drops the entry when the span ends.
func (r *registry) remove(id string) {
	r.mu.Lock()
	delete(r.spans, id)
	r.mu.Unlock()
}

// snapshot returns a point-in-time clone of the entry's storage, taken
// under the entry lock so concurrent records never tear a read.
func (e *spanEntry) snapshot() *fieldMap {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.storage == nil {
		panic("spanlog: storage missing on live span, this is a bug")
	}
	return e.storage.clone()
}

func (r *registry) close() {
	r.ids.close()
}
