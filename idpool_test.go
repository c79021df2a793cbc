package spanlog

import (
	"runtime"
	"sync"
	"testing"
	"time"
)

// TestIDPoolBasicOperation tests basic ID pool functionality.
func TestIDPoolBasicOperation(t *testing.T) {
	pool := newIDPool(10)
	defer pool.close()

	id := pool.get()
	if id == "" {
		t.Error("Expected non-empty ID")
	}
	if len(id) != 16 {
		t.Errorf("Expected 16 hex chars, got %d (%s)", len(id), id)
	}
}

// TestIDPoolUniqueness tests that pooled IDs do not repeat.
func TestIDPoolUniqueness(t *testing.T) {
	pool := newIDPool(4)
	defer pool.close()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := pool.get()
		if seen[id] {
			t.Errorf("Duplicate ID %s", id)
		}
		seen[id] = true
	}
}

// TestIDPoolConcurrentAccess tests concurrent access to the ID pool.
func TestIDPoolConcurrentAccess(t *testing.T) {
	pool := newIDPool(50)
	defer pool.close()

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[string]bool)

	numGoroutines := 10
	idsPerGoroutine := 10

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < idsPerGoroutine; j++ {
				id := pool.get()
				mu.Lock()
				if seen[id] {
					t.Errorf("Duplicate ID %s", id)
				}
				seen[id] = true
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
}

// TestIDPoolCleanShutdown tests that pools shut down cleanly.
func TestIDPoolCleanShutdown(t *testing.T) {
	pool := newIDPool(10)

	// Get goroutine count before.
	before := runtime.NumGoroutine()

	pool.close()

	// Give time for cleanup.
	time.Sleep(10 * time.Millisecond)

	// Should not have leaked goroutines.
	after := runtime.NumGoroutine()
	if after > before {
		t.Errorf("Goroutine leak detected: %d -> %d", before, after)
	}

	// Multiple closes should be safe.
	pool.close()
}
