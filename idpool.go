package spanlog

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// newSpanID generates an 8-byte hex span identifier.
func newSpanID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to a time-based ID if crypto/rand fails.
		return hex.EncodeToString([]byte(time.Now().Format("15:04:05.000000")))
	}
	return hex.EncodeToString(bytes)
}

// idPool keeps a buffer of pre-generated span IDs to amortize crypto/rand
// overhead on the span-creation path.
type idPool struct {
	ids    chan string
	stopCh chan struct{}
	mu     sync.Mutex
	closed bool
}

func newIDPool(capacity int) *idPool {
	pool := &idPool{
		ids:    make(chan string, capacity),
		stopCh: make(chan struct{}),
	}
	// Background refill goroutine.
	go pool.refill()
	return pool
}

// get retrieves an ID from the pool or generates one if the pool is empty.
func (p *idPool) get() string {
	select {
	case id := <-p.ids:
		return id
	default:
		// Pool empty, generate directly (fallback for burst load).
		return newSpanID()
	}
}

// refill maintains the pool by generating IDs in the background.
func (p *idPool) refill() {
	for {
		select {
		case <-p.stopCh:
			return
		default:
			select {
			case p.ids <- newSpanID():
				// Successfully added ID to pool.
			case <-p.stopCh:
				return
			}
		}
	}
}

// close shuts down the ID pool gracefully.
func (p *idPool) close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		close(p.stopCh)
		p.closed = true
	}
}
