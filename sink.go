package spanlog

import (
	"io"
	"sync"
	"sync/atomic"
)

// sinkGuard serializes record writes from concurrent emitters into one
// destination. A record is written in a single call with its trailing
// newline, so well-formed buffers are never interleaved mid-record.
// Write failures drop the record and bump a counter; they never abort.
type sinkGuard struct {
	w       io.Writer
	mu      sync.Mutex
	dropped atomic.Uint64
}

func newSinkGuard(w io.Writer) *sinkGuard {
	return &sinkGuard{w: w}
}

// emit appends the terminating newline and writes the record atomically
// with respect to other emitters. Ordering between records from different
// goroutines is whichever acquires the guard first.
func (s *sinkGuard) emit(buf []byte) {
	buf = append(buf, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(buf); err != nil {
		s.dropped.Add(1)
	}
}

// droppedWrites returns the number of records dropped on write failure.
func (s *sinkGuard) droppedWrites() uint64 {
	return s.dropped.Load()
}
