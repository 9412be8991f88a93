package stream

import (
	"sync"
	"sync/atomic"

	"github.com/argusview/argus/internal/core"
)

// Slot is a single-value mailbox holding the newest fully parsed,
// not-yet-rendered frame.
//
// Publish overwrites any unconsumed frame: older frames are superseded,
// never queued. This is the central latency/throughput trade-off of the
// pipeline — a renderer slower than the network always sees the most
// recent frame instead of an ever-growing backlog.
type Slot struct {
	mu    sync.Mutex
	frame *core.Frame
	drops uint64
}

// Publish stores f as the latest frame, discarding any previous
// unconsumed value. Never blocks.
func (s *Slot) Publish(f *core.Frame) {
	s.mu.Lock()
	if s.frame != nil {
		atomic.AddUint64(&s.drops, 1)
	}
	s.frame = f
	s.mu.Unlock()
}

// Take removes and returns the latest frame, or nil when the slot is
// empty. Taking clears the slot, so each published frame is consumed at
// most once and a newer frame may be published while this one decodes.
func (s *Slot) Take() *core.Frame {
	s.mu.Lock()
	f := s.frame
	s.frame = nil
	s.mu.Unlock()
	return f
}

// Clear empties the slot without counting a drop. Used by teardown.
func (s *Slot) Clear() {
	s.mu.Lock()
	s.frame = nil
	s.mu.Unlock()
}

// Drops returns the number of frames superseded before being taken.
func (s *Slot) Drops() uint64 {
	return atomic.LoadUint64(&s.drops)
}
