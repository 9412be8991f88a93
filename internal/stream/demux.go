package stream

import (
	"sync"
	"time"

	"github.com/argusview/argus/internal/core"
	"github.com/argusview/argus/internal/wire"
)

// Demux consumes an arbitrarily-chunked byte stream and extracts discrete
// length-prefixed frames.
//
// The network read loop calls Feed; the render loop calls Take. The ring
// and the parse cursors form one critical section guarded by mu, the slot
// carries its own lock, so neither side ever blocks the other for longer
// than a pointer swap or a memmove.
type Demux struct {
	mu     sync.Mutex
	ring   *Ring
	slot   Slot
	dims   core.Dimensions
	closed bool

	seq     uint64
	frames  uint64
	bytesIn uint64
}

// NewDemux creates a demultiplexer with the given ring capacity. Parsed
// frames are stamped with dims, the session's fixed raster size.
func NewDemux(capacity int, dims core.Dimensions) *Demux {
	return &Demux{ring: NewRing(capacity), dims: dims}
}

// Feed appends chunk to the intake ring and then parses as many complete
// frames as are available, publishing each to the latest-frame slot.
//
// The two possible errors are fatal to the session: core.ErrBufferTooSmall
// when a single chunk can never fit the ring, and core.ErrFraming when a
// header claims a length the ring can never satisfy (the stream is presumed
// desynchronised, there is no recovery).
func (d *Demux) Feed(chunk []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		// A read racing past Close must not resurrect any state; the
		// chunk is dropped, the slot stays empty.
		return nil
	}
	if err := d.ring.Append(chunk); err != nil {
		return err
	}
	d.bytesIn += uint64(len(chunk))
	return d.parse()
}

// parse runs the extraction loop. Stopping on a partial header or partial
// payload mutates nothing, so re-entry after the next Append resumes at
// exactly the same state.
func (d *Demux) parse() error {
	for {
		unread := d.ring.Unread()
		if len(unread) < wire.HeaderSize {
			return nil // partial header, wait for more intake
		}

		length, err := wire.Header(unread)
		if err != nil {
			return err
		}
		if int(length)+wire.HeaderSize > d.ring.Cap() {
			return core.ErrFraming
		}

		total := wire.HeaderSize + int(length)
		if len(unread) < total {
			return nil // partial payload, header is re-read next call
		}

		// Copy the payload out so the ring can be reused immediately.
		payload := make([]byte, length)
		copy(payload, unread[wire.HeaderSize:total])

		d.seq++
		d.frames++
		d.slot.Publish(&core.Frame{
			Data:      payload,
			Width:     d.dims.Width,
			Height:    d.dims.Height,
			Timestamp: time.Now(),
			Seq:       d.seq,
		})
		d.ring.Advance(total)
	}
}

// Take removes and returns the latest parsed frame, or nil when none is
// pending. Safe to call concurrently with Feed.
func (d *Demux) Take() *core.Frame {
	return d.slot.Take()
}

// Reset drops all buffered bytes and any pending frame. The
// demultiplexer remains usable afterwards.
func (d *Demux) Reset() {
	d.mu.Lock()
	d.ring.Reset()
	d.mu.Unlock()
	d.slot.Clear()
}

// Close is a final Reset: all buffered state is dropped and any further
// Feed is rejected, so an in-flight read on another goroutine cannot
// publish a frame after teardown emptied the slot.
func (d *Demux) Close() {
	d.mu.Lock()
	d.closed = true
	d.ring.Reset()
	d.mu.Unlock()
	d.slot.Clear()
}

// Stats is a snapshot of demultiplexer operational state.
type Stats struct {
	FramesParsed  uint64 // frames fully parsed and published
	FramesDropped uint64 // frames superseded in the slot before being taken
	BytesIn       uint64 // raw bytes accepted by intake
	Compactions   uint64 // unparsed-span relocations
	Resets        uint64 // overflow recoveries that discarded the backlog
}

// Stats returns a snapshot of the demultiplexer counters.
func (d *Demux) Stats() Stats {
	d.mu.Lock()
	s := Stats{
		FramesParsed: d.frames,
		BytesIn:      d.bytesIn,
		Compactions:  d.ring.compactions,
		Resets:       d.ring.resets,
	}
	d.mu.Unlock()
	s.FramesDropped = d.slot.Drops()
	return s
}
