// Package stream implements the streaming frame demultiplexer: a fixed
// capacity intake buffer, the length-prefix parse loop and the single-slot
// latest-frame mailbox that hands parsed frames to the render side.
package stream

import (
	"github.com/argusview/argus/internal/core"
)

// Ring is the fixed-capacity byte region shared by intake and parsing.
//
// Two cursors delimit valid data: readOff <= writeOff <= cap. The span
// [readOff, writeOff) holds bytes not yet parsed into frames; bytes below
// readOff belong to frames already copied out and are free for reuse.
// Ring is not safe for concurrent use; the owning Demux serialises access.
type Ring struct {
	buf      []byte
	readOff  int
	writeOff int

	compactions uint64
	resets      uint64
}

// NewRing allocates a ring with the given capacity in bytes.
func NewRing(capacity int) *Ring {
	return &Ring{buf: make([]byte, capacity)}
}

// Append copies chunk into the region at the write cursor.
//
// When the chunk does not fit behind the write cursor the unparsed span is
// first compacted to offset 0, reclaiming space held by already-parsed
// bytes. If the chunk still does not fit the backlog itself is discarded
// (cursors reset to 0) — a bounded loss of at most one in-flight partial
// frame, taken deliberately to recover the buffer into a consistent state.
// A chunk larger than the whole region can never be stored and returns
// core.ErrBufferTooSmall.
func (r *Ring) Append(chunk []byte) error {
	if len(chunk) > len(r.buf) {
		return core.ErrBufferTooSmall
	}

	if r.writeOff+len(chunk) > len(r.buf) {
		r.compact()
		if r.writeOff+len(chunk) > len(r.buf) {
			// Backlog exceeds capacity even from offset 0. Drop it.
			r.readOff = 0
			r.writeOff = 0
			r.resets++
		}
	}

	copy(r.buf[r.writeOff:], chunk)
	r.writeOff += len(chunk)
	return nil
}

// compact relocates the unparsed span to the start of the region.
// Contents of the span are preserved, only its offset changes.
func (r *Ring) compact() {
	if r.readOff == 0 {
		return
	}
	n := copy(r.buf, r.buf[r.readOff:r.writeOff])
	r.readOff = 0
	r.writeOff = n
	r.compactions++
}

// Unread returns the unparsed span. The slice aliases the ring and is
// invalidated by the next Append.
func (r *Ring) Unread() []byte {
	return r.buf[r.readOff:r.writeOff]
}

// Advance moves the read cursor past n parsed bytes.
func (r *Ring) Advance(n int) {
	r.readOff += n
}

// Reset drops all buffered bytes and returns both cursors to 0.
func (r *Ring) Reset() {
	r.readOff = 0
	r.writeOff = 0
}

// Len returns the number of unparsed bytes.
func (r *Ring) Len() int { return r.writeOff - r.readOff }

// Cap returns the total region capacity.
func (r *Ring) Cap() int { return len(r.buf) }
