// Package wire implements the stream framing contract.
//
// The stream is a plain concatenation of frames. Each frame is a 4-byte
// unsigned little-endian payload length followed by exactly that many bytes
// of JPEG-encoded image data. There are no separators, no magic bytes and
// no checksums; resynchronisation after corruption is not possible.
package wire

import (
	"encoding/binary"
	"errors"
	"io"
)

// HeaderSize is the size of the frame header in bytes.
const HeaderSize = 4

var (
	ErrShortHeader     = errors.New("wire: short frame header")
	ErrPayloadTooLarge = errors.New("wire: payload too large")
)

// Limits constrains frame encode memory use.
type Limits struct {
	MaxFrameBytes uint32
}

// DefaultLimits allows frames up to 8 MiB, comfortably above any single
// JPEG a capture source produces.
func DefaultLimits() Limits {
	return Limits{MaxFrameBytes: 8 * 1024 * 1024}
}

// PutHeader writes the length header for a payload of n bytes into b.
// b must be at least HeaderSize bytes long.
func PutHeader(b []byte, n uint32) {
	binary.LittleEndian.PutUint32(b[:HeaderSize], n)
}

// Header decodes the payload length from the first HeaderSize bytes of b.
func Header(b []byte) (uint32, error) {
	if len(b) < HeaderSize {
		return 0, ErrShortHeader
	}
	return binary.LittleEndian.Uint32(b[:HeaderSize]), nil
}

// WriteFrame writes one complete frame (header + payload) to w.
func WriteFrame(w io.Writer, payload []byte, limits Limits) error {
	if limits.MaxFrameBytes > 0 && uint32(len(payload)) > limits.MaxFrameBytes {
		return ErrPayloadTooLarge
	}

	var hdr [HeaderSize]byte
	PutHeader(hdr[:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

// AppendFrame appends one complete frame to dst and returns the result.
// Useful for building multi-frame fixtures and for sinks that batch writes.
func AppendFrame(dst, payload []byte) []byte {
	var hdr [HeaderSize]byte
	PutHeader(hdr[:], uint32(len(payload)))
	dst = append(dst, hdr[:]...)
	return append(dst, payload...)
}
