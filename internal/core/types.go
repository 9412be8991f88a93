// Package core defines core data structures with zero external dependencies.
package core

import "time"

// Frame is one encoded still image travelling through the pipeline.
type Frame struct {
	Data      []byte    // JPEG-encoded payload, shared by reference, read-only
	Width     int       // Source raster width in pixels
	Height    int       // Source raster height in pixels
	Timestamp time.Time // Time the frame was produced or fully parsed
	Seq       uint64    // Monotonic sequence number assigned by the producer
}

// Dimensions is the fixed raster size of a stream, exchanged as JSON
// on the dimensions endpoint before streaming starts.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether both sides are positive.
func (d Dimensions) Valid() bool {
	return d.Width > 0 && d.Height > 0
}
