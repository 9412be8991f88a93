package sink

import (
	"image"
	"sync/atomic"
)

// Null renders nothing and only counts blits. It is the default sink for
// headless runs where only the streaming path is of interest.
type Null struct {
	blits atomic.Uint64
}

func (n *Null) Blit(_ image.Image, _, _ int) error {
	n.blits.Add(1)
	return nil
}

func (n *Null) Close() error { return nil }

// Blits returns the number of frames blitted so far.
func (n *Null) Blits() uint64 { return n.blits.Load() }
