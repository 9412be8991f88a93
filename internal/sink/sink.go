// Package sink implements display sinks: the terminal stage that receives
// decoded rasters scaled to the session's fixed dimensions. Sinks have no
// memory of prior frames.
package sink

import (
	"fmt"
	"image"

	"github.com/argusview/argus/internal/core"
)

// Sink accepts a decoded raster and blits it at the target size.
type Sink interface {
	// Blit renders img scaled to width x height. Called once per rendered
	// frame from the render loop goroutine only.
	Blit(img image.Image, width, height int) error
	// Close releases sink resources. Idempotent.
	Close() error
}

// Config selects a sink implementation and its options.
type Config struct {
	Type    string                 `mapstructure:"type"`
	Options map[string]interface{} `mapstructure:"options"`
}

// New builds the sink named by cfg.Type.
func New(cfg Config) (Sink, error) {
	switch cfg.Type {
	case "", "null":
		return &Null{}, nil
	case "file":
		return newFileSink(cfg.Options)
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrSinkNotFound, cfg.Type)
	}
}

// scale resamples img to width x height with nearest-neighbour sampling.
// Quality is secondary here; the render loop must never become the
// pipeline bottleneck because of resampling cost.
func scale(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	b := img.Bounds()
	for y := 0; y < height; y++ {
		sy := b.Min.Y + y*b.Dy()/height
		for x := 0; x < width; x++ {
			sx := b.Min.X + x*b.Dx()/width
			dst.Set(x, y, img.At(sx, sy))
		}
	}
	return dst
}
