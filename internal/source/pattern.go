package source

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/mitchellh/mapstructure"

	"github.com/argusview/argus/internal/core"
)

// PatternOptions configure the synthetic test-pattern source.
type PatternOptions struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// Pattern renders a moving colour gradient and encodes it as JPEG. It
// stands in for a real capture device and makes every frame visually
// distinct, so dropped or frozen frames are easy to spot by eye.
type Pattern struct {
	dims    core.Dimensions
	quality int
	tick    uint64
	raster  *image.RGBA
}

func newPatternSource(options map[string]interface{}, quality int) (*Pattern, error) {
	opts := PatternOptions{Width: 640, Height: 480}
	if err := mapstructure.Decode(options, &opts); err != nil {
		return nil, fmt.Errorf("source: bad pattern options: %w", err)
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("source: pattern dimensions must be positive")
	}
	return &Pattern{
		dims:    core.Dimensions{Width: opts.Width, Height: opts.Height},
		quality: quality,
		raster:  image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height)),
	}, nil
}

func (p *Pattern) Dimensions() core.Dimensions { return p.dims }

func (p *Pattern) Next() ([]byte, error) {
	p.tick++
	shift := uint8(p.tick * 3)
	for y := 0; y < p.dims.Height; y++ {
		for x := 0; x < p.dims.Width; x++ {
			p.raster.SetRGBA(x, y, color.RGBA{
				R: uint8(x) + shift,
				G: uint8(y) - shift,
				B: uint8(x+y) + shift/2,
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, p.raster, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *Pattern) Close() error { return nil }
