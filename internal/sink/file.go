package sink

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/mitchellh/mapstructure"
)

// FileOptions configure the file sink.
type FileOptions struct {
	Dir     string `mapstructure:"dir"`
	Format  string `mapstructure:"format"`  // "jpeg" or "png"
	Quality int    `mapstructure:"quality"` // JPEG quality, 1-100
	Keep    int    `mapstructure:"keep"`    // 0 = overwrite latest.<ext> only
}

// File writes each blitted frame to disk, either as a rolling sequence or
// as a single continuously overwritten latest image.
type File struct {
	opts FileOptions
	seq  atomic.Uint64
}

func newFileSink(options map[string]interface{}) (*File, error) {
	opts := FileOptions{Format: "jpeg", Quality: 70}
	if err := mapstructure.Decode(options, &opts); err != nil {
		return nil, fmt.Errorf("sink: bad file options: %w", err)
	}
	if opts.Dir == "" {
		return nil, fmt.Errorf("sink: file sink requires dir")
	}
	if opts.Format != "jpeg" && opts.Format != "png" {
		return nil, fmt.Errorf("sink: unsupported format %q (must be jpeg or png)", opts.Format)
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("sink: %w", err)
	}
	return &File{opts: opts}, nil
}

func (f *File) Blit(img image.Image, width, height int) error {
	scaled := scale(img, width, height)

	name := "latest." + f.ext()
	if f.opts.Keep > 0 {
		n := f.seq.Add(1)
		name = fmt.Sprintf("frame_%06d.%s", n%uint64(f.opts.Keep), f.ext())
	}

	// Write to a temp file first so readers never observe a torn image.
	path := filepath.Join(f.opts.Dir, name)
	tmp, err := os.CreateTemp(f.opts.Dir, ".argus-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	switch f.opts.Format {
	case "png":
		err = png.Encode(tmp, scaled)
	default:
		err = jpeg.Encode(tmp, scaled, &jpeg.Options{Quality: f.opts.Quality})
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (f *File) Close() error { return nil }

func (f *File) ext() string {
	if f.opts.Format == "png" {
		return "png"
	}
	return "jpg"
}
