package source

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/argusview/argus/internal/core"
)

// DirOptions configure the directory source.
type DirOptions struct {
	Dir string `mapstructure:"dir"`
}

// Dir replays the JPEG files of a directory in name order, looping
// forever. Dimensions are taken from the first image.
type Dir struct {
	files [][]byte
	dims  core.Dimensions
	next  int
}

func newDirSource(options map[string]interface{}) (*Dir, error) {
	var opts DirOptions
	if err := mapstructure.Decode(options, &opts); err != nil {
		return nil, fmt.Errorf("source: bad dir options: %w", err)
	}
	if opts.Dir == "" {
		return nil, fmt.Errorf("source: dir source requires dir")
	}

	entries, err := os.ReadDir(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".jpg" || ext == ".jpeg" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("source: no jpeg files in %s", opts.Dir)
	}

	d := &Dir{}
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(opts.Dir, name))
		if err != nil {
			return nil, fmt.Errorf("source: %w", err)
		}
		d.files = append(d.files, data)
	}

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(d.files[0]))
	if err != nil {
		return nil, fmt.Errorf("source: %s is not a valid jpeg: %w", names[0], err)
	}
	d.dims = core.Dimensions{Width: cfg.Width, Height: cfg.Height}

	return d, nil
}

func (d *Dir) Dimensions() core.Dimensions { return d.dims }

func (d *Dir) Next() ([]byte, error) {
	data := d.files[d.next]
	d.next = (d.next + 1) % len(d.files)
	return data, nil
}

func (d *Dir) Close() error { return nil }
