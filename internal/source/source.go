// Package source implements server-side frame producers. A source yields
// one JPEG-encoded payload per call; the server owns the pacing loop and
// the fan-out to connected clients.
package source

import (
	"fmt"

	"github.com/argusview/argus/internal/core"
)

// Source produces encoded frames for the stream server.
type Source interface {
	// Dimensions returns the fixed raster size of this source, served on
	// the dimensions endpoint before streaming starts.
	Dimensions() core.Dimensions
	// Next returns the next JPEG-encoded frame payload. Called from the
	// server's produce loop goroutine only.
	Next() ([]byte, error)
	// Close releases source resources. Idempotent.
	Close() error
}

// Config selects a source implementation and its options.
type Config struct {
	Type    string                 `mapstructure:"type"`
	Options map[string]interface{} `mapstructure:"options"`
}

// New builds the source named by cfg.Type. quality is the JPEG quality
// used by sources that encode their own frames.
func New(cfg Config, quality int) (Source, error) {
	switch cfg.Type {
	case "", "pattern":
		return newPatternSource(cfg.Options, quality)
	case "dir":
		return newDirSource(cfg.Options)
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrSourceNotFound, cfg.Type)
	}
}
