// Package config handles configuration loading using viper.
package config

import (
	"time"

	"github.com/argusview/argus/internal/log"
	"github.com/argusview/argus/internal/metrics"
	"github.com/argusview/argus/internal/sink"
	"github.com/argusview/argus/internal/source"
)

// ArgusConfig is the top-level configuration.
type ArgusConfig struct {
	Logger  *log.LoggerConfig `mapstructure:"log"`
	Viewer  *ViewerConfig     `mapstructure:"viewer"`
	Server  *ServerConfig     `mapstructure:"server"`
	Metrics *metrics.Config   `mapstructure:"metrics"`
}

// ViewerConfig configures the stream viewer.
type ViewerConfig struct {
	BaseURL        string        `mapstructure:"base_url"`        // http://host:port of the stream server
	BufferCapacity int           `mapstructure:"buffer_capacity"` // intake ring size in bytes
	TickInterval   time.Duration `mapstructure:"tick_interval"`   // render tick, the display refresh stand-in
	ReportInterval time.Duration `mapstructure:"report_interval"` // FPS reporting interval
	Sink           sink.Config   `mapstructure:"sink"`
}

// ServerConfig configures the stream server.
type ServerConfig struct {
	Listen  string        `mapstructure:"listen"`
	FPS     float64       `mapstructure:"fps"`     // frame production rate
	Quality int           `mapstructure:"quality"` // JPEG quality, 1-100
	Source  source.Config `mapstructure:"source"`
}
