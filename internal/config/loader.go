package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/argusview/argus/internal/log"
	"github.com/argusview/argus/internal/metrics"
)

// Load reads the configuration file at path, overlays ARGUS_* environment
// variables and fills defaults for anything left unset.
func Load(path string) (*ArgusConfig, error) {
	v := viper.New()

	dir := filepath.Dir(path)
	filename := filepath.Base(path)
	fileExt := filepath.Ext(filename)
	nameWithoutExt := strings.TrimSuffix(filename, fileExt)

	v.SetConfigName(nameWithoutExt)
	v.SetConfigType(strings.TrimPrefix(fileExt, "."))
	v.AddConfigPath(dir)

	v.SetEnvPrefix("ARGUS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ArgusConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&config)
	return &config, nil
}

// Default returns a configuration with all defaults applied, used when no
// config file is given.
func Default() *ArgusConfig {
	var config ArgusConfig
	applyDefaults(&config)
	return &config
}

func applyDefaults(config *ArgusConfig) {
	if config.Logger == nil {
		config.Logger = log.DefaultConfig()
	}

	if config.Viewer == nil {
		config.Viewer = &ViewerConfig{}
	}
	if config.Viewer.BaseURL == "" {
		config.Viewer.BaseURL = "http://127.0.0.1:5074"
	}
	if config.Viewer.BufferCapacity <= 0 {
		config.Viewer.BufferCapacity = 10 * 1024 * 1024
	}
	if config.Viewer.TickInterval <= 0 {
		config.Viewer.TickInterval = 16 * time.Millisecond // ~60 Hz display
	}
	if config.Viewer.ReportInterval <= 0 {
		config.Viewer.ReportInterval = time.Second
	}

	if config.Server == nil {
		config.Server = &ServerConfig{}
	}
	if config.Server.Listen == "" {
		config.Server.Listen = "0.0.0.0:5074"
	}
	if config.Server.FPS <= 0 {
		config.Server.FPS = 30
	}
	if config.Server.Quality <= 0 {
		config.Server.Quality = 70
	}
	if config.Server.Source.Type == "" {
		config.Server.Source.Type = "pattern"
	}

	if config.Metrics == nil {
		config.Metrics = &metrics.Config{}
	}
	if config.Metrics.Listen == "" {
		config.Metrics.Listen = "0.0.0.0:9216"
	}
	if config.Metrics.Path == "" {
		config.Metrics.Path = "/metrics"
	}
}
