package log

type LoggerConfig struct {
	Level     string           `mapstructure:"level"`
	Pattern   string           `mapstructure:"pattern"`
	Time      string           `mapstructure:"time"`
	Appenders []AppenderConfig `mapstructure:"appenders"`
}

type AppenderConfig struct {
	Type    string                 `mapstructure:"type"`
	Options map[string]interface{} `mapstructure:"options,omitempty"`
}

type FileAppenderOptions struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxAge     int    `mapstructure:"max_age"`  // days
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// DefaultConfig logs at info level to the console only.
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:   "info",
		Pattern: "%time [%level] %field%msg%n",
		Time:    "2006-01-02 15:04:05",
		Appenders: []AppenderConfig{
			{Type: "console"},
		},
	}
}
