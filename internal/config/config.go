package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr               string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout  time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel           string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat          string        `mapstructure:"log_format" yaml:"log_format"`
	MaxMessageBytes    int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	SendBuffer         int           `mapstructure:"send_buffer" yaml:"send_buffer"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`
	OriginPatterns     []string      `mapstructure:"origin_patterns" yaml:"origin_patterns"`
	MetricsEnabled     bool          `mapstructure:"metrics_enabled" yaml:"metrics_enabled"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:               ":5003",
		ReadHeaderTimeout:  5 * time.Second,
		ShutdownTimeout:    5 * time.Second,
		LogLevel:           "info",
		LogFormat:          "console",
		MaxMessageBytes:    64 << 10,
		SendBuffer:         64,
		RateLimitPerMinute: 0,
		OriginPatterns:     nil,
		MetricsEnabled:     true,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
// MetricsEnabled is not merged since false is indistinguishable from unset.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if other.SendBuffer != 0 {
		c.SendBuffer = other.SendBuffer
	}
	if other.RateLimitPerMinute != 0 {
		c.RateLimitPerMinute = other.RateLimitPerMinute
	}
	if len(other.OriginPatterns) > 0 {
		c.OriginPatterns = other.OriginPatterns
	}
}
