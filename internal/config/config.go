// Package config holds the runtime settings of the scraper.
//
// Every setting has a default that reproduces a plain run against srrc.ch, so the
// binary needs no flags. Values are layered with viper: defaults, then an optional
// YAML file, then SRRC_* environment variables, then command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/raphaelguye/srrc-calendar-scraper/internal/scraper"
	"github.com/spf13/viper"
)

const (
	DefaultEndpoint    = scraper.DefaultEndpoint
	DefaultUserAgent   = scraper.DefaultUserAgent
	DefaultMonths      = 24
	DefaultMaxOffset   = scraper.DefaultMaxOffset
	DefaultTimeout     = scraper.DefaultTimeout
	DefaultOutput      = "srrc_events.json"
	DefaultConcurrency = 1

	EnvPrefix = "SRRC"
)

// Config is the fully resolved configuration of a run
type Config struct {
	Endpoint    string        `mapstructure:"endpoint"`
	UserAgent   string        `mapstructure:"user_agent"`
	Months      int           `mapstructure:"months"`
	MaxOffset   int           `mapstructure:"max_offset"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Retries     int           `mapstructure:"retries"`
	Concurrency int           `mapstructure:"concurrency"`
	Output      string        `mapstructure:"output"`
	ICS         string        `mapstructure:"ics"`
	MetricsFile string        `mapstructure:"metrics_file"`
	LogLevel    string        `mapstructure:"log_level"`
	LogFormat   string        `mapstructure:"log_format"`
}

// SetDefaults registers every key with its default on v. Keys must be known to
// viper for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("endpoint", DefaultEndpoint)
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("months", DefaultMonths)
	v.SetDefault("max_offset", DefaultMaxOffset)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("retries", 0)
	v.SetDefault("concurrency", DefaultConcurrency)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("ics", "")
	v.SetDefault("metrics_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load reads the optional config file named by the "config" key and returns the
// validated configuration.
func Load(v *viper.Viper) (*Config, error) {
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return fmt.Errorf("invalid config: endpoint must not be empty")
	}
	if c.Months < 1 {
		return fmt.Errorf("invalid config: months must be at least 1, got %d", c.Months)
	}
	if c.MaxOffset < 1 {
		return fmt.Errorf("invalid config: max_offset must be at least 1, got %d", c.MaxOffset)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid config: timeout must be positive, got %s", c.Timeout)
	}
	if c.Retries < 0 {
		return fmt.Errorf("invalid config: retries must not be negative, got %d", c.Retries)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("invalid config: concurrency must be at least 1, got %d", c.Concurrency)
	}
	if strings.TrimSpace(c.Output) == "" {
		return fmt.Errorf("invalid config: output must not be empty")
	}
	return nil
}
