// Package config provides configuration management for plancrawl.
// It handles loading, validation, and access to configuration values from
// YAML files and environment variables via viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jonesrussell/plancrawl/internal/enrichment"
	"github.com/jonesrussell/plancrawl/internal/fetcher"
	"github.com/jonesrussell/plancrawl/internal/orchestrator"
)

// Default configuration values
const (
	DefaultTargetsFile  = "targets.yml"
	DefaultOutputDir    = "output"
	DefaultOutputFormat = "json"
	DefaultLogLevel     = "info"
	DefaultLogEncoding  = "console"
)

// envPrefix namespaces the environment variables viper binds.
const envPrefix = "PLANCRAWL"

// FetcherConfig holds HTTP fetch settings.
type FetcherConfig struct {
	// MaxRetries is the number of retries after the initial attempt
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
	// Timeout is the total per-request timeout
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// ConnectTimeout bounds connection establishment
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`
	// BackoffBase is the first retry delay, doubled per attempt
	BackoffBase time.Duration `mapstructure:"backoff_base" yaml:"backoff_base"`
	// UserAgent overrides the default browser-like user agent
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
}

// Validate validates the fetcher configuration.
func (c *FetcherConfig) Validate() error {
	if c.MaxRetries < 0 {
		return errors.New("max_retries must be non-negative")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.ConnectTimeout <= 0 {
		return errors.New("connect_timeout must be positive")
	}
	if c.BackoffBase <= 0 {
		return errors.New("backoff_base must be positive")
	}
	return nil
}

// EnrichmentConfig holds reputation lookup settings.
type EnrichmentConfig struct {
	// Enabled turns the reputation lookup on
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// BaseURL is the search endpoint queried per plan name
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// Timeout bounds each lookup request
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Validate validates the enrichment configuration.
func (c *EnrichmentConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.BaseURL == "" {
		return errors.New("base_url must be set when enrichment is enabled")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}

// RunConfig holds run-level orchestration settings.
type RunConfig struct {
	// MaxConcurrency caps concurrent target pipelines
	MaxConcurrency int `mapstructure:"max_concurrency" yaml:"max_concurrency"`
	// TargetsFile is the path to the target definitions
	TargetsFile string `mapstructure:"targets_file" yaml:"targets_file"`
	// OutputDir is the directory result files are written to
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	// OutputFormat selects the export format, json or csv
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`
}

// Validate validates the run configuration.
func (c *RunConfig) Validate() error {
	if c.MaxConcurrency < 1 {
		return errors.New("max_concurrency must be positive")
	}
	if c.MaxConcurrency > orchestrator.DefaultMaxConcurrency {
		return fmt.Errorf("max_concurrency must not exceed %d", orchestrator.DefaultMaxConcurrency)
	}
	if c.TargetsFile == "" {
		return errors.New("targets_file must be set")
	}
	if c.OutputFormat != "json" && c.OutputFormat != "csv" {
		return fmt.Errorf("output_format must be json or csv, got %q", c.OutputFormat)
	}
	return nil
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is the minimum level to emit: debug, info, warn, or error
	Level string `mapstructure:"level" yaml:"level"`
	// Development enables development-friendly output
	Development bool `mapstructure:"development" yaml:"development"`
	// Encoding selects console or json output
	Encoding string `mapstructure:"encoding" yaml:"encoding"`
}

// Validate validates the logger configuration.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Level)
	}
	switch c.Encoding {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log encoding %q", c.Encoding)
	}
	return nil
}

// Config represents the application configuration.
type Config struct {
	Fetcher    FetcherConfig    `mapstructure:"fetcher" yaml:"fetcher"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment" yaml:"enrichment"`
	Run        RunConfig        `mapstructure:"run" yaml:"run"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
}

// Validate validates the full configuration.
func (c *Config) Validate() error {
	if err := c.Fetcher.Validate(); err != nil {
		return fmt.Errorf("fetcher: %w", err)
	}
	if err := c.Enrichment.Validate(); err != nil {
		return fmt.Errorf("enrichment: %w", err)
	}
	if err := c.Run.Validate(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// setDefaults registers every default on the viper instance so partial
// config files and bare environments still validate.
func setDefaults(v *viper.Viper) {
	v.SetDefault("fetcher.max_retries", fetcher.DefaultMaxRetries)
	v.SetDefault("fetcher.timeout", fetcher.DefaultTimeout)
	v.SetDefault("fetcher.connect_timeout", fetcher.DefaultConnectTimeout)
	v.SetDefault("fetcher.backoff_base", fetcher.DefaultBackoffBase)
	v.SetDefault("fetcher.user_agent", fetcher.DefaultUserAgent)

	v.SetDefault("enrichment.enabled", true)
	v.SetDefault("enrichment.base_url", enrichment.DefaultBaseURL)
	v.SetDefault("enrichment.timeout", enrichment.DefaultTimeout)

	v.SetDefault("run.max_concurrency", orchestrator.DefaultMaxConcurrency)
	v.SetDefault("run.targets_file", DefaultTargetsFile)
	v.SetDefault("run.output_dir", DefaultOutputDir)
	v.SetDefault("run.output_format", DefaultOutputFormat)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.development", false)
	v.SetDefault("log.encoding", DefaultLogEncoding)
}

// Load loads configuration from the optional file at path, layered over
// defaults and PLANCRAWL_* environment variables. An empty path skips the
// file and a missing file at an explicit path is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
