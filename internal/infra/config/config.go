// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Aggregation AggregationConfig `yaml:"aggregation"`
	Calculation CalculationConfig `yaml:"calculation"`
	Playback    PlaybackConfig    `yaml:"playback"`
	Report      ReportConfig      `yaml:"report"`
	Messages    MessagesConfig    `yaml:"messages"`
}

// ServerConfig represents RPC server configuration.
type ServerConfig struct {
	Addr               string      `yaml:"addr" default:":8080"`
	ShutdownTimeoutSec int         `yaml:"shutdown_timeout_sec" default:"10" validate:"gte=1"`
	Hooks              HooksConfig `yaml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// CatalogConfig represents YouTube Data API configuration.
type CatalogConfig struct {
	BaseURL           string  `yaml:"base_url" default:"https://www.googleapis.com/youtube/v3" validate:"required,url"`
	APIKey            string  `yaml:"api_key" validate:"required"`
	AccessToken       string  `yaml:"access_token"`
	PageSize          int     `yaml:"page_size" default:"50" validate:"gte=1,lte=50"`
	TimeoutSec        int     `yaml:"timeout_sec" default:"10" validate:"gte=1"`
	MaxRetries        int     `yaml:"max_retries" default:"3" validate:"gte=1,lte=10"`
	RetryDelayMs      int     `yaml:"retry_delay_ms" default:"1000" validate:"gte=0"`
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"` // 0 disables pacing
	BreakerFailures   uint32  `yaml:"breaker_failures" default:"5" validate:"gte=1"`
	BreakerTimeoutSec int     `yaml:"breaker_timeout_sec" default:"30" validate:"gte=1"`
}

// AggregationConfig controls how item durations are resolved.
type AggregationConfig struct {
	// Concurrency > 1 resolves the in-range items of one page in parallel.
	Concurrency int `yaml:"concurrency" default:"1" validate:"gte=1,lte=50"`
	// BatchSize > 1 looks up several videos per catalog call.
	BatchSize int `yaml:"batch_size" default:"1" validate:"gte=1,lte=50"`
}

// CalculationConfig limits individual calculations.
type CalculationConfig struct {
	TimeoutSec  int `yaml:"timeout_sec" default:"120" validate:"gte=1"`
	MaxInFlight int `yaml:"max_in_flight" default:"4" validate:"gte=1"`
}

// PlaybackConfig bounds the accepted playback speed.
type PlaybackConfig struct {
	MinSpeed float64 `yaml:"min_speed" default:"0.25" validate:"gt=0"`
	MaxSpeed float64 `yaml:"max_speed" default:"3" validate:"gt=0"`
}

// ReportConfig represents report and share link configuration.
type ReportConfig struct {
	ShareBaseURL string `yaml:"share_base_url" default:"https://playtime.example.com/" validate:"required,url"`
	Title        string `yaml:"title" default:"YouTube Playlist Duration Report"`
}

// MessagesConfig represents user-facing messages.
type MessagesConfig struct {
	InvalidInput string `yaml:"invalid_input" default:"Please enter a valid YouTube playlist URL."`
	NotFound     string `yaml:"not_found" default:"The playlist could not be found. Please check the URL and try again."`
	Network      string `yaml:"network" default:"Network error occurred. Please check your internet connection and try again."`
	Busy         string `yaml:"busy" default:"Too many calculations are running. Please try again shortly."`
	DefaultError string `yaml:"default_error" default:"An error occurred while calculating duration. Please try again later."`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse builds a configuration from YAML bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		c.Catalog.APIKey = v
	}
	if v := os.Getenv("YOUTUBE_ACCESS_TOKEN"); v != "" {
		c.Catalog.AccessToken = v
	}
	if v := os.Getenv("PLAYTIME_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if c.Playback.MinSpeed > c.Playback.MaxSpeed {
		return errors.Newf("playback min_speed (%g) must not exceed max_speed (%g)",
			c.Playback.MinSpeed, c.Playback.MaxSpeed)
	}

	return nil
}

// CatalogTimeout returns the per-request catalog timeout.
func (c *Config) CatalogTimeout() time.Duration {
	return time.Duration(c.Catalog.TimeoutSec) * time.Second
}

// CalculationTimeout returns the overall deadline of one calculation.
func (c *Config) CalculationTimeout() time.Duration {
	return time.Duration(c.Calculation.TimeoutSec) * time.Second
}

// ShutdownTimeout returns the graceful shutdown deadline.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSec) * time.Second
}
