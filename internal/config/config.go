// Package config defines the crawler configuration and loads it from
// files and environment variables via Viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/standingshq/leaguecrawl/internal/logger"
)

// Default configuration values.
const (
	DefaultUserAgent         = "LeagueCrawl/1.0"
	DefaultRequestTimeout    = 30 * time.Second
	DefaultMaxRetries        = 3
	DefaultRetryDelay        = 2 * time.Second
	DefaultBackoffMultiplier = 2.0
	DefaultRateLimitMax      = 10
	DefaultRateLimitWindow   = time.Minute
	DefaultRenderTimeout     = 10 * time.Second
	DefaultSchedule          = "0 */6 * * *"
)

var (
	// ErrMissingBaseURL indicates no base URL was configured
	ErrMissingBaseURL = errors.New("base_url is required")
	// ErrNoLeagues indicates no league IDs were configured
	ErrNoLeagues = errors.New("at least one league id is required")
)

// ElasticsearchConfig holds the document store connection settings.
type ElasticsearchConfig struct {
	Addresses      []string `mapstructure:"addresses"       yaml:"addresses"`
	Username       string   `mapstructure:"username"        yaml:"username"`
	Password       string   `mapstructure:"password"        yaml:"password"`
	APIKey         string   `mapstructure:"api_key"         yaml:"api_key"`
	StandingsIndex string   `mapstructure:"standings_index" yaml:"standings_index"`
	ActivityIndex  string   `mapstructure:"activity_index"  yaml:"activity_index"`
}

// Config holds the full crawler configuration.
type Config struct {
	BaseURL           string              `mapstructure:"base_url"           yaml:"base_url"`
	LeagueIDs         []string            `mapstructure:"league_ids"         yaml:"league_ids"`
	UserAgent         string              `mapstructure:"user_agent"         yaml:"user_agent"`
	RequestTimeout    time.Duration       `mapstructure:"request_timeout"    yaml:"request_timeout"`
	MaxRetries        int                 `mapstructure:"max_retries"        yaml:"max_retries"`
	RetryDelay        time.Duration       `mapstructure:"retry_delay"        yaml:"retry_delay"`
	BackoffMultiplier float64             `mapstructure:"backoff_multiplier" yaml:"backoff_multiplier"`
	RateLimitMax      int                 `mapstructure:"rate_limit_max"     yaml:"rate_limit_max"`
	RateLimitWindow   time.Duration       `mapstructure:"rate_limit_window"  yaml:"rate_limit_window"`
	RenderTimeout     time.Duration       `mapstructure:"render_timeout"     yaml:"render_timeout"`
	Schedule          string              `mapstructure:"schedule"           yaml:"schedule"`
	Elasticsearch     ElasticsearchConfig `mapstructure:"elasticsearch"      yaml:"elasticsearch"`
	Log               logger.Config       `mapstructure:"log"                yaml:"log"`
}

// WithDefaults returns a copy of the config with default values applied for zero-value fields.
func (c Config) WithDefaults() Config {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.BackoffMultiplier < 1 {
		c.BackoffMultiplier = DefaultBackoffMultiplier
	}
	if c.RateLimitMax <= 0 {
		c.RateLimitMax = DefaultRateLimitMax
	}
	if c.RateLimitWindow <= 0 {
		c.RateLimitWindow = DefaultRateLimitWindow
	}
	if c.RenderTimeout <= 0 {
		c.RenderTimeout = DefaultRenderTimeout
	}
	if c.Schedule == "" {
		c.Schedule = DefaultSchedule
	}
	if len(c.Elasticsearch.Addresses) == 0 {
		c.Elasticsearch.Addresses = []string{"http://localhost:9200"}
	}
	if c.Elasticsearch.StandingsIndex == "" {
		c.Elasticsearch.StandingsIndex = "standings"
	}
	if c.Elasticsearch.ActivityIndex == "" {
		c.Elasticsearch.ActivityIndex = "crawl_activity"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Encoding == "" {
		c.Log.Encoding = "console"
	}
	return c
}

// Validate checks that the configuration can drive a crawl.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if len(c.LeagueIDs) == 0 {
		return ErrNoLeagues
	}
	return nil
}

// Load builds a Config from the current Viper state, applies defaults,
// and validates it.
func Load() (Config, error) {
	var cfg Config

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: &cfg,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return Config{}, fmt.Errorf("failed to create config decoder: %w", err)
	}

	if decodeErr := decoder.Decode(viper.AllSettings()); decodeErr != nil {
		return Config{}, fmt.Errorf("failed to decode configuration: %w", decodeErr)
	}

	cfg = cfg.WithDefaults()
	if validateErr := cfg.Validate(); validateErr != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return cfg, nil
}
