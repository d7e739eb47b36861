// Package config loads the monitor configuration from a TOML file with
// environment variable overrides.
//
// .env files are loaded before overrides are applied, in priority order:
//
//  1. ENV_FILE (if set, only this file is loaded)
//  2. .env.local
//  3. .env
//
// Variables already present in the process environment are never replaced.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"si-notice-monitor/internal/logger"
)

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "configs/param.toml"

// Defaults.
const (
	DefaultSourceURL     = "https://www.si.t.u-tokyo.ac.jp/"
	DefaultFetchTimeout  = 30 * time.Second
	DefaultSlackTimeout  = 10 * time.Second
	DefaultStoreDriver   = "csv"
	DefaultStorePath     = "notices.csv"
	defaultSourceMode    = "http"
	defaultNotifiedCodes = "sdm,other"
)

// Config is the whole monitor configuration.
type Config struct {
	Source  SourceConfig  `toml:"source"`
	Slack   SlackConfig   `toml:"slack"`
	Storage StorageConfig `toml:"storage"`
	Log     logger.Config `toml:"log"`
}

// SourceConfig describes the announcement page.
type SourceConfig struct {
	URL       string   `toml:"url" env:"NOTICE_SOURCE_URL"`
	Mode      string   `toml:"mode" env:"FETCH_MODE"`
	Timeout   Duration `toml:"timeout"`
	UserAgent string   `toml:"user_agent"`
	// NotifyCategories are category codes whose notices are tracked.
	NotifyCategories []string `toml:"notify_categories" env:"NOTIFY_CATEGORIES"`
}

// SlackConfig describes the incoming webhook and message layout.
type SlackConfig struct {
	WebhookURL    string   `toml:"webhook_url" env:"SLACK_WEBHOOK_URL"`
	Text          string   `toml:"text"`
	DateField     string   `toml:"date_field"`
	CategoryField string   `toml:"category_field"`
	Timeout       Duration `toml:"timeout"`
}

// StorageConfig describes the snapshot store.
type StorageConfig struct {
	Driver string `toml:"driver" env:"NOTICE_STORE_DRIVER"`
	Path   string `toml:"path" env:"NOTICE_STORE_PATH"`
	// PersistOnDeliveryFailure saves the snapshot even when the webhook
	// call failed. Those notices are then not announced again.
	PersistOnDeliveryFailure *bool `toml:"persist_on_delivery_failure"`
}

// Persist reports whether to save after a failed delivery. Unset means true.
func (c StorageConfig) Persist() bool {
	return c.PersistOnDeliveryFailure == nil || *c.PersistOnDeliveryFailure
}

// Duration is a time.Duration read from strings such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Load reads path, applies defaults, then environment overrides, and
// validates the result. A missing file is not an error; everything can be
// supplied through the environment.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("load environment files: %w", err)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Path returns CONFIG_PATH or DefaultPath.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// SetDefaults fills in unset values.
func (c *Config) SetDefaults() {
	if c.Source.URL == "" {
		c.Source.URL = DefaultSourceURL
	}
	if c.Source.Mode == "" {
		c.Source.Mode = defaultSourceMode
	}
	if c.Source.Timeout.Duration <= 0 {
		c.Source.Timeout.Duration = DefaultFetchTimeout
	}
	if c.Source.NotifyCategories == nil {
		c.Source.NotifyCategories = splitList(defaultNotifiedCodes)
	}
	if c.Slack.Timeout.Duration <= 0 {
		c.Slack.Timeout.Duration = DefaultSlackTimeout
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DefaultStoreDriver
	}
	if c.Storage.Path == "" {
		c.Storage.Path = DefaultStorePath
	}
	c.Log.SetDefaults()
}
