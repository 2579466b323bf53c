// Package config loads the gardenlog YAML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pbaille/gardenlog/internal/domain"
)

// Expander providers
const (
	ProviderNone      = "none"
	ProviderAnthropic = "anthropic"
)

// Config holds all gardenlog settings
type Config struct {
	// DB is the SQLite database path
	DB string `yaml:"db"`

	// Language is the default answer language (en, es)
	Language string `yaml:"language"`

	// Addr is the HTTP listen address for serve
	Addr string `yaml:"addr"`

	// ReconcileOnLoad re-tags every log from its text when the store opens
	ReconcileOnLoad bool `yaml:"reconcile_on_load"`

	Log      LogConfig      `yaml:"log"`
	Expander ExpanderConfig `yaml:"expander"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// ExpanderConfig configures the linguistic expansion backend
type ExpanderConfig struct {
	Provider string `yaml:"provider"` // none, anthropic
	Model    string `yaml:"model"`
	APIKey   string `yaml:"-"`
}

// Dir returns the gardenlog home directory
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gardenlog"
	}
	return filepath.Join(home, ".gardenlog")
}

// DefaultPath returns the default config file location
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		DB:              filepath.Join(Dir(), "gardenlog.db"),
		Language:        "en",
		Addr:            ":8080",
		ReconcileOnLoad: true,
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Expander: ExpanderConfig{
			Provider: ProviderNone,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.applyEnv()

	return cfg, nil
}

// Validate checks enumerated fields
func (c *Config) Validate() error {
	switch strings.ToLower(c.Language) {
	case "", "en", "es", "english", "spanish":
	default:
		return fmt.Errorf("invalid language %q", c.Language)
	}
	switch c.Expander.Provider {
	case "", ProviderNone, ProviderAnthropic:
	default:
		return fmt.Errorf("invalid expander provider %q", c.Expander.Provider)
	}
	switch c.Log.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}
	return nil
}

// Lang returns the configured language
func (c *Config) Lang() domain.Language {
	return domain.ParseLanguage(c.Language)
}

// Save writes the configuration to path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnv() {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.Expander.APIKey = key
	}
}
