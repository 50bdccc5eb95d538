// Package config handles assetvault configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Environment variable overrides.
const (
	EnvDatabasePath = "ASSETVAULT_DB_PATH"
	EnvLibraryURL   = "ASSETVAULT_LIBRARY_URL"
	EnvRemoteChrome = "ASSETVAULT_CHROME_URL"
	EnvHeadless     = "ASSETVAULT_HEADLESS"
	EnvEnrichAPIKey = "ASSETVAULT_BOOKS_API_KEY"
)

// Config is the top-level assetvault configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Source   SourceConfig   `yaml:"source"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Enrich   EnrichConfig   `yaml:"enrich"`
	Sync     SyncConfig     `yaml:"sync"`
}

// DatabaseConfig locates the SQLite store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SourceConfig identifies the storefront being synced.
type SourceConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// ScraperConfig controls the browser session.
type ScraperConfig struct {
	LibraryURL string `yaml:"library_url"`
	RemoteURL  string `yaml:"remote_url"`
	Headless   bool   `yaml:"headless"`
}

// EnrichConfig controls metadata enrichment.
type EnrichConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// SyncConfig controls the sync pipeline.
type SyncConfig struct {
	Workers int `yaml:"workers"`
}

// Load reads a YAML configuration file, applies defaults, then applies
// environment overrides. An empty path yields the default configuration.
func Load(path string) (*Config, error) {
	// Pre-set so an absent YAML key keeps the default while an explicit
	// headless: false survives unmarshaling.
	cfg := &Config{Scraper: ScraperConfig{Headless: true}}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		c.Database.Path = filepath.Join(home, ".assetvault", "library.db")
	}
	if c.Source.ID == "" {
		c.Source.ID = "humblebundle"
	}
	if c.Source.Name == "" {
		c.Source.Name = c.Source.ID
	}
	if c.Source.URL == "" {
		c.Source.URL = "https://www.humblebundle.com"
	}
	if c.Scraper.LibraryURL == "" {
		c.Scraper.LibraryURL = c.Source.URL + "/home/library"
	}
	if c.Sync.Workers <= 0 {
		c.Sync.Workers = 4
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDatabasePath); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvLibraryURL); v != "" {
		c.Scraper.LibraryURL = v
	}
	if v := os.Getenv(EnvRemoteChrome); v != "" {
		c.Scraper.RemoteURL = v
	}
	if v := os.Getenv(EnvHeadless); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Scraper.Headless = b
		}
	}
	if v := os.Getenv(EnvEnrichAPIKey); v != "" {
		c.Enrich.APIKey = v
		c.Enrich.Enabled = true
	}
}
