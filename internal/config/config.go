package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the config file looked up when no -c flag is given.
const DefaultConfigPath = "docscheck.yaml"

// Config represents the application configuration
type Config struct {
	Root       string         `yaml:"root,omitempty"`       // Documentation root (CLI argument overrides)
	Strict     bool           `yaml:"strict,omitempty"`     // Exit non-zero when issues are found
	Format     string         `yaml:"format,omitempty"`     // Report format: text or json
	Extensions []string       `yaml:"extensions,omitempty"` // Markdown extensions to load
	Ignore     []string       `yaml:"ignore,omitempty"`     // Filenames excluded from the corpus (case-insensitive)
	External   ExternalConfig `yaml:"external"`
	Events     EventsConfig   `yaml:"events"`
	Watch      WatchConfig    `yaml:"watch"`
}

// ExternalConfig controls HTTP verification of external links.
type ExternalConfig struct {
	Enabled         bool   `yaml:"enabled"`
	MaxConcurrent   int    `yaml:"max_concurrent,omitempty"`
	RequestTimeout  string `yaml:"request_timeout,omitempty"`
	FollowRedirects bool   `yaml:"follow_redirects,omitempty"`
	MaxRedirects    int    `yaml:"max_redirects,omitempty"`
	UserAgent       string `yaml:"user_agent,omitempty"`
	CachePath       string `yaml:"cache_path,omitempty"` // SQLite file, empty disables the cache
	CacheTTL        string `yaml:"cache_ttl,omitempty"`
}

// EventsConfig controls broken-link event publishing over NATS.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	Debounce    string `yaml:"debounce,omitempty"`     // Delay after the last change before rechecking
	Interval    string `yaml:"interval,omitempty"`     // Periodic full revalidation, empty disables
	MetricsAddr string `yaml:"metrics_addr,omitempty"` // Prometheus listen address, empty disables
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env before expanding ${VAR} references in the YAML.
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "Loaded environment variables from .env")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

// LoadOrDefault loads the config file if it exists. A missing file at the
// default path is not an error; the tool runs fine on defaults alone.
func LoadOrDefault(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) && configPath == DefaultConfigPath {
		return Default(), nil
	}
	return Load(configPath)
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Format == "" {
		c.Format = "text"
	}
	if len(c.Extensions) == 0 {
		c.Extensions = []string{".md", ".markdown", ".mdown", ".mkd"}
	}
	if len(c.Ignore) == 0 {
		c.Ignore = []string{"CONTRIBUTING.md", "CHANGELOG.md", "LICENSE.md", "CODE_OF_CONDUCT.md", "SECURITY.md"}
	}
	if c.External.MaxConcurrent <= 0 {
		c.External.MaxConcurrent = 10
	}
	if c.External.RequestTimeout == "" {
		c.External.RequestTimeout = "10s"
	}
	if c.External.MaxRedirects <= 0 {
		c.External.MaxRedirects = 10
	}
	if c.External.UserAgent == "" {
		c.External.UserAgent = "DocsCheck-LinkVerifier/1.0"
	}
	if c.External.CacheTTL == "" {
		c.External.CacheTTL = "24h"
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "docscheck.broken_links"
	}
	if c.Watch.Debounce == "" {
		c.Watch.Debounce = "2s"
	}
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Config{
		Root:   "docs",
		Format: "text",
		External: ExternalConfig{
			Enabled:         false,
			MaxConcurrent:   10,
			RequestTimeout:  "10s",
			FollowRedirects: true,
			MaxRedirects:    10,
			CachePath:       ".docscheck-cache.db",
			CacheTTL:        "24h",
		},
		Events: EventsConfig{
			Enabled: false,
			URL:     "nats://localhost:4222",
			Subject: "docscheck.broken_links",
		},
		Watch: WatchConfig{
			Debounce:    "2s",
			Interval:    "1h",
			MetricsAddr: ":9105",
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
