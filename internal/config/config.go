// ABOUTME: Configuration loading and parsing for the coven-chat client
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Defaults applied before a file is read.
const (
	DefaultBaseURL    = "http://localhost:5000/api"
	DefaultMaxEntries = 50
	DefaultFaultTTL   = 30 * time.Minute
)

// Config represents the complete coven-chat configuration
type Config struct {
	API     APIConfig     `yaml:"api" toml:"api"`
	Send    SendConfig    `yaml:"send" toml:"send"`
	Faults  FaultsConfig  `yaml:"faults" toml:"faults"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// APIConfig holds backend connection configuration
type APIConfig struct {
	BaseURL    string `yaml:"base_url" toml:"base_url"`
	Token      string `yaml:"token" toml:"token"`
	DocumentID string `yaml:"document_id" toml:"document_id"` // conversations are fetched for this document on start
}

// SendConfig holds send pipeline defaults
type SendConfig struct {
	Streaming bool `yaml:"streaming" toml:"streaming"`
}

// FaultsConfig holds fault log limits
type FaultsConfig struct {
	MaxEntries int           `yaml:"max_entries" toml:"max_entries"`
	TTL        time.Duration `yaml:"-" toml:"-"`

	// Raw string value for unmarshaling
	TTLRaw string `yaml:"ttl" toml:"ttl"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		API:     APIConfig{BaseURL: DefaultBaseURL},
		Send:    SendConfig{Streaming: true},
		Faults:  FaultsConfig{MaxEntries: DefaultMaxEntries, TTL: DefaultFaultTTL},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// DefaultPath returns the path to the client config file.
// Priority: COVEN_CHAT_CONFIG env var > XDG_CONFIG_HOME/coven/chat.yaml > ~/.config/coven/chat.yaml
func DefaultPath() string {
	if envPath := os.Getenv("COVEN_CHAT_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "chat.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "coven", "chat.yaml")
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are parsed as TOML, anything else as YAML. Values
// absent from the file keep their defaults.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default().
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must use http or https, got %q", u.Scheme)
	}

	if c.Faults.MaxEntries <= 0 {
		return fmt.Errorf("faults.max_entries must be positive")
	}
	if c.Faults.TTL < 0 {
		return fmt.Errorf("faults.ttl must not be negative")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of text, json", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.Faults.TTLRaw == "" {
		cfg.Faults.TTL = DefaultFaultTTL
		return nil
	}

	ttl, err := time.ParseDuration(cfg.Faults.TTLRaw)
	if err != nil {
		return fmt.Errorf("parsing ttl %q: %w", cfg.Faults.TTLRaw, err)
	}
	cfg.Faults.TTL = ttl
	return nil
}
