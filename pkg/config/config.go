package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g. TMEDIA_TRACKER_URL
const EnvPrefix = "TMEDIA_"

type Config struct {
	// Tracker connection
	TrackerURL            string `yaml:"tracker_url" env:"TRACKER_URL"`
	SessionID             string `yaml:"session_id" env:"SESSION_ID"`
	UserAgent             string `yaml:"user_agent" env:"USER_AGENT"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds" env:"REQUEST_TIMEOUT_SECONDS"`

	// Search Settings
	MediawikiUsername string `yaml:"mediawiki_username" env:"MEDIAWIKI_USERNAME"`
	SearchLimit       int    `yaml:"search_limit" env:"SEARCH_LIMIT"`
	DefaultMode       string `yaml:"default_mode" env:"DEFAULT_MODE"`
	Category          string `yaml:"category" env:"CATEGORY"`
	ThumbWidth        int    `yaml:"thumb_width" env:"THUMB_WIDTH"`

	// Submission
	DetachWorkers int    `yaml:"detach_workers" env:"DETACH_WORKERS"`
	AckAddPath    string `yaml:"ack_add_path" env:"ACK_ADD_PATH"`
	AckRemovePath string `yaml:"ack_remove_path" env:"ACK_REMOVE_PATH"`

	// UI Settings
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL"`
	ColorTheme  string `yaml:"color_theme" env:"COLOR_THEME"`
	OpenBrowser bool   `yaml:"open_browser" env:"OPEN_BROWSER"`
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		TrackerURL:            "",
		SessionID:             "",
		UserAgent:             "tmedia",
		RequestTimeoutSeconds: 30,
		MediawikiUsername:     "",
		SearchLimit:           25,
		DefaultMode:           "user",
		Category:              "",
		ThumbWidth:            200,
		DetachWorkers:         4,
		AckAddPath:            "/ticket/{ticket}/edit/{ack_type}/add/",
		AckRemovePath:         "/ticket/{ticket}/edit/acks/{ack}/delete/",
		LogLevel:              "info",
		ColorTheme:            "auto",
		OpenBrowser:           true,
	}
}

// Load reads configuration from the specified file path and applies
// TMEDIA_* environment overrides on top
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// LoadFile reads only the file, without environment overrides.
// Use it before Save so env values are not written back.
func LoadFile(path string) (*Config, error) {
	// Start with default config
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
		// Missing file means defaults
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults restores essential values left empty by the file or environment
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	c.TrackerURL = strings.TrimRight(c.TrackerURL, "/")
	if c.UserAgent == "" {
		c.UserAgent = defaults.UserAgent
	}
	if c.RequestTimeoutSeconds <= 0 {
		c.RequestTimeoutSeconds = defaults.RequestTimeoutSeconds
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = defaults.SearchLimit
	}
	if !isValidMode(c.DefaultMode) {
		c.DefaultMode = defaults.DefaultMode
	}
	if c.ThumbWidth <= 0 {
		c.ThumbWidth = defaults.ThumbWidth
	}
	if c.DetachWorkers <= 0 {
		c.DetachWorkers = defaults.DetachWorkers
	}
	if c.AckAddPath == "" {
		c.AckAddPath = defaults.AckAddPath
	}
	if c.AckRemovePath == "" {
		c.AckRemovePath = defaults.AckRemovePath
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.ColorTheme == "" {
		c.ColorTheme = defaults.ColorTheme
	}
}

// RequestTimeout returns the HTTP timeout as a duration
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Validate reports settings that make the tracker unreachable
func (c *Config) Validate() error {
	if c.TrackerURL == "" {
		return fmt.Errorf("tracker_url is not set (use `tmedia config set tracker_url <url>` or %sTRACKER_URL)", EnvPrefix)
	}
	if !strings.HasPrefix(c.TrackerURL, "http://") && !strings.HasPrefix(c.TrackerURL, "https://") {
		return fmt.Errorf("tracker_url must start with http:// or https://, got %q", c.TrackerURL)
	}
	return nil
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file holds the session cookie
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// isValidMode checks if the default search mode is valid
func isValidMode(mode string) bool {
	validModes := []string{"user", "filename"}
	for _, valid := range validModes {
		if mode == valid {
			return true
		}
	}
	return false
}

// Keys returns every configuration key in file order
func Keys() []string {
	var doc yaml.Node
	data, _ := yaml.Marshal(DefaultConfig())
	if err := yaml.Unmarshal(data, &doc); err != nil || len(doc.Content) == 0 {
		return nil
	}
	mapping := doc.Content[0]
	keys := make([]string, 0, len(mapping.Content)/2)
	for i := 0; i < len(mapping.Content); i += 2 {
		keys = append(keys, mapping.Content[i].Value)
	}
	return keys
}

// Set assigns a single key from its string form, e.g. Set("search_limit", "50")
func (c *Config) Set(key, value string) error {
	known := false
	for _, k := range Keys() {
		if k == key {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown config key %q", key)
	}

	node := &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: key},
			{Kind: yaml.ScalarNode, Value: value},
		},
	}
	if err := node.Decode(c); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}
