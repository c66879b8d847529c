// Package config provides configuration loading and validation for jdstudio.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Defaults applied by MergeWithDefaults.
const (
	DefaultBackendURL     = "http://localhost:5000"
	DefaultPort           = 8080
	DefaultRevealInterval = 10 * time.Millisecond
	DefaultExportTimeout  = 30 * time.Second
)

// Environment variables read by ApplyEnv.
const (
	EnvBackendURL     = "BACKEND_URL"
	EnvPort           = "JDSTUDIO_PORT"
	EnvRevealInterval = "REVEAL_INTERVAL"
	EnvExportTimeout  = "EXPORT_TIMEOUT"
	EnvChromePath     = "CHROME_PATH"
)

// Duration is a time.Duration that reads from JSON as a string ("10ms") or as whole milliseconds.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}
	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("duration must be a string like \"10ms\" or milliseconds: %w", err)
	}
	*d = Duration(time.Duration(ms) * time.Millisecond)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config represents the jdstudio configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults, environment variables or CLI flags.
type Config struct {
	BackendURL     string   `json:"backend_url,omitempty"`     // Base URL of the job-description API
	Port           int      `json:"port,omitempty"`            // Port for the local server
	RevealInterval Duration `json:"reveal_interval,omitempty"` // Delay between revealed characters
	ExportTimeout  Duration `json:"export_timeout,omitempty"`  // Upper bound for one PDF export
	ChromePath     string   `json:"chrome_path,omitempty"`     // Chrome binary for PDF export
	Verbose        bool     `json:"verbose,omitempty"`         // Print detailed debug information
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		BackendURL:     DefaultBackendURL,
		Port:           DefaultPort,
		RevealInterval: Duration(DefaultRevealInterval),
		ExportTimeout:  Duration(DefaultExportTimeout),
	}
}

// Interval returns the reveal tick interval.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.RevealInterval)
}

// Timeout returns the PDF export timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.ExportTimeout)
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides fields with any environment variables that are set.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvBackendURL); v != "" {
		c.BackendURL = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		c.Port = port
	}
	if v := os.Getenv(EnvRevealInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvRevealInterval, err)
		}
		c.RevealInterval = Duration(d)
	}
	if v := os.Getenv(EnvExportTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvExportTimeout, err)
		}
		c.ExportTimeout = Duration(d)
	}
	if v := os.Getenv(EnvChromePath); v != "" {
		c.ChromePath = v
	}
	return nil
}

// Load reads the optional config file, applies environment overrides and
// defaults, then validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.BackendURL != "" {
		u, err := url.Parse(c.BackendURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config error: 'backend_url' must be an absolute URL, got %q", c.BackendURL)
		}
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535, got %d", c.Port)
	}
	if c.RevealInterval < 0 {
		return fmt.Errorf("config error: 'reveal_interval' must be positive")
	}
	if c.ExportTimeout < 0 {
		return fmt.Errorf("config error: 'export_timeout' must be non-negative")
	}

	if c.ChromePath != "" {
		if _, err := os.Stat(c.ChromePath); os.IsNotExist(err) {
			return fmt.Errorf("config error: chrome binary not found: %s", c.ChromePath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.BackendURL == "" {
		result.BackendURL = defaults.BackendURL
	}
	if result.ChromePath == "" {
		result.ChromePath = defaults.ChromePath
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RevealInterval == 0 {
		result.RevealInterval = defaults.RevealInterval
	}
	if result.ExportTimeout == 0 {
		result.ExportTimeout = defaults.ExportTimeout
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
