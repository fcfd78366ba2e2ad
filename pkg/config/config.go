// Package config loads the optional depcheck configuration file.
//
// The file is TOML, looked up at ~/.config/depcheck/config.toml unless a
// path is given explicitly. A missing file is not an error: every field has
// a production default and the file only overrides.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/nsanches/depcheck/pkg/errors"
)

const appName = "depcheck"

// Config holds the tool configuration.
type Config struct {
	NVD    NVDConfig    `toml:"nvd"`
	Audit  AuditConfig  `toml:"audit"`
	Server ServerConfig `toml:"server"`
}

// NVDConfig tunes the remote vulnerability-database client.
type NVDConfig struct {
	BaseURL        string `toml:"base_url"`
	ResultsPerPage int    `toml:"results_per_page"`
	RequestDelayMS int    `toml:"request_delay_ms"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	RetryAttempts  int    `toml:"retry_attempts"`
}

// AuditConfig tunes the local audit tool providers.
type AuditConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// ServerConfig configures the report server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		NVD: NVDConfig{
			ResultsPerPage: 5,
			RequestDelayMS: 600,
			TimeoutSeconds: 10,
			RetryAttempts:  1,
		},
		Audit: AuditConfig{
			TimeoutSeconds: 30,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads the config file at path, or the default location when path is
// empty. A missing file yields the defaults; a file that exists but cannot
// be parsed is an error, so typos do not silently fall back.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = defaultPath(); err != nil {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing %s", path)
	}
	return cfg, nil
}

// RequestDelay returns the configured inter-request delay.
func (c NVDConfig) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelayMS) * time.Millisecond
}

// Timeout returns the configured HTTP timeout.
func (c NVDConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Timeout returns the configured subprocess timeout.
func (c AuditConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// defaultPath returns ~/.config/depcheck/config.toml, honoring
// XDG_CONFIG_HOME.
func defaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
