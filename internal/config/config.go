// Package config loads the client configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to talk to the inspection backend.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// BackendConfig configures access to the inspection REST API.
type BackendConfig struct {
	BaseURL string        `yaml:"baseURL"`
	Timeout time.Duration `yaml:"timeout"`
}

// AuthConfig locates the session credentials. The token is injected into
// the API client at startup; it is never read from ambient global state
// by request code.
type AuthConfig struct {
	TokenFile string `yaml:"tokenFile"`
	User      string `yaml:"user"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// DefaultPath returns the conventional config location.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "thermo-inspect", "config.yaml")
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist. Environment variables THERMO_BACKEND_URL,
// THERMO_TOKEN and THERMO_USER override the file.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Backend: BackendConfig{
			BaseURL: "http://localhost:8085",
			Timeout: 15 * time.Second,
		},
		Logging: LoggingConfig{Level: "info"},
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// defaults apply
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if v := os.Getenv("THERMO_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("THERMO_USER"); v != "" {
		cfg.Auth.User = v
	}
	if cfg.Backend.Timeout <= 0 {
		cfg.Backend.Timeout = 15 * time.Second
	}
	return cfg, nil
}

// Token resolves the session token: the THERMO_TOKEN environment variable
// wins, then the configured token file. An empty result means the client
// runs unauthenticated (useful against the local mock backend).
func (c *Config) Token() (string, error) {
	if v := os.Getenv("THERMO_TOKEN"); v != "" {
		return v, nil
	}
	if c.Auth.TokenFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.Auth.TokenFile)
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return string(trimNewline(data)), nil
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}
