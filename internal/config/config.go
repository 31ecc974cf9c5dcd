// Package config loads engine and server configuration from the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config holds configuration for the server and engine.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `env:"MPROC_ADDR" envDefault:":8080"`
	// BaseDir is the directory under which template payloads and run
	// directories are maintained. Defaults to ~/.mproc.
	BaseDir string `env:"MPROC_BASE_DIR"`
	// DBPath is the SQLite database path. Defaults to <BaseDir>/mproc.db.
	// Use ":memory:" for testing.
	DBPath string `env:"MPROC_DB"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"MPROC_LOG_LEVEL" envDefault:"info"`
	// LogFormat is "text" or "json".
	LogFormat string `env:"MPROC_LOG_FORMAT" envDefault:"text"`
}

// Load reads configuration from the environment and fills in derived
// defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.BaseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.BaseDir = filepath.Join(home, ".mproc")
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.BaseDir, "mproc.db")
	}
	return cfg, nil
}

// TemplateDir returns the directory template payloads are stored in.
func (c Config) TemplateDir() string {
	return filepath.Join(c.BaseDir, "templates")
}

// RunDir returns the directory run workspaces are created in.
func (c Config) RunDir() string {
	return filepath.Join(c.BaseDir, "runs")
}
