// Package config provides configuration utilities for the application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/centavohq/centavo/internal/common"
)

// Config holds the runtime settings for the server and sweep commands.
type Config struct {
	DatabasePath  string
	ServerAddr    string
	JWTSecret     string
	APIKey        string
	LogLevel      string
	LogFormat     string
	SweepInterval time.Duration
}

// Load reads configuration from Viper (config file or CENTAVO_ env vars),
// falling back to defaults. The JWT secret has no default because a
// guessable secret would let anyone mint tokens; commands that serve or
// mint tokens call RequireAuth.
func Load() (*Config, error) {
	cfg := &Config{
		DatabasePath:  "~/.local/share/centavo/centavo.db",
		ServerAddr:    ":8080",
		LogLevel:      "info",
		LogFormat:     "text",
		SweepInterval: time.Hour,
	}

	if v := viper.GetString("database.path"); v != "" {
		cfg.DatabasePath = v
	}
	if v := viper.GetString("server.addr"); v != "" {
		cfg.ServerAddr = v
	}
	if v := viper.GetString("auth.jwt_secret"); v != "" {
		cfg.JWTSecret = v
	}
	if v := viper.GetString("auth.api_key"); v != "" {
		cfg.APIKey = v
	}
	if v := viper.GetString("logging.level"); v != "" {
		cfg.LogLevel = v
	}
	if v := viper.GetString("logging.format"); v != "" {
		cfg.LogFormat = v
	}
	if v := viper.GetDuration("scheduler.sweep_interval"); v > 0 {
		cfg.SweepInterval = v
	}

	cfg.DatabasePath = ExpandPath(cfg.DatabasePath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.SweepInterval < time.Minute {
		return fmt.Errorf("%w: scheduler.sweep_interval must be at least one minute, got %s",
			common.ErrInvalidConfig, c.SweepInterval)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: logging.format must be text or json, got %q", common.ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

// RequireAuth checks the settings that only token-issuing and serving
// commands need.
func (c *Config) RequireAuth() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: auth.jwt_secret (or CENTAVO_AUTH_JWT_SECRET) must be set", common.ErrMissingConfig)
	}
	return nil
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}
