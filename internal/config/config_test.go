package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centavohq/centavo/internal/common"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("auth.jwt_secret", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, time.Hour, cfg.SweepInterval)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
}

func TestLoad_Overrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("auth.jwt_secret", "test-secret")
	viper.Set("server.addr", ":9090")
	viper.Set("database.path", "/tmp/test.db")
	viper.Set("scheduler.sweep_interval", "15m")
	viper.Set("logging.format", "json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ServerAddr)
	assert.Equal(t, "/tmp/test.db", cfg.DatabasePath)
	assert.Equal(t, 15*time.Minute, cfg.SweepInterval)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestRequireAuth(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err, "loading without a secret is fine for sweep and migrate")
	assert.ErrorIs(t, cfg.RequireAuth(), common.ErrMissingConfig)

	cfg.JWTSecret = "secret"
	assert.NoError(t, cfg.RequireAuth())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid",
			mutate: func(_ *Config) {},
		},
		{
			name:    "sweep interval too short",
			mutate:  func(c *Config) { c.SweepInterval = 10 * time.Second },
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.LogFormat = "yaml" },
			wantErr: common.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				JWTSecret:     "secret",
				LogFormat:     "text",
				SweepInterval: time.Hour,
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "data.db"), ExpandPath("~/data.db"))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, "", ExpandPath(""))

	t.Setenv("CENTAVO_TEST_DIR", "/srv/centavo")
	assert.Equal(t, "/srv/centavo/data.db", ExpandPath("$CENTAVO_TEST_DIR/data.db"))
}
