package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/candlewaker/notify"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:8765", cfg.API.Addr)
	assert.Equal(t, 10, cfg.Countdown.UrgentSeconds)
	assert.Equal(t, notify.SoundDefault, cfg.Notify.Sound)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "missing data dir",
			mutate:  func(c *Config) { c.DataDir = " " },
			wantErr: true,
			errMsg:  "data_dir is required",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: true,
			errMsg:  "log.level",
		},
		{
			name:    "custom sound without path",
			mutate:  func(c *Config) { c.Notify.Sound = notify.SoundCustom },
			wantErr: true,
			errMsg:  "custom_sound_path",
		},
		{
			name:    "missing api addr",
			mutate:  func(c *Config) { c.API.Addr = "" },
			wantErr: true,
			errMsg:  "api.addr is required",
		},
		{
			name:    "negative urgent seconds",
			mutate:  func(c *Config) { c.Countdown.UrgentSeconds = -1 },
			wantErr: true,
			errMsg:  "countdown.urgent_seconds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.DataDir = filepath.Join(tmpDir, "data")
			cfg.Notify.TTSEnabled = true
			cfg.API.AllowedOrigins = []string{"http://localhost:5173"}
			path := filepath.Join(tmpDir, "sub", "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))

			_, err := os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)

			assert.Equal(t, cfg.DataDir, loaded.DataDir)
			assert.True(t, loaded.Notify.TTSEnabled)
			assert.Equal(t, cfg.API.AllowedOrigins, loaded.API.AllowedOrigins)
			assert.Equal(t, cfg.Countdown.UrgentSeconds, loaded.Countdown.UrgentSeconds)
		})
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: /tmp/cw\nlog:\n  level: debug\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cw", cfg.DataDir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:8765", cfg.API.Addr)
	assert.Equal(t, filepath.Join("/tmp/cw", "candlewaker.sqlite"), cfg.Database())
	assert.Equal(t, filepath.Join("/tmp/cw", "trade_images"), cfg.Images())
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvDataDir, dir)
	t.Setenv(EnvDB, filepath.Join(dir, "other.db"))
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvAPIAddr, "127.0.0.1:9999")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, "other.db"), cfg.Database())
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:9999", cfg.API.Addr)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)

	_, err = Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}
