package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "http://127.0.0.1:5000/api", cfg.API.BaseURL)
	assert.Zero(t, cfg.API.Timeout)
	assert.Equal(t, "BANKNIFTY", cfg.Client.Symbol)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "@every 5m", cfg.Watch.Schedule)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing base url",
			mutate:  func(c *Config) { c.API.BaseURL = "" },
			wantErr: true,
			errMsg:  "api.base_url is required",
		},
		{
			name:    "bad base url",
			mutate:  func(c *Config) { c.API.BaseURL = "not a url" },
			wantErr: true,
			errMsg:  "api.base_url must be a valid URL",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.API.Timeout = -time.Second },
			wantErr: true,
			errMsg:  "api.timeout must not be negative",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: true,
			errMsg:  "log.level must be one of [debug info warn error]",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: true,
			errMsg:  "log.format must be one of",
		},
		{
			name:    "missing schedule",
			mutate:  func(c *Config) { c.Watch.Schedule = "" },
			wantErr: true,
			errMsg:  "watch.schedule is required",
		},
		{
			name:    "bad metrics address",
			mutate:  func(c *Config) { c.Watch.MetricsAddr = "nonsense" },
			wantErr: true,
			errMsg:  "watch.metrics_addr must be host:port",
		},
		{
			name:   "metrics address",
			mutate: func(c *Config) { c.Watch.MetricsAddr = "localhost:9090" },
		},
		{
			name:   "empty symbol allowed",
			mutate: func(c *Config) { c.Client.Symbol = "" },
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
			cfg.API.Timeout = 15 * time.Second
			cfg.Client.Symbol = "NIFTY"
			path := filepath.Join(tmpDir, "test"+tt.ext)

			err := cfg.SaveToFile(path)
			require.NoError(t, err)

			_, err = os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)

			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadFromFile_PartialGetsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  timeout: 2s\nclient:\n  symbol: SENSEX\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.API.Timeout)
	assert.Equal(t, "SENSEX", cfg.Client.Symbol)
	assert.Equal(t, "http://127.0.0.1:5000/api", cfg.API.BaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: chatty\n"), 0o644))
	_, err = LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvAPIURL:   "http://10.0.0.5:5000/api",
		EnvSymbol:   " NIFTY ",
		EnvLogLevel: "debug",
	}

	cfg := Default()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "http://10.0.0.5:5000/api", cfg.API.BaseURL)
	assert.Equal(t, "NIFTY", cfg.Client.Symbol)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_NoPath(t *testing.T) {
	t.Setenv(EnvSymbol, "SENSEX")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "SENSEX", cfg.Client.Symbol)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DotEnv),
		[]byte(EnvSymbol+"=FINNIFTY\n"+EnvLogLevel+"=warn\n"), 0o644))
	t.Chdir(dir)
	t.Setenv(EnvLogLevel, "error")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "FINNIFTY", cfg.Client.Symbol)
	assert.Equal(t, "error", cfg.Log.Level, "process environment wins")
}

func TestLoad_EnvFixesInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stale.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: not a url\n"), 0o644))
	t.Chdir(t.TempDir())
	t.Setenv(EnvAPIURL, "http://10.0.0.5:5000/api")

	_, err := LoadFromFile(path)
	require.Error(t, err, "the file alone is invalid")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:5000/api", cfg.API.BaseURL)
}

func TestLoad_InvalidAfterEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ok.yaml")
	require.NoError(t, os.WriteFile(path, []byte("client:\n  symbol: NIFTY\n"), 0o644))
	t.Chdir(t.TempDir())
	t.Setenv(EnvLogLevel, "chatty")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
