package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTP.Address)
	require.Equal(t, "", cfg.HTTP.BasePath)
	require.Equal(t, BackendMemory, cfg.Storage.Backend)
	require.Equal(t, 8, cfg.Paste.KeyLength)
	require.Equal(t, 5, cfg.Paste.MaxKeyAttempts)
	require.Equal(t, "plaintext", cfg.Paste.DefaultSyntax)
	require.Equal(t, time.Minute, cfg.Sweep.Interval)
	require.Equal(t, 10*time.Second, cfg.Sweep.InitialDelay)
	require.Equal(t, "qwen-plus", cfg.AI.Model)
	require.Equal(t, 500, cfg.AI.MaxTokens)
	require.InDelta(t, 0.7, cfg.AI.Temperature, 1e-6)
	require.Equal(t, 30*time.Second, cfg.AI.Timeout)
	require.Empty(t, cfg.AI.APIKey)
	require.True(t, cfg.Metrics.Enabled)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9090"
  basePath: "/api"
storage:
  backend: postgres
  postgres:
    dsn: "postgres://file"
    maxConns: 8
sweep:
  interval: 2m
ai:
  model: file-model
  temperature: 0.3
`), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("POSTGRES_DSN", "postgres://env")
	t.Setenv("AI_API_KEY", "sk-env")
	t.Setenv("AI_MAX_TOKENS", "250")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, "/api", cfg.HTTP.BasePath)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	require.Equal(t, BackendPostgres, cfg.Storage.Backend)
	require.Equal(t, "postgres://env", cfg.Storage.Postgres.DSN)
	require.EqualValues(t, 8, cfg.Storage.Postgres.MaxConns)
	require.Equal(t, 2*time.Minute, cfg.Sweep.Interval)
	require.Equal(t, 10*time.Second, cfg.Sweep.InitialDelay, "unset keys keep defaults")
	require.Equal(t, "file-model", cfg.AI.Model)
	require.InDelta(t, 0.3, cfg.AI.Temperature, 1e-6)
	require.Equal(t, "sk-env", cfg.AI.APIKey)
	require.Equal(t, 250, cfg.AI.MaxTokens)
}

func TestLoadRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http: [unterminated"), 0o600))
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	require.ErrorContains(t, err, "parse config file")
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load()
	require.ErrorContains(t, err, "read config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults valid", mutate: func(*Config) {}},
		{name: "empty address", mutate: func(c *Config) { c.HTTP.Address = "" }, wantErr: "http.address"},
		{name: "relative base path", mutate: func(c *Config) { c.HTTP.BasePath = "api" }, wantErr: "http.basePath"},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Backend = "mysql" }, wantErr: "storage.backend"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Storage.Backend = BackendPostgres }, wantErr: "storage.postgres.dsn"},
		{name: "valkey without addr", mutate: func(c *Config) { c.Storage.Backend = BackendValkey }, wantErr: "storage.valkey.addr"},
		{name: "valkey with addr", mutate: func(c *Config) {
			c.Storage.Backend = BackendValkey
			c.Storage.Valkey.Addr = "localhost:6379"
		}},
		{name: "key too short", mutate: func(c *Config) { c.Paste.KeyLength = 3 }, wantErr: "paste.keyLength"},
		{name: "key too long", mutate: func(c *Config) { c.Paste.KeyLength = 21 }, wantErr: "paste.keyLength"},
		{name: "no key attempts", mutate: func(c *Config) { c.Paste.MaxKeyAttempts = 0 }, wantErr: "paste.maxKeyAttempts"},
		{name: "zero sweep interval", mutate: func(c *Config) { c.Sweep.Interval = 0 }, wantErr: "sweep.interval"},
		{name: "negative sweep delay", mutate: func(c *Config) { c.Sweep.InitialDelay = -time.Second }, wantErr: "sweep.initialDelay"},
		{name: "zero max tokens", mutate: func(c *Config) { c.AI.MaxTokens = 0 }, wantErr: "ai.maxTokens"},
		{name: "temperature out of range", mutate: func(c *Config) { c.AI.Temperature = 2.5 }, wantErr: "ai.temperature"},
		{name: "zero ai timeout", mutate: func(c *Config) { c.AI.Timeout = 0 }, wantErr: "ai.timeout"},
		{name: "empty model", mutate: func(c *Config) { c.AI.Model = " " }, wantErr: "ai.model"},
		{name: "metrics path", mutate: func(c *Config) { c.Metrics.Path = "metrics" }, wantErr: "metrics.path"},
		{name: "metrics disabled ignores path", mutate: func(c *Config) {
			c.Metrics.Enabled = false
			c.Metrics.Path = ""
		}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}
