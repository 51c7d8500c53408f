package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends understood by StorageConfig.Backend.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendValkey   = "valkey"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Storage StorageConfig `yaml:"storage"`
	Paste   PasteConfig   `yaml:"paste"`
	Sweep   SweepConfig   `yaml:"sweep"`
	AI      AIConfig      `yaml:"ai"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address         string        `yaml:"address"`
	BasePath        string        `yaml:"basePath"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	AllowedOrigins  []string      `yaml:"allowedOrigins"`
}

// StorageConfig selects and configures the paste store.
type StorageConfig struct {
	Backend  string         `yaml:"backend"`
	Postgres PostgresConfig `yaml:"postgres"`
	Valkey   ValkeyConfig   `yaml:"valkey"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ValkeyConfig contains connection information for the key-value store.
type ValkeyConfig struct {
	Addr   string `yaml:"addr"`
	Prefix string `yaml:"prefix"`
}

// PasteConfig tunes paste creation.
type PasteConfig struct {
	KeyLength      int    `yaml:"keyLength"`
	MaxKeyAttempts int    `yaml:"maxKeyAttempts"`
	DefaultSyntax  string `yaml:"defaultSyntax"`
	PublicBaseURL  string `yaml:"publicBaseURL"`
}

// SweepConfig schedules the expired paste cleanup.
type SweepConfig struct {
	Interval     time.Duration `yaml:"interval"`
	InitialDelay time.Duration `yaml:"initialDelay"`
	Timeout      time.Duration `yaml:"timeout"`
}

// AIConfig contains the OpenAI-compatible summarization settings.
type AIConfig struct {
	APIKey         string        `yaml:"apiKey"`
	BaseURL        string        `yaml:"baseUrl"`
	Model          string        `yaml:"model"`
	MaxTokens      int           `yaml:"maxTokens"`
	Temperature    float32       `yaml:"temperature"`
	Timeout        time.Duration `yaml:"timeout"`
	Prompt         string        `yaml:"prompt"`
	MaxInputTokens int           `yaml:"maxInputTokens"`
	Encoding       string        `yaml:"encoding"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_BASE_PATH"); v != "" {
		cfg.HTTP.BasePath = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("VALKEY_ADDR"); v != "" {
		cfg.Storage.Valkey.Addr = v
	}
	if v := os.Getenv("VALKEY_PREFIX"); v != "" {
		cfg.Storage.Valkey.Prefix = v
	}
	if v := os.Getenv("PASTE_KEY_LENGTH"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Paste.KeyLength = parsed
		}
	}
	if v := os.Getenv("PASTE_PUBLIC_BASE_URL"); v != "" {
		cfg.Paste.PublicBaseURL = v
	}
	if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Sweep.Interval = parsed
		}
	}
	if v := os.Getenv("SWEEP_INITIAL_DELAY"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Sweep.InitialDelay = parsed
		}
	}
	if v := os.Getenv("AI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("AI_BASE_URL"); v != "" {
		cfg.AI.BaseURL = v
	}
	if v := os.Getenv("AI_MODEL"); v != "" {
		cfg.AI.Model = v
	}
	if v := os.Getenv("AI_MAX_TOKENS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.AI.MaxTokens = parsed
		}
	}
	if v := os.Getenv("AI_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.AI.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("AI_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.AI.Timeout = parsed
		}
	}
	if v := os.Getenv("AI_PROMPT"); v != "" {
		cfg.AI.Prompt = v
	}
	if v := os.Getenv("AI_MAX_INPUT_TOKENS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.AI.MaxInputTokens = parsed
		}
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:         ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    45 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Storage: StorageConfig{
			Backend: BackendMemory,
			Postgres: PostgresConfig{
				MaxConns: 4,
				MinConns: 0,
			},
			Valkey: ValkeyConfig{
				Prefix: "pastebin",
			},
		},
		Paste: PasteConfig{
			KeyLength:      8,
			MaxKeyAttempts: 5,
			DefaultSyntax:  "plaintext",
		},
		Sweep: SweepConfig{
			Interval:     time.Minute,
			InitialDelay: 10 * time.Second,
			Timeout:      30 * time.Second,
		},
		AI: AIConfig{
			BaseURL:        "https://dashscope.aliyuncs.com/compatible-mode/v1",
			Model:          "qwen-plus",
			MaxTokens:      500,
			Temperature:    0.7,
			Timeout:        30 * time.Second,
			Prompt:         "Summarize the core functionality of the following code or text concisely:",
			MaxInputTokens: 6000,
			Encoding:       "cl100k_base",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.BasePath != "" && !strings.HasPrefix(c.HTTP.BasePath, "/") {
		return errors.New("http.basePath must start with /")
	}
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendPostgres:
		if strings.TrimSpace(c.Storage.Postgres.DSN) == "" {
			return errors.New("storage.postgres.dsn cannot be empty when backend is postgres")
		}
		if c.Storage.Postgres.MaxConns < 0 || c.Storage.Postgres.MinConns < 0 {
			return errors.New("storage.postgres pool sizes cannot be negative")
		}
	case BackendValkey:
		if strings.TrimSpace(c.Storage.Valkey.Addr) == "" {
			return errors.New("storage.valkey.addr cannot be empty when backend is valkey")
		}
	default:
		return fmt.Errorf("storage.backend %q is not one of memory, postgres, valkey", c.Storage.Backend)
	}
	if c.Paste.KeyLength < 4 || c.Paste.KeyLength > 20 {
		return errors.New("paste.keyLength must be between 4 and 20")
	}
	if c.Paste.MaxKeyAttempts <= 0 {
		return errors.New("paste.maxKeyAttempts must be positive")
	}
	if c.Sweep.Interval <= 0 {
		return errors.New("sweep.interval must be positive")
	}
	if c.Sweep.InitialDelay < 0 {
		return errors.New("sweep.initialDelay cannot be negative")
	}
	if c.AI.MaxTokens <= 0 {
		return errors.New("ai.maxTokens must be positive")
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return errors.New("ai.temperature must be between 0 and 2")
	}
	if c.AI.Timeout <= 0 {
		return errors.New("ai.timeout must be positive")
	}
	if c.AI.MaxInputTokens < 0 {
		return errors.New("ai.maxInputTokens cannot be negative")
	}
	if strings.TrimSpace(c.AI.Model) == "" {
		return errors.New("ai.model cannot be empty")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("metrics.path must start with /")
	}
	return nil
}
