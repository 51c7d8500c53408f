package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/ai-pastebin/internal/domain/paste"
	"github.com/yanqian/ai-pastebin/internal/domain/summarizer"
	"github.com/yanqian/ai-pastebin/internal/infra/config"
	"github.com/yanqian/ai-pastebin/internal/infra/llm/chatgpt"
	"github.com/yanqian/ai-pastebin/internal/infra/llm/tokenizer"
	"github.com/yanqian/ai-pastebin/internal/infra/pasterepo"
	"github.com/yanqian/ai-pastebin/pkg/util"
)

func providePasteConfig(cfg *config.Config) paste.Config {
	return paste.Config{
		KeyLength:      cfg.Paste.KeyLength,
		MaxKeyAttempts: cfg.Paste.MaxKeyAttempts,
		DefaultSyntax:  cfg.Paste.DefaultSyntax,
		PublicBaseURL:  cfg.Paste.PublicBaseURL,
	}
}

func provideSweepConfig(cfg *config.Config) paste.SweepConfig {
	return paste.SweepConfig{
		Interval:     cfg.Sweep.Interval,
		InitialDelay: cfg.Sweep.InitialDelay,
		Timeout:      cfg.Sweep.Timeout,
	}
}

func provideSummaryConfig(cfg *config.Config) summarizer.Config {
	return summarizer.Config{
		Model:          cfg.AI.Model,
		MaxTokens:      cfg.AI.MaxTokens,
		Temperature:    cfg.AI.Temperature,
		Prompt:         cfg.AI.Prompt,
		MaxInputTokens: cfg.AI.MaxInputTokens,
	}
}

func provideClock() util.Clock {
	return util.NowUTC
}

func provideCleaner(svc paste.Service) paste.Cleaner {
	return svc
}

func provideChatGPTClient(cfg *config.Config, logger *slog.Logger) *chatgpt.Client {
	if strings.TrimSpace(cfg.AI.APIKey) == "" {
		logger.Warn("ai api key not set, summarize requests will fail")
	}
	return chatgpt.NewClient(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Timeout)
}

// tokenizerLoadTimeout bounds how long startup waits for the BPE download.
const tokenizerLoadTimeout = 10 * time.Second

// provideTokenizer starts loading the encoding at boot. If it is not ready in
// time the service still starts and the prompt budget applies once it lands.
func provideTokenizer(cfg *config.Config, logger *slog.Logger) *tokenizer.Tokenizer {
	tk := tokenizer.New(cfg.AI.Encoding, logger)
	if cfg.AI.MaxInputTokens <= 0 {
		return tk
	}
	ctx, cancel := context.WithTimeout(context.Background(), tokenizerLoadTimeout)
	defer cancel()
	if err := tk.Load(ctx); err != nil {
		logger.Warn("tokenizer not ready, prompt budget applies once loaded", "encoding", cfg.AI.Encoding, "error", err)
	}
	return tk
}

// providePasteRepository opens the configured store. An explicitly selected
// backend that cannot be reached fails startup.
func providePasteRepository(cfg *config.Config, logger *slog.Logger) (paste.Repository, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		return providePostgresRepository(cfg.Storage.Postgres, logger)
	case config.BackendValkey:
		return provideValkeyRepository(cfg.Storage.Valkey, logger)
	default:
		logger.Info("using in-memory paste repository")
		return pasterepo.NewMemoryRepository(), func() {}, nil
	}
}

func providePostgresRepository(cfg config.PostgresConfig, logger *slog.Logger) (paste.Repository, func(), error) {
	poolConfig, err := pgxpool.ParseConfig(strings.TrimSpace(cfg.DSN))
	if err != nil {
		return nil, nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("init postgres pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres ping: %w", err)
	}

	repo := pasterepo.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Info("postgres paste repository enabled")
	return repo, pool.Close, nil
}

func provideValkeyRepository(cfg config.ValkeyConfig, logger *slog.Logger) (paste.Repository, func(), error) {
	opt, err := buildValkeyOptions(cfg.Addr)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid valkey configuration: %w", err)
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		return nil, nil, fmt.Errorf("create valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("valkey ping: %w", err)
	}
	logger.Info("valkey paste repository enabled", "addr", cfg.Addr, "prefix", cfg.Prefix)
	return pasterepo.NewValkeyRepository(client, cfg.Prefix), client.Close, nil
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(addr, "://") {
		opt, err = valkey.ParseURL(addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
