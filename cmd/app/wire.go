//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/ai-pastebin/internal/bootstrap"
	"github.com/yanqian/ai-pastebin/internal/domain/paste"
	"github.com/yanqian/ai-pastebin/internal/domain/summarizer"
	"github.com/yanqian/ai-pastebin/internal/infra/config"
	"github.com/yanqian/ai-pastebin/internal/infra/llm/chatgpt"
	"github.com/yanqian/ai-pastebin/internal/infra/llm/tokenizer"
	httpiface "github.com/yanqian/ai-pastebin/internal/interface/http"
	"github.com/yanqian/ai-pastebin/pkg/logger"
	"github.com/yanqian/ai-pastebin/pkg/metrics"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		metrics.NewRegistry,
		metrics.NewRecorder,
		providePasteConfig,
		provideSweepConfig,
		provideSummaryConfig,
		provideClock,
		providePasteRepository,
		provideChatGPTClient,
		provideTokenizer,
		provideCleaner,
		paste.NewKeyGenerator,
		paste.NewService,
		paste.NewSweeper,
		summarizer.NewService,
		wire.Bind(new(paste.KeyGenerator), new(*paste.RandomKeyGenerator)),
		wire.Bind(new(summarizer.ChatClient), new(*chatgpt.Client)),
		wire.Bind(new(summarizer.Tokenizer), new(*tokenizer.Tokenizer)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
