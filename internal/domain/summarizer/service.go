package summarizer

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/yanqian/ai-pastebin/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/ai-pastebin/pkg/errors"
	"github.com/yanqian/ai-pastebin/pkg/metrics"
)

// Service exposes summarization capabilities.
type Service interface {
	Summarize(ctx context.Context, req Request) (Response, error)
}

type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// Tokenizer bounds the prompt size before it is sent.
type Tokenizer interface {
	Truncate(text string, limit int) (string, bool)
}

type service struct {
	cfg       Config
	client    ChatClient
	tokenizer Tokenizer
	metrics   *metrics.Recorder
	logger    *slog.Logger
}

// NewService is a wire provider for the summarizer domain. tokenizer may be nil.
func NewService(cfg Config, client ChatClient, tokenizer Tokenizer, recorder *metrics.Recorder, logger *slog.Logger) Service {
	if strings.TrimSpace(cfg.Prompt) == "" {
		cfg.Prompt = DefaultPrompt
	}
	return &service{
		cfg:       cfg,
		client:    client,
		tokenizer: tokenizer,
		metrics:   recorder,
		logger:    logger.With("component", "summarizer.service"),
	}
}

func (s *service) Summarize(ctx context.Context, req Request) (Response, error) {
	if normalize(req.Content) == "" {
		return Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, "content cannot be blank", nil)
	}
	text := req.Content
	if s.tokenizer != nil && s.cfg.MaxInputTokens > 0 {
		if cut, truncated := s.tokenizer.Truncate(text, s.cfg.MaxInputTokens); truncated {
			s.logger.Info("summarize input truncated", "original_len", len(text), "truncated_len", len(cut), "max_input_tokens", s.cfg.MaxInputTokens)
			text = cut
		}
	}

	s.logger.Info("calling llm for summary", "model", s.cfg.Model, "content_len", len(text))
	resp, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Messages:    s.buildMessages(text),
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return s.fail("llm service call failed", err)
	}
	if len(resp.Choices) == 0 {
		return s.fail("llm returned no choices", nil)
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return s.fail("llm returned empty content", nil)
	}

	tokens := 0
	if resp.Usage != nil {
		tokens = resp.Usage.Total()
	}
	s.metrics.Summarized("ok", tokens)
	s.logger.Info("summary generated", "summary_len", len(summary), "tokens", tokens)

	return Response{Summary: summary, Tokens: tokens}, nil
}

func (s *service) fail(message string, cause error) (Response, error) {
	s.metrics.Summarized("error", 0)
	err := apperrors.Wrap(apperrors.CodeLLM, message, cause)
	s.logger.Error("summarize failed", "error", err)
	return Response{}, err
}

func (s *service) buildMessages(text string) []chatgpt.Message {
	return []chatgpt.Message{
		{Role: "user", Content: s.cfg.Prompt + "\n\n" + text},
	}
}

// normalize drops control characters other than newline and tab. It only
// decides blankness; the prompt carries the content as submitted.
func normalize(text string) string {
	text = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, text)
	return strings.TrimSpace(text)
}
