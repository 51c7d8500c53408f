package tokenizer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding matches the OpenAI chat model family.
const DefaultEncoding = "cl100k_base"

// encoder is the subset of *tiktoken.Tiktoken used here.
type encoder interface {
	Encode(text string, allowedSpecial, disallowedSpecial []string) []int
	Decode(tokens []int) string
}

// Tokenizer truncates prompt text by BPE tokens. The encoding loads in the
// background; until it is ready, or if it fails, text passes through unchanged.
type Tokenizer struct {
	name   string
	logger *slog.Logger
	load   func(string) (encoder, error)

	once  sync.Once
	ready chan struct{}
	enc   encoder
	err   error
}

// New returns a tokenizer for the named encoding. Nothing is loaded until
// Load or Truncate is called.
func New(name string, logger *slog.Logger) *Tokenizer {
	if name == "" {
		name = DefaultEncoding
	}
	return &Tokenizer{
		name:   name,
		logger: logger.With("component", "llm.tokenizer"),
		load: func(n string) (encoder, error) {
			enc, err := tiktoken.GetEncoding(n)
			if err != nil {
				return nil, err
			}
			return enc, nil
		},
		ready: make(chan struct{}),
	}
}

// start kicks off the encoding load exactly once. tiktoken may download the BPE
// file without a deadline, so the load never runs on a caller's goroutine.
func (t *Tokenizer) start() {
	t.once.Do(func() {
		go func() {
			defer close(t.ready)
			enc, err := t.load(t.name)
			if err != nil {
				t.err = err
				t.logger.Warn("tokenizer unavailable, prompt budget disabled", "encoding", t.name, "error", err)
				return
			}
			t.enc = enc
			t.logger.Info("tokenizer loaded", "encoding", t.name)
		}()
	})
}

// Load starts loading the encoding and waits until it is ready or ctx is done.
// A context error leaves the load running in the background.
func (t *Tokenizer) Load(ctx context.Context) error {
	t.start()
	select {
	case <-t.ready:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// encoder returns the loaded encoding without blocking, or nil.
func (t *Tokenizer) encoder() encoder {
	t.start()
	select {
	case <-t.ready:
		return t.enc
	default:
		return nil
	}
}

// Truncate keeps at most limit tokens of text. It reports whether text was cut.
func (t *Tokenizer) Truncate(text string, limit int) (string, bool) {
	if limit <= 0 || text == "" {
		return text, false
	}
	enc := t.encoder()
	if enc == nil {
		return text, false
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= limit {
		return text, false
	}
	return enc.Decode(tokens[:limit]), true
}
