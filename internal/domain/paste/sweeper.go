package paste

import (
	"context"
	"log/slog"
	"time"

	"github.com/yanqian/ai-pastebin/pkg/metrics"
)

// Cleaner is the slice of Service the sweeper needs.
type Cleaner interface {
	CleanupExpiredPastes(ctx context.Context) (int64, error)
}

// Sweeper periodically deletes expired pastes.
type Sweeper struct {
	cfg     SweepConfig
	cleaner Cleaner
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// NewSweeper constructs a sweeper. A non-positive interval or timeout falls back
// to 60s or 30s; a negative initial delay falls back to 10s.
func NewSweeper(cfg SweepConfig, cleaner Cleaner, recorder *metrics.Recorder, logger *slog.Logger) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.InitialDelay < 0 {
		cfg.InitialDelay = 10 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Sweeper{
		cfg:     cfg,
		cleaner: cleaner,
		metrics: recorder,
		logger:  logger.With("component", "paste.sweeper"),
	}
}

// Run blocks until ctx is cancelled, sweeping after the initial delay and then
// at a fixed rate.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("sweeper started", "interval", s.cfg.Interval.String(), "initial_delay", s.cfg.InitialDelay.String())
	defer s.logger.Info("sweeper stopped")

	delay := time.NewTimer(s.cfg.InitialDelay)
	defer delay.Stop()
	select {
	case <-ctx.Done():
		return
	case <-delay.C:
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		s.sweepOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Sweeper) sweepOnce(parent context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.SweepFailed()
			s.logger.Error("sweep panicked", "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(parent, s.cfg.Timeout)
	defer cancel()

	if _, err := s.cleaner.CleanupExpiredPastes(ctx); err != nil {
		if parent.Err() != nil {
			return
		}
		s.metrics.SweepFailed()
		s.logger.Warn("cleanup skipped", "error", err)
	}
}
