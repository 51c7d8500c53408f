package paste

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/yanqian/ai-pastebin/pkg/errors"
	"github.com/yanqian/ai-pastebin/pkg/metrics"
	"github.com/yanqian/ai-pastebin/pkg/util"
)

// maxExpireMinutes keeps now+expireMinutes inside time.Duration range.
const maxExpireMinutes = 100 * 365 * 24 * 60

// Service exposes paste capabilities.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (CreateResponse, error)
	Save(ctx context.Context, p Paste) (Paste, error)
	Get(ctx context.Context, key string) (Paste, error)
	GetAndBurn(ctx context.Context, key string) (Paste, bool, error)
	CleanupExpiredPastes(ctx context.Context) (int64, error)
}

type service struct {
	cfg     Config
	repo    Repository
	keys    KeyGenerator
	now     util.Clock
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// NewService is a wire provider for the paste domain.
func NewService(cfg Config, repo Repository, keys KeyGenerator, clock util.Clock, recorder *metrics.Recorder, logger *slog.Logger) Service {
	if cfg.MaxKeyAttempts <= 0 {
		cfg.MaxKeyAttempts = 1
	}
	if cfg.DefaultSyntax == "" {
		cfg.DefaultSyntax = "plaintext"
	}
	if clock == nil {
		clock = util.NowUTC
	}
	return &service{
		cfg:     cfg,
		repo:    repo,
		keys:    keys,
		now:     clock,
		metrics: recorder,
		logger:  logger.With("component", "paste.service"),
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (CreateResponse, error) {
	if strings.TrimSpace(req.Content) == "" {
		return CreateResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "content cannot be blank", nil)
	}
	if req.ExpireMinutes > maxExpireMinutes {
		return CreateResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "expireMinutes is too large", nil)
	}

	syntax := strings.TrimSpace(req.Syntax)
	if syntax == "" {
		syntax = s.cfg.DefaultSyntax
	}

	now := s.now()
	var expireAt *time.Time
	if req.ExpireMinutes > 0 {
		at := now.Add(time.Duration(req.ExpireMinutes) * time.Minute)
		expireAt = &at
	}

	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxKeyAttempts; attempt++ {
		key, err := s.keys.Generate(s.cfg.KeyLength)
		if err != nil {
			return CreateResponse{}, apperrors.Wrap(apperrors.CodeStorage, "generate paste key", err)
		}

		saved, err := s.Save(ctx, Paste{
			Key:                key,
			Content:            req.Content,
			Syntax:             syntax,
			IsBurnAfterReading: req.IsBurnAfterReading,
			ExpireAt:           expireAt,
			CreatedAt:          now,
		})
		if errors.Is(err, ErrKeyConflict) {
			s.logger.Warn("paste key collision, regenerating", "attempt", attempt)
			lastErr = err
			continue
		}
		if err != nil {
			return CreateResponse{}, err
		}

		s.logger.Info("paste created",
			"key", saved.Key,
			"content_len", len(saved.Content),
			"syntax", saved.Syntax,
			"burn_after_reading", saved.IsBurnAfterReading,
		)
		return CreateResponse{Key: saved.Key, URL: s.pasteURL(saved.Key)}, nil
	}

	return CreateResponse{}, apperrors.Wrap(apperrors.CodeConflict, "could not allocate a unique paste key", lastErr)
}

func (s *service) Save(ctx context.Context, p Paste) (Paste, error) {
	saved, err := s.repo.Create(ctx, p)
	if err != nil {
		if errors.Is(err, ErrKeyConflict) {
			return Paste{}, apperrors.Wrap(apperrors.CodeConflict, "paste key already exists", err)
		}
		return Paste{}, apperrors.Wrap(apperrors.CodeStorage, "save paste", err)
	}
	s.metrics.PasteCreated()
	return saved, nil
}

// Get reads a paste through GetAndBurn and applies the lazy expiry check.
func (s *service) Get(ctx context.Context, key string) (Paste, error) {
	if !ValidKey(key) {
		return Paste{}, apperrors.Wrap(apperrors.CodeNotFound, "paste not found or already deleted", nil)
	}
	p, found, err := s.GetAndBurn(ctx, key)
	if err != nil {
		return Paste{}, err
	}
	if !found {
		return Paste{}, apperrors.Wrap(apperrors.CodeNotFound, "paste not found or already deleted", nil)
	}
	if p.ExpiredAt(s.now()) {
		s.logger.Info("paste expired", "key", key)
		return Paste{}, apperrors.Wrap(apperrors.CodeExpired, "paste has expired", nil)
	}
	return p, nil
}

func (s *service) GetAndBurn(ctx context.Context, key string) (Paste, bool, error) {
	p, found, err := s.repo.GetAndBurn(ctx, key)
	if err != nil {
		return Paste{}, false, apperrors.Wrap(apperrors.CodeStorage, "read paste", err)
	}
	if found && p.IsBurnAfterReading {
		s.metrics.PasteBurned()
		s.logger.Info("burn after reading: paste deleted", "key", key)
	}
	return p, found, nil
}

func (s *service) CleanupExpiredPastes(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteExpiredBefore(ctx, s.now())
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeStorage, "delete expired pastes", err)
	}
	if deleted > 0 {
		s.metrics.PastesSwept(deleted)
		s.logger.Info("scheduled cleanup deleted expired pastes", "count", deleted)
	}
	return deleted, nil
}

func (s *service) pasteURL(key string) string {
	return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + key
}
