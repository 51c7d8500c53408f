package pasterepo

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/ai-pastebin/internal/domain/paste"
)

// MemoryRepository is an in-memory paste.Repository used for tests/dev.
type MemoryRepository struct {
	mu     sync.Mutex
	pastes map[string]paste.Paste
}

// NewMemoryRepository constructs a repo backed by memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{pastes: make(map[string]paste.Paste)}
}

// Create implements paste.Repository.
func (r *MemoryRepository) Create(_ context.Context, p paste.Paste) (paste.Paste, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.pastes[p.Key]; exists {
		return paste.Paste{}, paste.ErrKeyConflict
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	stored := clonePaste(p)
	r.pastes[p.Key] = stored
	return clonePaste(stored), nil
}

// GetByKey implements paste.Repository.
func (r *MemoryRepository) GetByKey(_ context.Context, key string) (paste.Paste, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pastes[key]
	if !ok {
		return paste.Paste{}, false, nil
	}
	return clonePaste(p), true, nil
}

// Delete implements paste.Repository.
func (r *MemoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pastes, key)
	return nil
}

// DeleteExpiredBefore implements paste.Repository.
func (r *MemoryRepository) DeleteExpiredBefore(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for key, p := range r.pastes {
		if p.ExpiredAt(now) {
			delete(r.pastes, key)
			deleted++
		}
	}
	return deleted, nil
}

// GetAndBurn implements paste.Repository.
func (r *MemoryRepository) GetAndBurn(_ context.Context, key string) (paste.Paste, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pastes[key]
	if !ok {
		return paste.Paste{}, false, nil
	}
	if p.IsBurnAfterReading {
		delete(r.pastes, key)
	}
	return clonePaste(p), true, nil
}

// Len reports the number of stored pastes.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pastes)
}

func clonePaste(p paste.Paste) paste.Paste {
	if p.ExpireAt != nil {
		at := *p.ExpireAt
		p.ExpireAt = &at
	}
	return p
}

var _ paste.Repository = (*MemoryRepository)(nil)
