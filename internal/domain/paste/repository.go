package paste

import (
	"context"
	"errors"
	"time"
)

// ErrKeyConflict is returned by Repository.Create when the key is already taken.
var ErrKeyConflict = errors.New("paste key already exists")

// Repository is the persistence boundary for pastes.
type Repository interface {
	// Create inserts p and returns the stored row. CreatedAt is stamped when zero.
	Create(ctx context.Context, p Paste) (Paste, error)
	GetByKey(ctx context.Context, key string) (Paste, bool, error)
	// Delete is idempotent.
	Delete(ctx context.Context, key string) error
	// DeleteExpiredBefore removes every paste whose ExpireAt is strictly before now.
	DeleteExpiredBefore(ctx context.Context, now time.Time) (int64, error)
	// GetAndBurn fetches the paste and, when it is burn-after-reading, deletes it
	// in the same unit of work. Concurrent callers for one key see at most one hit.
	GetAndBurn(ctx context.Context, key string) (Paste, bool, error)
}
