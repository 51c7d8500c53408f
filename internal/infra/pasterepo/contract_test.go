package pasterepo

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ai-pastebin/internal/domain/paste"
)

// runRepositoryContract exercises behaviour every paste.Repository must share.
// newRepo must return an empty repository; keys are prefixed to avoid clashes
// when run against a shared database.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) paste.Repository) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("create and read back", func(t *testing.T) {
		repo := newRepo(t)
		expireAt := now.Add(time.Hour)
		created, err := repo.Create(ctx, paste.Paste{
			Key:       "rtA1b2C3",
			Content:   "package main\n",
			Syntax:    "go",
			ExpireAt:  &expireAt,
			CreatedAt: now,
		})
		require.NoError(t, err)
		require.Equal(t, "rtA1b2C3", created.Key)

		got, found, err := repo.GetByKey(ctx, "rtA1b2C3")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "package main\n", got.Content)
		require.Equal(t, "go", got.Syntax)
		require.False(t, got.IsBurnAfterReading)
		require.NotNil(t, got.ExpireAt)
		require.True(t, expireAt.Equal(*got.ExpireAt))
		require.True(t, now.Equal(got.CreatedAt))
	})

	t.Run("created at stamped when zero", func(t *testing.T) {
		repo := newRepo(t)
		created, err := repo.Create(ctx, paste.Paste{Key: "stamped1", Content: "x"})
		require.NoError(t, err)
		require.False(t, created.CreatedAt.IsZero())
	})

	t.Run("duplicate key conflicts", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Create(ctx, paste.Paste{Key: "dupKey01", Content: "first", CreatedAt: now})
		require.NoError(t, err)

		_, err = repo.Create(ctx, paste.Paste{Key: "dupKey01", Content: "second", CreatedAt: now})
		require.ErrorIs(t, err, paste.ErrKeyConflict)

		got, _, err := repo.GetByKey(ctx, "dupKey01")
		require.NoError(t, err)
		require.Equal(t, "first", got.Content)
	})

	t.Run("missing key", func(t *testing.T) {
		repo := newRepo(t)
		_, found, err := repo.GetByKey(ctx, "nothere1")
		require.NoError(t, err)
		require.False(t, found)

		_, found, err = repo.GetAndBurn(ctx, "nothere1")
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Create(ctx, paste.Paste{Key: "delMe001", Content: "x", CreatedAt: now})
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, "delMe001"))
		require.NoError(t, repo.Delete(ctx, "delMe001"))

		_, found, err := repo.GetByKey(ctx, "delMe001")
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("get and burn deletes only burn pastes", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Create(ctx, paste.Paste{Key: "burn0001", Content: "secret", IsBurnAfterReading: true, CreatedAt: now})
		require.NoError(t, err)
		_, err = repo.Create(ctx, paste.Paste{Key: "keep0001", Content: "public", CreatedAt: now})
		require.NoError(t, err)

		got, found, err := repo.GetAndBurn(ctx, "burn0001")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "secret", got.Content)
		require.True(t, got.IsBurnAfterReading)

		_, found, err = repo.GetAndBurn(ctx, "burn0001")
		require.NoError(t, err)
		require.False(t, found)

		for i := 0; i < 3; i++ {
			got, found, err = repo.GetAndBurn(ctx, "keep0001")
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, "public", got.Content)
		}
	})

	t.Run("delete expired before is strict", func(t *testing.T) {
		repo := newRepo(t)
		past := now.Add(-time.Minute)
		future := now.Add(time.Minute)
		exact := now
		for _, p := range []paste.Paste{
			{Key: "expPast1", Content: "a", ExpireAt: &past, CreatedAt: now},
			{Key: "expPast2", Content: "b", ExpireAt: &past, IsBurnAfterReading: true, CreatedAt: now},
			{Key: "expExact", Content: "c", ExpireAt: &exact, CreatedAt: now},
			{Key: "expFutur", Content: "d", ExpireAt: &future, CreatedAt: now},
			{Key: "expNever", Content: "e", CreatedAt: now},
		} {
			_, err := repo.Create(ctx, p)
			require.NoError(t, err)
		}

		deleted, err := repo.DeleteExpiredBefore(ctx, now)
		require.NoError(t, err)
		require.EqualValues(t, 2, deleted)

		for key, want := range map[string]bool{
			"expPast1": false,
			"expPast2": false,
			"expExact": true,
			"expFutur": true,
			"expNever": true,
		} {
			_, found, err := repo.GetByKey(ctx, key)
			require.NoError(t, err)
			require.Equal(t, want, found, key)
		}

		deleted, err = repo.DeleteExpiredBefore(ctx, now)
		require.NoError(t, err)
		require.Zero(t, deleted)
	})

	t.Run("concurrent get and burn yields one hit", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Create(ctx, paste.Paste{Key: "race0001", Content: "once", IsBurnAfterReading: true, CreatedAt: now})
		require.NoError(t, err)

		const readers = 32
		var (
			hits  atomic.Int32
			wg    sync.WaitGroup
			start = make(chan struct{})
		)
		for i := 0; i < readers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				got, found, err := repo.GetAndBurn(ctx, "race0001")
				if err != nil {
					t.Errorf("get and burn: %v", err)
					return
				}
				if found {
					if got.Content != "once" {
						t.Errorf("unexpected content %q", got.Content)
					}
					hits.Add(1)
				}
			}()
		}
		close(start)
		wg.Wait()

		require.EqualValues(t, 1, hits.Load())
	})
}
