package pasterepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/ai-pastebin/internal/domain/paste"
)

const pasteColumns = `paste_key, content, syntax, is_burn_after_reading, expire_at, created_at`

// PostgresRepository implements paste.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the paste table and its expiry index when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS paste (
			paste_key             VARCHAR(20) PRIMARY KEY,
			content               TEXT        NOT NULL,
			syntax                VARCHAR(50),
			is_burn_after_reading BOOLEAN     NOT NULL DEFAULT FALSE,
			expire_at             TIMESTAMPTZ,
			created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		return fmt.Errorf("create paste table: %w", err)
	}
	if _, err := r.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_expire_at ON paste (expire_at)`); err != nil {
		return fmt.Errorf("create expiry index: %w", err)
	}
	return nil
}

// Create inserts a new paste row.
func (r *PostgresRepository) Create(ctx context.Context, p paste.Paste) (paste.Paste, error) {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO paste (`+pasteColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (paste_key) DO NOTHING
		RETURNING `+pasteColumns,
		p.Key, p.Content, p.Syntax, p.IsBurnAfterReading, p.ExpireAt, createdAt)
	stored, err := scanPaste(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return paste.Paste{}, paste.ErrKeyConflict
		}
		return paste.Paste{}, err
	}
	return stored, nil
}

// GetByKey fetches by primary key.
func (r *PostgresRepository) GetByKey(ctx context.Context, key string) (paste.Paste, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+pasteColumns+`
		FROM paste
		WHERE paste_key = $1
	`, key)
	p, err := scanPaste(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return paste.Paste{}, false, nil
		}
		return paste.Paste{}, false, err
	}
	return p, true, nil
}

// Delete removes a row; deleting a missing key is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, key string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM paste WHERE paste_key = $1`, key)
	return err
}

// DeleteExpiredBefore removes rows whose expiry is strictly before now.
func (r *PostgresRepository) DeleteExpiredBefore(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM paste WHERE expire_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// GetAndBurn locks the row, deletes it when flagged, and commits.
// A concurrent reader blocks on the row lock and finds nothing once the
// deleting transaction commits.
func (r *PostgresRepository) GetAndBurn(ctx context.Context, key string) (paste.Paste, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return paste.Paste{}, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // no-op after Commit

	row := tx.QueryRow(ctx, `
		SELECT `+pasteColumns+`
		FROM paste
		WHERE paste_key = $1
		FOR UPDATE
	`, key)
	p, err := scanPaste(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return paste.Paste{}, false, nil
		}
		return paste.Paste{}, false, err
	}

	if p.IsBurnAfterReading {
		if _, err := tx.Exec(ctx, `DELETE FROM paste WHERE paste_key = $1`, key); err != nil {
			return paste.Paste{}, false, fmt.Errorf("burn paste: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return paste.Paste{}, false, fmt.Errorf("commit transaction: %w", err)
	}
	return p, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaste(row rowScanner) (paste.Paste, error) {
	var (
		p        paste.Paste
		syntax   *string
		expireAt *time.Time
	)
	if err := row.Scan(&p.Key, &p.Content, &syntax, &p.IsBurnAfterReading, &expireAt, &p.CreatedAt); err != nil {
		return paste.Paste{}, err
	}
	if syntax != nil {
		p.Syntax = *syntax
	}
	if expireAt != nil {
		at := expireAt.UTC()
		p.ExpireAt = &at
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

var _ paste.Repository = (*PostgresRepository)(nil)
