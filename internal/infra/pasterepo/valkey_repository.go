package pasterepo

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/ai-pastebin/internal/domain/paste"
)

// createScript stores the document only when the key is free and indexes its expiry.
var createScript = valkey.NewLuaScript(`
if not redis.call('SET', KEYS[1], ARGV[1], 'NX') then
	return 0
end
if ARGV[2] ~= '' then
	redis.call('ZADD', KEYS[2], ARGV[2], ARGV[3])
end
return 1
`)

// burnScript returns the document and deletes it when flagged burn-after-reading.
var burnScript = valkey.NewLuaScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then
	return false
end
local doc = cjson.decode(raw)
if doc.isBurnAfterReading then
	redis.call('DEL', KEYS[1])
	redis.call('ZREM', KEYS[2], ARGV[1])
end
return raw
`)

// sweepScript deletes every indexed paste scored strictly below ARGV[1].
var sweepScript = valkey.NewLuaScript(`
local bound = '(' .. ARGV[1]
local members = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', bound)
local removed = 0
for _, member in ipairs(members) do
	removed = removed + redis.call('DEL', ARGV[2] .. member)
end
if #members > 0 then
	redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', bound)
end
return removed
`)

// ValkeyRepository persists pastes as JSON documents in a Valkey-compatible database.
// Expiry is tracked in a sorted set rather than native TTLs so that an expired but
// unswept paste can still be reported as gone instead of unknown.
type ValkeyRepository struct {
	client valkey.Client
	prefix string
}

// NewValkeyRepository constructs a new repository backed by Valkey.
func NewValkeyRepository(client valkey.Client, prefix string) *ValkeyRepository {
	if prefix == "" {
		prefix = "pastebin"
	}
	return &ValkeyRepository{client: client, prefix: prefix}
}

func (r *ValkeyRepository) Create(ctx context.Context, p paste.Paste) (paste.Paste, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.ExpireAt != nil {
		// Stored and scored at the same precision so reads and sweeps agree.
		at := p.ExpireAt.UTC().Truncate(time.Microsecond)
		p.ExpireAt = &at
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return paste.Paste{}, err
	}
	score := ""
	if p.ExpireAt != nil {
		score = expiryScore(*p.ExpireAt)
	}
	created, err := createScript.Exec(ctx, r.client,
		[]string{r.pasteKey(p.Key), r.expiryKey()},
		[]string{string(payload), score, p.Key},
	).AsInt64()
	if err != nil {
		return paste.Paste{}, err
	}
	if created == 0 {
		return paste.Paste{}, paste.ErrKeyConflict
	}
	return p, nil
}

func (r *ValkeyRepository) GetByKey(ctx context.Context, key string) (paste.Paste, bool, error) {
	raw, err := r.client.Do(ctx, r.client.B().Get().Key(r.pasteKey(key)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return paste.Paste{}, false, nil
		}
		return paste.Paste{}, false, err
	}
	p, err := decodePaste(raw)
	if err != nil {
		return paste.Paste{}, false, err
	}
	return p, true, nil
}

func (r *ValkeyRepository) Delete(ctx context.Context, key string) error {
	for _, resp := range r.client.DoMulti(ctx,
		r.client.B().Del().Key(r.pasteKey(key)).Build(),
		r.client.B().Zrem().Key(r.expiryKey()).Member(key).Build(),
	) {
		if err := resp.Error(); err != nil {
			return err
		}
	}
	return nil
}

func (r *ValkeyRepository) DeleteExpiredBefore(ctx context.Context, now time.Time) (int64, error) {
	return sweepScript.Exec(ctx, r.client,
		[]string{r.expiryKey()},
		[]string{expiryScore(sweepBound(now)), r.pasteKey("")},
	).AsInt64()
}

func (r *ValkeyRepository) GetAndBurn(ctx context.Context, key string) (paste.Paste, bool, error) {
	raw, err := burnScript.Exec(ctx, r.client,
		[]string{r.pasteKey(key), r.expiryKey()},
		[]string{key},
	).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return paste.Paste{}, false, nil
		}
		return paste.Paste{}, false, err
	}
	p, err := decodePaste(raw)
	if err != nil {
		return paste.Paste{}, false, err
	}
	return p, true, nil
}

func decodePaste(raw string) (paste.Paste, error) {
	var p paste.Paste
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return paste.Paste{}, fmt.Errorf("decode paste: %w", err)
	}
	return p, nil
}

// expiryScore uses microseconds, which still fit a float64 score exactly.
func expiryScore(t time.Time) string {
	return strconv.FormatInt(t.UnixMicro(), 10)
}

// sweepBound rounds now up to the next microsecond, so a score below the bound
// is exactly an expiry before now.
func sweepBound(now time.Time) time.Time {
	bound := now.Truncate(time.Microsecond)
	if bound.Before(now) {
		bound = bound.Add(time.Microsecond)
	}
	return bound
}

func (r *ValkeyRepository) pasteKey(key string) string {
	return fmt.Sprintf("%s:paste:%s", r.prefix, key)
}

func (r *ValkeyRepository) expiryKey() string {
	return fmt.Sprintf("%s:expiry", r.prefix)
}

var _ paste.Repository = (*ValkeyRepository)(nil)
