// README: Redis quote store; a Lua script performs the guarded isUsed swap atomically on the server.
package quote

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"transferquote/internal/types"
)

const (
	fieldData     = "data"
	fieldExpires  = "expires_at"
	fieldUsed     = "used"
	fieldUsedAt   = "used_at"
	fieldSelected = "selected_class"
)

// createScript refuses to overwrite an existing quote.
var createScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[1], 'data', ARGV[1], 'expires_at', ARGV[2], 'used', '0')
redis.call('PEXPIREAT', KEYS[1], ARGV[3])
return 1
`)

// consumeScript returns 1 on success, -1 missing, -2 expired, -3 already used.
var consumeScript = redis.NewScript(`
local exp = redis.call('HGET', KEYS[1], 'expires_at')
if not exp then
	return -1
end
if tonumber(ARGV[1]) >= tonumber(exp) then
	return -2
end
if redis.call('HGET', KEYS[1], 'used') == '1' then
	return -3
end
redis.call('HSET', KEYS[1], 'used', '1', 'used_at', ARGV[1], 'selected_class', ARGV[2])
return 1
`)

type RedisStore struct {
	rdb       redis.UniversalClient
	prefix    string
	retainFor time.Duration
}

// NewRedisStore keeps each quote for retainFor past its expiry so late reads report
// ErrExpired instead of ErrNotFound.
func NewRedisStore(rdb redis.UniversalClient, retainFor time.Duration) *RedisStore {
	if retainFor < 0 {
		retainFor = 0
	}
	return &RedisStore{rdb: rdb, prefix: "quote:", retainFor: retainFor}
}

func (s *RedisStore) key(id types.ID) string {
	return s.prefix + string(id)
}

func (s *RedisStore) Create(ctx context.Context, q *Quote) error {
	payload, err := encodePayload(q)
	if err != nil {
		return fmt.Errorf("encode quote %s: %w", q.ID, err)
	}
	purgeAt := q.ExpiresAt.Add(s.retainFor)
	n, err := createScript.Run(ctx, s.rdb, []string{s.key(q.ID)},
		payload, q.ExpiresAt.UnixMilli(), purgeAt.UnixMilli()).Int()
	if err != nil {
		return fmt.Errorf("redis EVAL create %q: %w", s.key(q.ID), err)
	}
	if n == 0 {
		return fmt.Errorf("quote %s already exists", q.ID)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id types.ID) (*Quote, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis HGETALL %q: %w", s.key(id), err)
	}
	data, ok := fields[fieldData]
	if !ok {
		return nil, ErrNotFound
	}
	q, err := decodePayload([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("decode quote %s: %w", id, err)
	}
	if ms, err := strconv.ParseInt(fields[fieldExpires], 10, 64); err == nil {
		q.ExpiresAt = time.UnixMilli(ms).In(q.ExpiresAt.Location())
	}
	q.IsUsed = fields[fieldUsed] == "1"
	if ms, err := strconv.ParseInt(fields[fieldUsedAt], 10, 64); err == nil {
		at := time.UnixMilli(ms)
		q.UsedAt = &at
	}
	q.SelectedClass = types.VehicleClass(fields[fieldSelected])
	return q, nil
}

func (s *RedisStore) MarkUsed(ctx context.Context, id types.ID, class types.VehicleClass, now time.Time) error {
	n, err := consumeScript.Run(ctx, s.rdb, []string{s.key(id)}, now.UnixMilli(), string(class)).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis EVAL consume %q: %w", s.key(id), err)
	}
	switch n {
	case 1:
		return nil
	case -1:
		return ErrNotFound
	case -2:
		return ErrExpired
	case -3:
		return ErrAlreadyUsed
	default:
		return fmt.Errorf("redis EVAL consume %q: unexpected result %d", s.key(id), n)
	}
}
