// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package querycache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// scanBatch is the COUNT hint for each SCAN round trip during Flush.
const scanBatch = 100

// generationKey is stored under the prefix and survives Flush.
const generationKey = "generation"

// setIfCurrent writes KEYS[2] only while KEYS[1] still holds ARGV[1].
// A missing generation key reads as "0".
var setIfCurrent = redis.NewScript(`
local current = redis.call('GET', KEYS[1]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// Redis is the shared [Backend]. Every key lives under prefix.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis returns a backend storing keys as prefix+key.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// Generation implements [Backend].
func (r *Redis) Generation(ctx context.Context) (uint64, error) {
	raw, err := r.client.Get(ctx, r.prefix+generationKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("querycache: redis generation: %w", err)
	}
	generation, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("querycache: redis generation %q: %w", raw, err)
	}
	return generation, nil
}

// Get implements [Backend].
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querycache: redis get: %w", err)
	}
	return value, true, nil
}

// SetIfCurrent implements [Backend]. The generation check and the write run
// as one script so a concurrent Flush cannot slip between them.
func (r *Redis) SetIfCurrent(ctx context.Context, generation uint64, key string, value []byte, ttl time.Duration) (bool, error) {
	millis := max(ttl.Milliseconds(), 1)

	stored, err := setIfCurrent.Run(ctx, r.client,
		[]string{r.prefix + generationKey, r.prefix + key},
		strconv.FormatUint(generation, 10), value, millis,
	).Int()
	if err != nil {
		return false, fmt.Errorf("querycache: redis set: %w", err)
	}
	return stored == 1, nil
}

// Flush implements [Backend]. It advances the generation first, then scans the
// prefix and deletes entries in batches, stopping at the first error.
func (r *Redis) Flush(ctx context.Context) error {
	if err := r.client.Incr(ctx, r.prefix+generationKey).Err(); err != nil {
		return fmt.Errorf("querycache: redis incr generation: %w", err)
	}

	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", scanBatch).Result()
		if err != nil {
			return fmt.Errorf("querycache: redis scan: %w", err)
		}

		entries := keys[:0]
		for _, key := range keys {
			if key != r.prefix+generationKey {
				entries = append(entries, key)
			}
		}
		if len(entries) > 0 {
			if err := r.client.Del(ctx, entries...).Err(); err != nil {
				return fmt.Errorf("querycache: redis del: %w", err)
			}
		}

		if next == 0 {
			return nil
		}
		cursor = next
	}
}
