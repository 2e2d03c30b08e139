package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// Deduper marks keys as seen with a TTL. It is a fast-path filter for webhook
// re-deliveries; the database state check stays authoritative.
type Deduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDeduper(rdb *redis.Client, ttl time.Duration) *Deduper {
	return &Deduper{rdb: rdb, ttl: ttl}
}

// Seen reports whether the key was marked within the TTL window. A nil
// Deduper or a Redis error reports false so processing falls through to the
// database check instead of dropping the event.
func (d *Deduper) Seen(ctx context.Context, key string) bool {
	if d == nil || d.rdb == nil {
		return false
	}
	n, err := d.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false
	}
	return n > 0
}

// Mark records the key for the TTL window. Callers mark only after the state
// change the key stands for has applied; marking earlier would let a
// transient failure swallow every redelivery until the TTL expires.
func (d *Deduper) Mark(ctx context.Context, key string) {
	if d == nil || d.rdb == nil {
		return
	}
	d.rdb.Set(ctx, key, 1, d.ttl)
}
