package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Dedup remembers processed ids for a while so redelivered webhook updates are
// dropped. Shared across replicas, unlike an in-process set.
type Dedup struct {
	rdb     redis.Cmdable
	service string
	ttl     time.Duration
}

func NewDedup(rdb redis.Cmdable, service string) *Dedup {
	return &Dedup{rdb: rdb, service: service, ttl: TTLDedup}
}

// First reports whether id is seen for the first time.
func (d *Dedup) First(ctx context.Context, id string) (bool, error) {
	ok, err := d.rdb.SetNX(ctx, fmt.Sprintf(KeyDedup, d.service, id), 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup %s: %w", id, err)
	}
	return ok, nil
}
