package leads

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/patrickmn/go-cache"
)

// ClaimState is the outcome of a dedupe claim.
type ClaimState int

const (
	// ClaimAcquired means the caller now holds the key and must forward
	// the lead, then Complete or Release it.
	ClaimAcquired ClaimState = iota
	// ClaimPending means another submission holds the key and is still
	// forwarding.
	ClaimPending
	// ClaimDone means the same lead was forwarded within the window.
	ClaimDone
)

func (s ClaimState) String() string {
	switch s {
	case ClaimAcquired:
		return "acquired"
	case ClaimPending:
		return "pending"
	case ClaimDone:
		return "done"
	}
	return "unknown"
}

// Claim values stored by both dedupers.
const (
	claimPending = "pending"
	claimDone    = "done"
)

// Deduper suppresses repeat submissions within a window.
type Deduper interface {
	// Claim reserves key as pending for ttl, or reports the state of the
	// claim that already holds it.
	Claim(ctx context.Context, key string, ttl time.Duration) (ClaimState, error)
	// Complete marks a held key as forwarded and keeps it for ttl.
	Complete(ctx context.Context, key string, ttl time.Duration) error
	// Release frees key so the same person can submit again.
	Release(ctx context.Context, key string) error
}

// MemoryDeduper keeps claims in process memory.
type MemoryDeduper struct {
	c *cache.Cache
}

// NewMemoryDeduper creates an in-memory deduper that sweeps expired keys every minute.
func NewMemoryDeduper() *MemoryDeduper {
	return &MemoryDeduper{c: cache.New(cache.NoExpiration, time.Minute)}
}

func (d *MemoryDeduper) Claim(_ context.Context, key string, ttl time.Duration) (ClaimState, error) {
	// The entry can expire between Add and Get; one more Add settles it.
	for i := 0; i < 2; i++ {
		if err := d.c.Add(key, claimPending, ttl); err == nil {
			return ClaimAcquired, nil
		}
		if v, ok := d.c.Get(key); ok {
			return stateOf(v.(string)), nil
		}
	}
	return ClaimPending, nil
}

func (d *MemoryDeduper) Complete(_ context.Context, key string, ttl time.Duration) error {
	d.c.Set(key, claimDone, ttl)
	return nil
}

func (d *MemoryDeduper) Release(_ context.Context, key string) error {
	d.c.Delete(key)
	return nil
}

// RedisKeyPrefix namespaces dedupe keys in Redis.
const RedisKeyPrefix = "salespage:lead:"

// RedisDeduper keeps claims in Redis so every replica shares them.
type RedisDeduper struct {
	client redis.UniversalClient
}

// NewRedisDeduper wraps an existing client.
func NewRedisDeduper(client redis.UniversalClient) *RedisDeduper {
	return &RedisDeduper{client: client}
}

func (d *RedisDeduper) Claim(ctx context.Context, key string, ttl time.Duration) (ClaimState, error) {
	k := RedisKeyPrefix + key
	for i := 0; i < 2; i++ {
		ok, err := d.client.SetNX(ctx, k, claimPending, ttl).Result()
		if err != nil {
			return ClaimPending, err
		}
		if ok {
			return ClaimAcquired, nil
		}
		v, err := d.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return ClaimPending, err
		}
		return stateOf(v), nil
	}
	return ClaimPending, nil
}

func (d *RedisDeduper) Complete(ctx context.Context, key string, ttl time.Duration) error {
	return d.client.Set(ctx, RedisKeyPrefix+key, claimDone, ttl).Err()
}

func (d *RedisDeduper) Release(ctx context.Context, key string) error {
	return d.client.Del(ctx, RedisKeyPrefix+key).Err()
}

func stateOf(v string) ClaimState {
	if v == claimDone {
		return ClaimDone
	}
	return ClaimPending
}
