package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "auth:revoked:"

// RedisTokenDenylist remembers logged-out access token IDs until they expire.
type RedisTokenDenylist struct {
	client *redis.Client
}

// NewRedisTokenDenylist constructs a Redis backed denylist.
func NewRedisTokenDenylist(client *redis.Client) *RedisTokenDenylist {
	return &RedisTokenDenylist{client: client}
}

// Revoke stores the token id for ttl.
func (d *RedisTokenDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, denylistPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token id was revoked.
func (d *RedisTokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, denylistPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("redis check revoked token: %w", err)
	}
	return n > 0, nil
}

// MemoryTokenDenylist is the single-process fallback used when Redis is disabled.
type MemoryTokenDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryTokenDenylist constructs an in-memory denylist.
func NewMemoryTokenDenylist() *MemoryTokenDenylist {
	return &MemoryTokenDenylist{entries: make(map[string]time.Time), now: time.Now}
}

// Revoke stores the token id for ttl and drops expired entries.
func (d *MemoryTokenDenylist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	for id, expires := range d.entries {
		if !now.Before(expires) {
			delete(d.entries, id)
		}
	}
	d.entries[tokenID] = now.Add(ttl)
	return nil
}

// IsRevoked reports whether the token id was revoked and has not expired.
func (d *MemoryTokenDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	expires, ok := d.entries[tokenID]
	if !ok {
		return false, nil
	}
	if !d.now().Before(expires) {
		delete(d.entries, tokenID)
		return false, nil
	}
	return true, nil
}
