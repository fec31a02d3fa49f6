package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker remembers logged-out session IDs until their tokens expire.
type Revoker interface {
	Revoke(ctx context.Context, id string, ttl time.Duration) error
	IsRevoked(ctx context.Context, id string) (bool, error)
}

// RedisKeyPrefix namespaces revoked session IDs in Redis.
const RedisKeyPrefix = "gradebook:revoked:"

// RedisRevoker keeps revoked IDs in Redis so every server instance sees a
// logout. Keys expire on their own with the token.
type RedisRevoker struct {
	client redis.Cmdable
}

// NewRedisRevoker creates a revoker over client.
func NewRedisRevoker(client redis.Cmdable) *RedisRevoker {
	return &RedisRevoker{client: client}
}

// Revoke implements Revoker.
func (r *RedisRevoker) Revoke(ctx context.Context, id string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, RedisKeyPrefix+id, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// IsRevoked implements Revoker.
func (r *RedisRevoker) IsRevoked(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Exists(ctx, RedisKeyPrefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked session: %w", err)
	}
	return n > 0, nil
}

// MemoryRevoker is a process-local Revoker used when Redis is not configured.
type MemoryRevoker struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevoker creates an empty MemoryRevoker.
func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke implements Revoker.
func (r *MemoryRevoker) Revoke(_ context.Context, id string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for k, exp := range r.expires {
		if !now.Before(exp) {
			delete(r.expires, k)
		}
	}
	r.expires[id] = now.Add(ttl)
	return nil
}

// IsRevoked implements Revoker.
func (r *MemoryRevoker) IsRevoked(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	exp, ok := r.expires[id]
	if !ok {
		return false, nil
	}
	if !r.now().Before(exp) {
		delete(r.expires, id)
		return false, nil
	}
	return true, nil
}
