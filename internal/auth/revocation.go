// AngelaMos | 2026
// revocation.go

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker remembers session ids that were logged out before they expired.
type Revoker interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type RedisRevoker struct {
	client *redis.Client
	key    func(parts ...string) string
	now    func() time.Time
}

// NewRedisRevoker stores entries under key("revoked", jti), so callers
// pass core.Redis.Key to keep the configured namespace.
func NewRedisRevoker(
	client *redis.Client,
	key func(parts ...string) string,
) *RedisRevoker {
	return &RedisRevoker{client: client, key: key, now: time.Now}
}

func (r *RedisRevoker) Revoke(
	ctx context.Context,
	jti string,
	until time.Time,
) error {
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return nil
	}

	if err := r.client.Set(ctx, r.key("revoked", jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key("revoked", jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check session revocation: %w", err)
	}
	return n > 0, nil
}
