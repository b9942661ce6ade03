// AngelaMos | 2026
// redis.go

package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/member-portal/internal/config"
)

const redisDialTimeout = 5 * time.Second

// Redis holds revoked session ids and rate-limit counters. Every key it
// hands out lives under one namespace so several deployments can share an
// instance.
type Redis struct {
	Client    *redis.Client
	namespace string
}

func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}

	r := &Redis{
		Client:    redis.NewClient(opts),
		namespace: trimNamespace(cfg.KeyPrefix),
	}

	if err := r.Ping(ctx); err != nil {
		_ = r.Client.Close() //nolint:errcheck // ping error takes precedence
		return nil, err
	}

	return r, nil
}

func trimNamespace(prefix string) string {
	return strings.TrimSuffix(prefix, ":")
}

func redisOptions(cfg config.RedisConfig) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = redisDialTimeout
	opts.ConnMaxIdleTime = 5 * time.Minute

	return opts, nil
}

// Key joins parts under the namespace: Key("revoked", jti) gives
// "members:revoked:<jti>".
func (r *Redis) Key(parts ...string) string {
	if r.namespace == "" {
		return strings.Join(parts, ":")
	}
	return r.namespace + ":" + strings.Join(parts, ":")
}

func (r *Redis) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()

	if err := r.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	if r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
