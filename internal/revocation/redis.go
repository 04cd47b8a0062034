package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisDenylist shares revocations between replicas; keys expire with the token.
type RedisDenylist struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisDenylist(redisURL string) (*RedisDenylist, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisDenylist{client: redis.NewClient(opts), now: time.Now}, nil
}

func (r *RedisDenylist) Revoke(ctx context.Context, token string, until time.Time) error {
	k, err := key(token)
	if err != nil {
		return err
	}
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, k, "1", ttl).Err()
}

func (r *RedisDenylist) IsRevoked(ctx context.Context, token string) (bool, error) {
	k, err := key(token)
	if err != nil {
		return false, nil
	}
	n, err := r.client.Exists(ctx, k).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisDenylist) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisDenylist) Close() error {
	return r.client.Close()
}
