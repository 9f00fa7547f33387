package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rjdelacruz/go-fuel-console.git/internal/redisx"
)

// RedisRevocationList stores revoked session ids in Redis with a TTL
// matching the token's remaining lifetime.
type RedisRevocationList struct {
	Client *redis.Client
}

func (r *RedisRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	key := fmt.Sprintf(redisx.KeySessionRevoked, jti)
	return r.Client.Set(ctx, key, "1", ttl).Err()
}

func (r *RedisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	key := fmt.Sprintf(redisx.KeySessionRevoked, jti)
	return redisx.Exists(ctx, r.Client, key)
}
