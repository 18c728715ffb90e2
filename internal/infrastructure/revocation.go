package infrastructure

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	blacklistPrefix = "jwt:blacklist:"
	kvTimeout       = 5 * time.Second
)

// RedisRevocationStore blacklists tokens on logout until their natural
// expiry. Failures never block logout, and a store outage reports tokens as
// not revoked (fail-open for availability).
type RedisRevocationStore struct {
	client *redis.Client
}

func NewRedisRevocationStore(url string) (*RedisRevocationStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), kvTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisRevocationStore{client: client}, nil
}

// Revoke marks the token revoked for its remaining validity. Best-effort.
func (s *RedisRevocationStore) Revoke(ctx context.Context, token string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, kvTimeout)
	defer cancel()
	if err := s.client.Set(ctx, blacklistPrefix+token, "revoked", ttl).Err(); err != nil {
		log.Printf("revocation: failed to blacklist token: %v", err)
	}
}

// IsRevoked reports whether the token has been blacklisted.
func (s *RedisRevocationStore) IsRevoked(ctx context.Context, token string) bool {
	ctx, cancel := context.WithTimeout(ctx, kvTimeout)
	defer cancel()
	n, err := s.client.Exists(ctx, blacklistPrefix+token).Result()
	if err != nil {
		log.Printf("revocation: blacklist check failed: %v", err)
		return false
	}
	return n > 0
}

func (s *RedisRevocationStore) Close() {
	s.client.Close()
}

// NoopRevocationStore reports every token as valid. Acceptable for
// single-replica deployments without Redis.
type NoopRevocationStore struct{}

func (NoopRevocationStore) Revoke(ctx context.Context, token string, ttl time.Duration) {}

func (NoopRevocationStore) IsRevoked(ctx context.Context, token string) bool { return false }
