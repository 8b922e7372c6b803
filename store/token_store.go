package store

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const revokedTokenPrefix = "revoked_token:"

// TokenStore remembers revoked token ids until the tokens would expire anyway.
type TokenStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

var (
	_ TokenStore = (*RedisTokenStore)(nil)
	_ TokenStore = (*MemoryTokenStore)(nil)
)

// NewTokenStore returns a Redis-backed store, or a process-local one when
// rdb is nil.
func NewTokenStore(rdb *redis.Client) TokenStore {
	if rdb == nil {
		return NewMemoryTokenStore()
	}
	return NewRedisTokenStore(rdb)
}

// RedisTokenStore shares revocations across API replicas.
type RedisTokenStore struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisTokenStore(rdb *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{rdb: rdb, now: time.Now}
}

func (s *RedisTokenStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, revokedTokenPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revokedTokenPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

// MemoryTokenStore keeps revocations in process memory. Revocations are lost
// on restart and are not shared between replicas.
type MemoryTokenStore struct {
	revoked *cache.Cache
	now     func() time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		revoked: cache.New(cache.NoExpiration, 10*time.Minute),
		now:     time.Now,
	}
}

func (s *MemoryTokenStore) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	s.revoked.Set(tokenID, struct{}{}, ttl)
	return nil
}

func (s *MemoryTokenStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, found := s.revoked.Get(tokenID)
	return found, nil
}
