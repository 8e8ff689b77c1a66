package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist revokes JWTs before their natural expiry, either one
// token at a time (logout) or every token an owner holds (key rotation,
// suspected compromise).
type TokenBlacklist interface {
	// Revoke blocks a single token by its JTI. ttl should match the
	// token's remaining lifetime.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether the JTI has been revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// RevokeOwner records a cut-off instant for the owner. Every token
	// issued at or before it counts as revoked.
	RevokeOwner(ctx context.Context, ownerRef string, ttl time.Duration) error

	// IsOwnerRevoked reports whether a token issued at issuedAt falls
	// under the owner's cut-off.
	IsOwnerRevoked(ctx context.Context, ownerRef string, issuedAt time.Time) (bool, error)
}

const blacklistKeyPrefix = "token:blacklist:"

// RedisTokenBlacklist shares revocations across instances through Redis.
// Entries expire on their own once the underlying token would have.
type RedisTokenBlacklist struct {
	client *redis.Client
}

// RedisTokenBlacklistConfig holds the Redis connection settings.
type RedisTokenBlacklistConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisTokenBlacklist connects to Redis and verifies the connection.
func NewRedisTokenBlacklist(cfg RedisTokenBlacklistConfig) (*RedisTokenBlacklist, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 3,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis for token blacklist: %w", err)
	}

	return &RedisTokenBlacklist{client: client}, nil
}

// NewRedisTokenBlacklistWithClient reuses an existing Redis client.
func NewRedisTokenBlacklistWithClient(client *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client}
}

func jtiKey(jti string) string {
	return blacklistKeyPrefix + "jti:" + jti
}

func ownerKey(ownerRef string) string {
	return blacklistKeyPrefix + "owner:" + ownerRef
}

func (b *RedisTokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := b.client.Set(ctx, jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (b *RedisTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := b.client.Exists(ctx, jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return exists > 0, nil
}

func (b *RedisTokenBlacklist) RevokeOwner(ctx context.Context, ownerRef string, ttl time.Duration) error {
	cutoff := time.Now().Unix()
	if err := b.client.Set(ctx, ownerKey(ownerRef), cutoff, ttl).Err(); err != nil {
		return fmt.Errorf("revoke owner tokens: %w", err)
	}
	return nil
}

func (b *RedisTokenBlacklist) IsOwnerRevoked(ctx context.Context, ownerRef string, issuedAt time.Time) (bool, error) {
	raw, err := b.client.Get(ctx, ownerKey(ownerRef)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check owner revocation: %w", err)
	}

	cutoff, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("parse owner revocation cutoff: %w", err)
	}
	return issuedAt.Unix() <= cutoff, nil
}

// Close releases the Redis client.
func (b *RedisTokenBlacklist) Close() error {
	return b.client.Close()
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist keeps revocations in process memory. Suitable
// for tests and single-instance deployments; revocations vanish on
// restart.
type InMemoryTokenBlacklist struct {
	mu           sync.RWMutex
	revokedJTIs  map[string]time.Time // jti -> entry expiry
	ownerCutoffs map[string]time.Time // ownerRef -> revocation instant
}

func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		revokedJTIs:  make(map[string]time.Time),
		ownerCutoffs: make(map[string]time.Time),
	}
}

func (b *InMemoryTokenBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revokedJTIs[jti] = time.Now().Add(ttl)
	return nil
}

func (b *InMemoryTokenBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiry, ok := b.revokedJTIs[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(b.revokedJTIs, jti)
		return false, nil
	}
	return true, nil
}

func (b *InMemoryTokenBlacklist) RevokeOwner(_ context.Context, ownerRef string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ownerCutoffs[ownerRef] = time.Now()
	return nil
}

func (b *InMemoryTokenBlacklist) IsOwnerRevoked(_ context.Context, ownerRef string, issuedAt time.Time) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	cutoff, ok := b.ownerCutoffs[ownerRef]
	if !ok {
		return false, nil
	}
	// Nanosecond comparison keeps sub-second token issue times exact.
	return issuedAt.UnixNano() <= cutoff.UnixNano(), nil
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
