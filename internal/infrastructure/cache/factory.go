package cache

import (
	"fmt"

	"github.com/corsair/backend/internal/domain/shared"
	"github.com/corsair/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// IdempotencyStoreFactory picks the idempotency backend at startup:
// Redis when reachable, the process-local store otherwise
type IdempotencyStoreFactory struct {
	redisConfig   config.RedisConfig
	logger        *zap.Logger
	requireShared bool
}

// IdempotencyStoreFactoryOption configures the factory
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithRequireSharedStore makes CreateStore fail instead of falling back
// to the in-memory store. Multi-instance deployments need the shared
// store or duplicates slip through on the other replicas.
func WithRequireSharedStore() IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.requireShared = true
	}
}

// NewIdempotencyStoreFactory creates a factory for the given Redis config
func NewIdempotencyStoreFactory(cfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		redisConfig: cfg,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a Redis-backed store when Redis answers the ping,
// otherwise the in-memory store unless a shared store was required
func (f *IdempotencyStoreFactory) CreateStore() (shared.IdempotencyStore, error) {
	store, err := NewRedisIdempotencyStore(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("using Redis idempotency store")
		return store, nil
	}

	if f.requireShared {
		return nil, fmt.Errorf("shared idempotency store required but Redis is unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store",
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}
