package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/corsair/backend/internal/domain/expedition"
	"github.com/corsair/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisNotifier pushes expedition progress events to Redis pub/sub channels.
// Subscribers (websocket gateways, bots) pick them up independently; a failed
// publish is logged and dropped, never surfaced to the caller.
type RedisNotifier struct {
	client        *redis.Client
	channelPrefix string
	logger        *zap.Logger
}

// NewRedisNotifier creates a notifier with its own Redis connection
func NewRedisNotifier(cfg config.RedisConfig, logger *zap.Logger) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisNotifier{
		client:        client,
		channelPrefix: "expedition:",
		logger:        logger,
	}, nil
}

// NewRedisNotifierWithClient creates a notifier with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisNotifierWithClient(client *redis.Client, channelPrefix string, logger *zap.Logger) *RedisNotifier {
	if channelPrefix == "" {
		channelPrefix = "expedition:"
	}
	return &RedisNotifier{
		client:        client,
		channelPrefix: channelPrefix,
		logger:        logger,
	}
}

type notification struct {
	Event        string         `json:"event"`
	ExpeditionID uuid.UUID      `json:"expedition_id"`
	Data         map[string]any `json:"data,omitempty"`
	OccurredAt   time.Time      `json:"occurred_at"`
}

// OnProgressChanged publishes a progress update for the expedition
func (n *RedisNotifier) OnProgressChanged(ctx context.Context, expeditionID uuid.UUID, data map[string]any) {
	n.publish(ctx, "progress_changed", expeditionID, data)
}

// OnCompleted publishes a completion announcement for the expedition
func (n *RedisNotifier) OnCompleted(ctx context.Context, expeditionID uuid.UUID, data map[string]any) {
	n.publish(ctx, "completed", expeditionID, data)
}

func (n *RedisNotifier) publish(ctx context.Context, event string, expeditionID uuid.UUID, data map[string]any) {
	payload, err := json.Marshal(notification{
		Event:        event,
		ExpeditionID: expeditionID,
		Data:         data,
		OccurredAt:   time.Now().UTC(),
	})
	if err != nil {
		n.logger.Error("failed to encode notification",
			zap.String("event", event),
			zap.String("expedition_id", expeditionID.String()),
			zap.Error(err))
		return
	}

	channel := n.channelPrefix + expeditionID.String()
	if err := n.client.Publish(ctx, channel, payload).Err(); err != nil {
		n.logger.Warn("failed to publish notification",
			zap.String("channel", channel),
			zap.String("event", event),
			zap.Error(err))
	}
}

// Close closes the Redis client
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}

// NopNotifier discards all notifications. Used when Redis is not configured.
type NopNotifier struct{}

func (NopNotifier) OnProgressChanged(context.Context, uuid.UUID, map[string]any) {}
func (NopNotifier) OnCompleted(context.Context, uuid.UUID, map[string]any)       {}

var (
	_ expedition.Notifier = (*RedisNotifier)(nil)
	_ expedition.Notifier = NopNotifier{}
)
