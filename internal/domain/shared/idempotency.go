package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which event IDs have been handled so a
// redelivered event is dropped rather than processed twice.
type IdempotencyStore interface {
	// MarkProcessed records the event ID for ttl. It reports false when
	// the ID was already present, meaning someone else won the race.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether the event ID is currently recorded.
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	Close() error
}

// IdempotencyConfig tunes duplicate suppression.
type IdempotencyConfig struct {
	// TTL bounds how long an event ID stays recorded. Once it expires
	// the same ID would be processed again.
	TTL time.Duration

	// Enabled turns duplicate suppression off entirely when false.
	Enabled bool
}

// DefaultIdempotencyConfig remembers event IDs for a day.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
