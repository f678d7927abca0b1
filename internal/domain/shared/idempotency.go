package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers handled event IDs so a redelivered event does
// not trigger its side effect twice. The payment-completed handler checks
// it before sending the supplier SMS.
type IdempotencyStore interface {
	// MarkProcessed records the event ID with a TTL. It reports false when
	// the ID was already present.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether the event ID has been recorded
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	Close() error
}

// IdempotencyConfig holds the dedupe window settings
type IdempotencyConfig struct {
	// TTL is how long a processed event ID is remembered. The same ID seen
	// after the window has passed is treated as new.
	TTL time.Duration

	Enabled bool
}

// DefaultIdempotencyConfig keeps IDs for a day, which covers outbox
// redelivery after restarts and dead-letter retries.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
