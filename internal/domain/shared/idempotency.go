package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed operation IDs so retried
// deliveries (Telegram webhook updates, replayed events) are applied
// at most once.
type IdempotencyStore interface {
	// MarkProcessed records an ID with a TTL. Returns true if the ID
	// was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, id string, ttl time.Duration) (bool, error)

	// IsProcessed checks whether an ID has already been recorded
	IsProcessed(ctx context.Context, id string) (bool, error)
}
