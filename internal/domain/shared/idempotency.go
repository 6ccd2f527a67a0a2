package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers request keys so a retried action runs once
type IdempotencyStore interface {
	// MarkProcessed records key for ttl. It returns false when the key was
	// already recorded and has not expired.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether key is recorded
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Forget drops key so a failed action can be retried with it
	Forget(ctx context.Context, key string) error

	Close() error
}
