package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers client-supplied idempotency keys so that a
// retried request is not executed twice.
type IdempotencyStore interface {
	// Reserve claims key for ttl. It returns false when the key is
	// already held by an earlier request.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release drops a reservation so the request may be retried, used when
	// the first attempt failed.
	Release(ctx context.Context, key string) error

	// Close releases resources held by the store
	Close() error
}

// DefaultIdempotencyTTL is how long a completed request key is remembered
const DefaultIdempotencyTTL = 24 * time.Hour
