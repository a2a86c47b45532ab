package adapter

import (
	"context"

	"github.com/google/uuid"
)

// CachedCount is the result of a notification cache lookup.
type CachedCount struct {
	Count int
	Hit   bool
	// Generation is the user's invalidation epoch at read time. Pass it back to
	// Set so a count computed before an invalidation is never stored after it.
	Generation int64
}

// NotificationCache caches per-user pending invitation counts.
// Implementations must tolerate being unavailable; callers fall back to the ledger.
type NotificationCache interface {
	// Get returns the cached count, or a miss carrying the current generation.
	Get(ctx context.Context, userID uuid.UUID) (CachedCount, error)

	// Set stores the count only if the user's generation still equals generation.
	Set(ctx context.Context, userID uuid.UUID, count int, generation int64) error

	// Invalidate drops the cached counts of the given users and advances their generation.
	Invalidate(ctx context.Context, userIDs ...uuid.UUID) error
}
