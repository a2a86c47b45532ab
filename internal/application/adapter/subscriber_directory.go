package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/streamshare/backend/internal/domain/entity"
)

// SubscriberDirectory defines read-only queries against the user and subscription store.
type SubscriberDirectory interface {
	// FindLowUsageSubscribers returns users with an active subscription whose
	// watch minutes since monthStart sum to less than thresholdMinutes, least active first.
	FindLowUsageSubscribers(ctx context.Context, thresholdMinutes int, monthStart time.Time) ([]*entity.LowUsageCandidate, error)

	// FindDisplayInfo returns name, email and country for the given users.
	// Unknown IDs are skipped.
	FindDisplayInfo(ctx context.Context, userIDs []uuid.UUID) ([]*entity.UserDisplayInfo, error)
}
