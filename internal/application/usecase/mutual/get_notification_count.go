package mutual

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/streamshare/backend/internal/application/adapter"
)

// GetNotificationCountInput represents the input for the notification badge query.
type GetNotificationCountInput struct {
	UserID uuid.UUID
}

// GetNotificationCountOutput represents the number of pending invitations.
type GetNotificationCountOutput struct {
	Count int
}

// GetNotificationCountUseCase returns how many invitations are awaiting the user's decision.
type GetNotificationCountUseCase struct {
	ledger adapter.InvitationLedger
	cache  adapter.NotificationCache
}

// NewGetNotificationCountUseCase creates a new GetNotificationCountUseCase instance.
// cache may be nil.
func NewGetNotificationCountUseCase(ledger adapter.InvitationLedger, cache adapter.NotificationCache) *GetNotificationCountUseCase {
	return &GetNotificationCountUseCase{
		ledger: ledger,
		cache:  cache,
	}
}

// Execute reads the count through the cache. Cache failures fall back to the ledger.
// The generation observed on a miss guards the write-back, so a respond that
// commits while the ledger is being read leaves the cache empty instead of stale.
func (uc *GetNotificationCountUseCase) Execute(ctx context.Context, input GetNotificationCountInput) (*GetNotificationCountOutput, error) {
	cacheable := false
	var generation int64
	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx, input.UserID)
		switch {
		case err != nil:
			slog.Warn("notification cache read failed", "user_id", input.UserID, "error", err)
		case cached.Hit:
			return &GetNotificationCountOutput{Count: cached.Count}, nil
		default:
			cacheable = true
			generation = cached.Generation
		}
	}

	count, err := uc.ledger.CountPendingByUser(ctx, input.UserID)
	if err != nil {
		return nil, storageError(fmt.Errorf("failed to count pending invites: %w", err))
	}

	if cacheable {
		if err := uc.cache.Set(ctx, input.UserID, count, generation); err != nil {
			slog.Warn("notification cache write failed", "user_id", input.UserID, "error", err)
		}
	}

	return &GetNotificationCountOutput{Count: count}, nil
}
