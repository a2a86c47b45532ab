// Package mutual contains the mutual connection use cases: forming plan-sharing
// groups, sending invitations and processing the members' decisions.
package mutual

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/streamshare/backend/internal/application/adapter"
	"github.com/streamshare/backend/internal/domain/entity"
	domainerror "github.com/streamshare/backend/internal/domain/error"
)

// DefaultMinMembers is the smallest group an administrator can form.
const DefaultMinMembers = 2

// Options toggles the stricter behaviors of the coordinator.
// The zero value plus DefaultMinMembers reproduces the dashboard's original behavior.
type Options struct {
	// MinMembers is the minimum number of invitees per group.
	MinMembers int
	// RequireAdminMessage rejects groups created without a message for the invitees.
	RequireAdminMessage bool
	// SingleMembership prevents a user from holding more than one active membership.
	SingleMembership bool
	// StallOnDecline moves a FORMING group to STALLED as soon as any invitee declines.
	StallOnDecline bool
}

// DefaultOptions returns the options matching the dashboard's original behavior.
func DefaultOptions() Options {
	return Options{MinMembers: DefaultMinMembers}
}

func (o Options) minMembers() int {
	if o.MinMembers < DefaultMinMembers {
		return DefaultMinMembers
	}
	return o.MinMembers
}

// storageError converts an unexpected persistence failure into a retryable StorageUnavailable error.
// Domain errors pass through untouched.
func storageError(err error) error {
	var mutualErr *domainerror.MutualError
	if errors.As(err, &mutualErr) {
		return mutualErr
	}
	return domainerror.NewMutualError(
		domainerror.ErrCodeStorageUnavailable,
		domainerror.ErrStorageUnavailable.Error(),
		err,
	)
}

// invalidateCounts drops cached notification counts after a commit.
// The cache entry expires on its own if this fails.
func invalidateCounts(ctx context.Context, cache adapter.NotificationCache, userIDs ...uuid.UUID) {
	if cache == nil || len(userIDs) == 0 {
		return
	}
	if err := cache.Invalidate(ctx, userIDs...); err != nil {
		slog.Warn("failed to invalidate notification counts", "users", len(userIDs), "error", err)
	}
}

// pendingInvitees lists the users still holding a PENDING invitation in the group.
func pendingInvitees(ctx context.Context, ledger adapter.InvitationLedger, groupID uuid.UUID) ([]uuid.UUID, error) {
	members, err := ledger.FindGroupMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group members: %w", err)
	}
	var ids []uuid.UUID
	for _, member := range members {
		if member.InviteStatus == entity.MutualInviteStatusPending {
			ids = append(ids, member.UserID)
		}
	}
	return ids, nil
}

type nopMetrics struct{}

func (nopMetrics) GroupCreated(string, int) {}
func (nopMetrics) InviteResponded(bool)     {}
func (nopMetrics) GroupPromoted(string)     {}
func (nopMetrics) GroupStalled()            {}

func metricsOrNop(m adapter.MutualMetrics) adapter.MutualMetrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
