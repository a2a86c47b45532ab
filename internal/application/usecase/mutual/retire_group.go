package mutual

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/streamshare/backend/internal/application/adapter"
	"github.com/streamshare/backend/internal/domain/entity"
	domainerror "github.com/streamshare/backend/internal/domain/error"
)

// RetireGroupInput represents the input for retiring a group that cannot form.
type RetireGroupInput struct {
	GroupID uuid.UUID
}

// RetireGroupOutput represents the retired group.
type RetireGroupOutput struct {
	Group *entity.MutualGroup
}

// RetireGroupUseCase moves a FORMING group to STALLED on an administrator's request.
type RetireGroupUseCase struct {
	registry   adapter.GroupRegistry
	ledger     adapter.InvitationLedger
	transactor adapter.Transactor
	cache      adapter.NotificationCache
	metrics    adapter.MutualMetrics
}

// NewRetireGroupUseCase creates a new RetireGroupUseCase instance.
func NewRetireGroupUseCase(
	registry adapter.GroupRegistry,
	ledger adapter.InvitationLedger,
	transactor adapter.Transactor,
	cache adapter.NotificationCache,
	metrics adapter.MutualMetrics,
) *RetireGroupUseCase {
	return &RetireGroupUseCase{
		registry:   registry,
		ledger:     ledger,
		transactor: transactor,
		cache:      cache,
		metrics:    metricsOrNop(metrics),
	}
}

// Execute performs the retirement. Retiring an already STALLED group is a no-op.
// STALLED is terminal: pending invitations stay on record but stop counting
// toward the invitee's badge.
func (uc *RetireGroupUseCase) Execute(ctx context.Context, input RetireGroupInput) (*RetireGroupOutput, error) {
	var group *entity.MutualGroup
	var stalled bool
	var stillPending []uuid.UUID

	err := uc.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		group, err = uc.registry.FindByIDForUpdate(txCtx, input.GroupID)
		if err != nil {
			return fmt.Errorf("failed to get group: %w", err)
		}
		if group == nil {
			return domainerror.NewMutualError(
				domainerror.ErrCodeMutualGroupNotFound,
				"mutual group not found",
				domainerror.ErrMutualGroupNotFound,
			)
		}

		switch group.Status {
		case entity.MutualGroupStatusStalled:
			return nil
		case entity.MutualGroupStatusActive:
			return domainerror.NewMutualError(
				domainerror.ErrCodeGroupNotForming,
				"an active group cannot be retired",
				domainerror.ErrGroupNotForming,
			)
		}

		stalled, err = uc.registry.MarkStalled(txCtx, group.ID)
		if err != nil {
			return fmt.Errorf("failed to stall group: %w", err)
		}
		if !stalled {
			return domainerror.NewMutualError(
				domainerror.ErrCodeGroupNotForming,
				"group changed state, please reload",
				domainerror.ErrGroupNotForming,
			)
		}
		group.Status = entity.MutualGroupStatusStalled

		stillPending, err = pendingInvitees(txCtx, uc.ledger, group.ID)
		return err
	})
	if err != nil {
		return nil, storageError(err)
	}

	if stalled {
		invalidateCounts(ctx, uc.cache, stillPending...)
		uc.metrics.GroupStalled()
		slog.Info("mutual group retired", "group_id", group.ID)
	}

	return &RetireGroupOutput{Group: group}, nil
}
