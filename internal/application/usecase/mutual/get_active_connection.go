package mutual

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/streamshare/backend/internal/application/adapter"
	"github.com/streamshare/backend/internal/domain/entity"
)

// GetActiveConnectionInput represents the input for the active connection query.
type GetActiveConnectionInput struct {
	UserID uuid.UUID
}

// GetActiveConnectionOutput holds the user's active connection, or nil when there is none.
type GetActiveConnectionOutput struct {
	Connection *entity.ActiveConnection
}

// GetActiveConnectionUseCase returns the group a user most recently joined, with its roster.
// When a user holds several memberships only the latest by response time is returned.
type GetActiveConnectionUseCase struct {
	registry adapter.GroupRegistry
	ledger   adapter.InvitationLedger
}

// NewGetActiveConnectionUseCase creates a new GetActiveConnectionUseCase instance.
func NewGetActiveConnectionUseCase(registry adapter.GroupRegistry, ledger adapter.InvitationLedger) *GetActiveConnectionUseCase {
	return &GetActiveConnectionUseCase{
		registry: registry,
		ledger:   ledger,
	}
}

// Execute performs the lookup.
func (uc *GetActiveConnectionUseCase) Execute(ctx context.Context, input GetActiveConnectionInput) (*GetActiveConnectionOutput, error) {
	invite, err := uc.ledger.FindActiveConnection(ctx, input.UserID)
	if err != nil {
		return nil, storageError(fmt.Errorf("failed to find active connection: %w", err))
	}
	if invite == nil {
		return &GetActiveConnectionOutput{}, nil
	}

	group, err := uc.registry.FindByID(ctx, invite.GroupID)
	if err != nil {
		return nil, storageError(fmt.Errorf("failed to get group: %w", err))
	}
	if group == nil {
		return &GetActiveConnectionOutput{}, nil
	}

	members, err := uc.ledger.FindGroupMembers(ctx, group.ID)
	if err != nil {
		return nil, storageError(fmt.Errorf("failed to get group members: %w", err))
	}

	return &GetActiveConnectionOutput{
		Connection: &entity.ActiveConnection{
			Invite:  invite,
			Group:   group,
			Members: members,
		},
	}, nil
}
