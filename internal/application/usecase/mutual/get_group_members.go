package mutual

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/streamshare/backend/internal/application/adapter"
	"github.com/streamshare/backend/internal/domain/entity"
	domainerror "github.com/streamshare/backend/internal/domain/error"
)

// GetGroupMembersInput represents the input for inspecting a group.
type GetGroupMembersInput struct {
	GroupID uuid.UUID
}

// GetGroupMembersOutput holds a group and every invitee's status.
type GetGroupMembersOutput struct {
	Group   *entity.MutualGroup
	Members []*entity.GroupMember
	Tally   entity.InviteTally
}

// GetGroupMembersUseCase returns a group's roster for the admin view.
type GetGroupMembersUseCase struct {
	registry adapter.GroupRegistry
	ledger   adapter.InvitationLedger
}

// NewGetGroupMembersUseCase creates a new GetGroupMembersUseCase instance.
func NewGetGroupMembersUseCase(registry adapter.GroupRegistry, ledger adapter.InvitationLedger) *GetGroupMembersUseCase {
	return &GetGroupMembersUseCase{
		registry: registry,
		ledger:   ledger,
	}
}

// Execute loads the group and its members.
func (uc *GetGroupMembersUseCase) Execute(ctx context.Context, input GetGroupMembersInput) (*GetGroupMembersOutput, error) {
	group, err := uc.registry.FindByID(ctx, input.GroupID)
	if err != nil {
		return nil, storageError(fmt.Errorf("failed to get group: %w", err))
	}
	if group == nil {
		return nil, domainerror.NewMutualError(
			domainerror.ErrCodeMutualGroupNotFound,
			"mutual group not found",
			domainerror.ErrMutualGroupNotFound,
		)
	}

	members, err := uc.ledger.FindGroupMembers(ctx, group.ID)
	if err != nil {
		return nil, storageError(fmt.Errorf("failed to get group members: %w", err))
	}

	var tally entity.InviteTally
	for _, m := range members {
		tally.Total++
		switch m.InviteStatus {
		case entity.MutualInviteStatusAccepted:
			tally.Accepted++
		case entity.MutualInviteStatusDeclined:
			tally.Declined++
		}
	}

	return &GetGroupMembersOutput{
		Group:   group,
		Members: members,
		Tally:   tally,
	}, nil
}
