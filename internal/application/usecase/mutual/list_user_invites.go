package mutual

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/streamshare/backend/internal/application/adapter"
	"github.com/streamshare/backend/internal/domain/entity"
)

// ListUserInvitesInput represents the input for listing a user's invitations.
type ListUserInvitesInput struct {
	UserID uuid.UUID
}

// ListUserInvitesOutput holds pending and historical invitations, newest first.
type ListUserInvitesOutput struct {
	Invites      []*entity.MutualInvite
	PendingCount int
}

// ListUserInvitesUseCase returns the user's invitation feed.
type ListUserInvitesUseCase struct {
	ledger adapter.InvitationLedger
}

// NewListUserInvitesUseCase creates a new ListUserInvitesUseCase instance.
func NewListUserInvitesUseCase(ledger adapter.InvitationLedger) *ListUserInvitesUseCase {
	return &ListUserInvitesUseCase{ledger: ledger}
}

// Execute lists the invitations.
func (uc *ListUserInvitesUseCase) Execute(ctx context.Context, input ListUserInvitesInput) (*ListUserInvitesOutput, error) {
	invites, err := uc.ledger.FindByUser(ctx, input.UserID)
	if err != nil {
		return nil, storageError(fmt.Errorf("failed to list invites: %w", err))
	}

	// pending invitations of stalled groups stay listed but cannot be answered
	pending, err := uc.ledger.CountPendingByUser(ctx, input.UserID)
	if err != nil {
		return nil, storageError(fmt.Errorf("failed to count pending invites: %w", err))
	}

	return &ListUserInvitesOutput{
		Invites:      invites,
		PendingCount: pending,
	}, nil
}
