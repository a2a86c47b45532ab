package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/streamshare/backend/internal/domain/entity"
)

// RespondInput describes a guarded decision on an invitation.
type RespondInput struct {
	InviteID     uuid.UUID
	UserID       uuid.UUID
	InviteStatus entity.MutualInviteStatus
	MemberStatus entity.MemberStatus
	RespondedAt  time.Time
}

// InvitationLedger defines the persistence operations for mutual invitations.
type InvitationLedger interface {
	// CreateBatch inserts all invitations in one statement.
	CreateBatch(ctx context.Context, invites []*entity.MutualInvite) error

	// CountPendingByUser returns the number of PENDING invitations addressed to the user.
	CountPendingByUser(ctx context.Context, userID uuid.UUID) (int, error)

	// FindByUser retrieves all invitations addressed to the user, newest first.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.MutualInvite, error)

	// FindByIDForUser retrieves an invitation only if it belongs to the user.
	// Returns nil when the invitation does not exist or belongs to someone else.
	FindByIDForUser(ctx context.Context, inviteID, userID uuid.UUID) (*entity.MutualInvite, error)

	// Respond applies the decision only if the invitation belongs to the user and is still PENDING.
	// Returns false without error when no row matched.
	Respond(ctx context.Context, input RespondInput) (bool, error)

	// CountByGroup returns the total, accepted and declined invitations of a group.
	CountByGroup(ctx context.Context, groupID uuid.UUID) (entity.InviteTally, error)

	// FindGroupMembers retrieves every invitation of a group joined with user display info.
	FindGroupMembers(ctx context.Context, groupID uuid.UUID) ([]*entity.GroupMember, error)

	// FindActiveConnection retrieves the user's most recently accepted ACTIVE invitation.
	// Returns nil when the user has no active membership.
	FindActiveConnection(ctx context.Context, userID uuid.UUID) (*entity.MutualInvite, error)

	// FindUsersWithActiveMembership returns the subset of users holding an active membership.
	FindUsersWithActiveMembership(ctx context.Context, userIDs []uuid.UUID) ([]uuid.UUID, error)
}
