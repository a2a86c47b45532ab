package mutual

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/streamshare/backend/internal/application/adapter"
	"github.com/streamshare/backend/internal/domain/entity"
	domainerror "github.com/streamshare/backend/internal/domain/error"
)

const (
	acceptedMessage = "You have joined the mutual connection group!"
	declinedMessage = "Invite declined."
)

// RespondToInviteInput represents a user's decision on one of their invitations.
type RespondToInviteInput struct {
	InviteID uuid.UUID
	UserID   uuid.UUID
	Accept   bool
}

// RespondToInviteOutput represents the outcome of a decision.
type RespondToInviteOutput struct {
	Message     string
	GroupID     uuid.UUID
	GroupStatus entity.MutualGroupStatus
	Promoted    bool
	Stalled     bool
}

// RespondToInviteUseCase records an accept or decline and promotes the group once every invitee accepted.
type RespondToInviteUseCase struct {
	registry     adapter.GroupRegistry
	ledger       adapter.InvitationLedger
	transactor   adapter.Transactor
	emailService adapter.EmailService
	cache        adapter.NotificationCache
	metrics      adapter.MutualMetrics
	options      Options
	now          func() time.Time
}

// NewRespondToInviteUseCase creates a new RespondToInviteUseCase instance.
func NewRespondToInviteUseCase(
	registry adapter.GroupRegistry,
	ledger adapter.InvitationLedger,
	transactor adapter.Transactor,
	emailService adapter.EmailService,
	cache adapter.NotificationCache,
	metrics adapter.MutualMetrics,
	options Options,
) *RespondToInviteUseCase {
	return &RespondToInviteUseCase{
		registry:     registry,
		ledger:       ledger,
		transactor:   transactor,
		emailService: emailService,
		cache:        cache,
		metrics:      metricsOrNop(metrics),
		options:      options,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Execute applies the decision. The group row is locked before anything is written,
// so a retire and the last of two concurrent acceptors both observe every earlier
// decision. Only FORMING groups take responses. The promotion itself is a
// conditional update and takes effect once.
func (uc *RespondToInviteUseCase) Execute(ctx context.Context, input RespondToInviteInput) (*RespondToInviteOutput, error) {
	if input.InviteID == uuid.Nil || input.UserID == uuid.Nil {
		return nil, notFoundOrUnauthorized()
	}

	output := &RespondToInviteOutput{Message: declinedMessage}
	if input.Accept {
		output.Message = acceptedMessage
	}

	var group *entity.MutualGroup
	var stillPending []uuid.UUID
	err := uc.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		invite, err := uc.ledger.FindByIDForUser(txCtx, input.InviteID, input.UserID)
		if err != nil {
			return fmt.Errorf("failed to load invite: %w", err)
		}
		if invite == nil || !invite.IsPending() {
			return classifyUnchanged(invite)
		}

		group, err = uc.registry.FindByIDForUpdate(txCtx, invite.GroupID)
		if err != nil {
			return fmt.Errorf("failed to load group: %w", err)
		}
		if group == nil {
			return domainerror.NewMutualError(
				domainerror.ErrCodeMutualGroupNotFound,
				"mutual group not found",
				domainerror.ErrMutualGroupNotFound,
			)
		}
		if group.Status != entity.MutualGroupStatusForming {
			return domainerror.NewMutualError(
				domainerror.ErrCodeGroupNotForming,
				fmt.Sprintf("this group is %s and no longer takes responses", strings.ToLower(string(group.Status))),
				domainerror.ErrGroupNotForming,
			)
		}

		if input.Accept && uc.options.SingleMembership {
			if err := uc.ensureNoOtherMembership(txCtx, input); err != nil {
				return err
			}
		}

		inviteStatus, memberStatus := entity.Decision(input.Accept)
		updated, err := uc.ledger.Respond(txCtx, adapter.RespondInput{
			InviteID:     input.InviteID,
			UserID:       input.UserID,
			InviteStatus: inviteStatus,
			MemberStatus: memberStatus,
			RespondedAt:  uc.now(),
		})
		if err != nil {
			return fmt.Errorf("failed to record response: %w", err)
		}
		if !updated {
			// answered between the read and the guarded update
			current, err := uc.ledger.FindByIDForUser(txCtx, input.InviteID, input.UserID)
			if err != nil {
				return fmt.Errorf("failed to load invite: %w", err)
			}
			return classifyUnchanged(current)
		}

		if input.Accept {
			return uc.promoteIfComplete(txCtx, group, output)
		}
		if uc.options.StallOnDecline {
			stalled, err := uc.registry.MarkStalled(txCtx, group.ID)
			if err != nil {
				return fmt.Errorf("failed to stall group: %w", err)
			}
			if stalled {
				group.Status = entity.MutualGroupStatusStalled
				output.Stalled = true
				stillPending, err = pendingInvitees(txCtx, uc.ledger, group.ID)
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}

	output.GroupID = group.ID
	output.GroupStatus = group.Status

	invalidateCounts(ctx, uc.cache, append(stillPending, input.UserID)...)
	uc.metrics.InviteResponded(input.Accept)
	if output.Promoted {
		uc.metrics.GroupPromoted(group.PlanName)
	}
	if output.Stalled {
		uc.metrics.GroupStalled()
	}

	slog.Info("mutual invite responded",
		"invite_id", input.InviteID,
		"user_id", input.UserID,
		"accepted", input.Accept,
		"group_id", group.ID,
		"group_status", group.Status,
	)

	return output, nil
}

// promoteIfComplete recounts the group's invitations and activates it when all were accepted.
func (uc *RespondToInviteUseCase) promoteIfComplete(ctx context.Context, group *entity.MutualGroup, output *RespondToInviteOutput) error {
	tally, err := uc.ledger.CountByGroup(ctx, group.ID)
	if err != nil {
		return fmt.Errorf("failed to count invitations: %w", err)
	}
	if !tally.AllAccepted() {
		return nil
	}

	promoted, err := uc.registry.PromoteToActive(ctx, group.ID)
	if err != nil {
		return fmt.Errorf("failed to promote group: %w", err)
	}
	if !promoted {
		return nil
	}
	group.Status = entity.MutualGroupStatusActive
	output.Promoted = true

	return uc.queueGroupActiveEmails(ctx, group)
}

func (uc *RespondToInviteUseCase) queueGroupActiveEmails(ctx context.Context, group *entity.MutualGroup) error {
	if uc.emailService == nil {
		return nil
	}

	members, err := uc.ledger.FindGroupMembers(ctx, group.ID)
	if err != nil {
		return fmt.Errorf("failed to load group members: %w", err)
	}
	for _, member := range members {
		if member.Email == "" {
			continue
		}
		err := uc.emailService.QueueGroupActiveEmail(ctx, adapter.QueueGroupActiveInput{
			GroupID:     group.ID,
			UserEmail:   member.Email,
			UserName:    member.Name,
			PlanName:    group.PlanName,
			SplitPrice:  group.SplitPrice,
			MemberCount: len(members),
		})
		if err != nil {
			return fmt.Errorf("failed to queue group active email: %w", err)
		}
	}
	return nil
}

func (uc *RespondToInviteUseCase) ensureNoOtherMembership(ctx context.Context, input RespondToInviteInput) error {
	active, err := uc.ledger.FindActiveConnection(ctx, input.UserID)
	if err != nil {
		return fmt.Errorf("failed to check active membership: %w", err)
	}
	if active != nil && active.ID != input.InviteID {
		return domainerror.NewMutualError(
			domainerror.ErrCodeAlreadyActiveMember,
			"you already belong to an active mutual group",
			domainerror.ErrAlreadyActiveMember,
		)
	}
	return nil
}

// classifyUnchanged explains why the guarded update matched no row.
// invite is only visible when it belongs to the caller.
func classifyUnchanged(invite *entity.MutualInvite) error {
	if invite != nil && !invite.IsPending() {
		return domainerror.NewMutualError(
			domainerror.ErrCodeInviteAlreadyResponded,
			fmt.Sprintf("you already %s this invite", decisionVerb(invite.InviteStatus)),
			domainerror.ErrInviteAlreadyResponded,
		)
	}
	return notFoundOrUnauthorized()
}

func notFoundOrUnauthorized() error {
	return domainerror.NewMutualError(
		domainerror.ErrCodeInviteNotFoundOrUnauthorized,
		"invite not found or already responded",
		domainerror.ErrInviteNotFoundOrUnauthorized,
	)
}

func decisionVerb(status entity.MutualInviteStatus) string {
	if status == entity.MutualInviteStatusAccepted {
		return "accepted"
	}
	return "declined"
}
