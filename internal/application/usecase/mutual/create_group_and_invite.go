package mutual

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/streamshare/backend/internal/application/adapter"
	"github.com/streamshare/backend/internal/domain/entity"
	domainerror "github.com/streamshare/backend/internal/domain/error"
	"github.com/streamshare/backend/internal/domain/valueobject"
)

// CreateGroupAndInviteInput represents the input for forming a new mutual group.
type CreateGroupAndInviteInput struct {
	UserIDs      []uuid.UUID
	PlanName     string
	AdminMessage string
}

// CreateGroupAndInviteOutput represents the output of group formation.
type CreateGroupAndInviteOutput struct {
	Group   *entity.MutualGroup
	Invites []*entity.MutualInvite
	Message string
}

// CreateGroupAndInviteUseCase creates a FORMING group and invites every selected user.
type CreateGroupAndInviteUseCase struct {
	registry     adapter.GroupRegistry
	ledger       adapter.InvitationLedger
	directory    adapter.SubscriberDirectory
	transactor   adapter.Transactor
	emailService adapter.EmailService
	cache        adapter.NotificationCache
	metrics      adapter.MutualMetrics
	catalog      valueobject.PlanCatalog
	options      Options
}

// NewCreateGroupAndInviteUseCase creates a new CreateGroupAndInviteUseCase instance.
func NewCreateGroupAndInviteUseCase(
	registry adapter.GroupRegistry,
	ledger adapter.InvitationLedger,
	directory adapter.SubscriberDirectory,
	transactor adapter.Transactor,
	emailService adapter.EmailService,
	cache adapter.NotificationCache,
	metrics adapter.MutualMetrics,
	catalog valueobject.PlanCatalog,
	options Options,
) *CreateGroupAndInviteUseCase {
	return &CreateGroupAndInviteUseCase{
		registry:     registry,
		ledger:       ledger,
		directory:    directory,
		transactor:   transactor,
		emailService: emailService,
		cache:        cache,
		metrics:      metricsOrNop(metrics),
		catalog:      catalog,
		options:      options,
	}
}

// Execute validates the request and persists the group with all its invitations atomically.
func (uc *CreateGroupAndInviteUseCase) Execute(ctx context.Context, input CreateGroupAndInviteInput) (*CreateGroupAndInviteOutput, error) {
	if err := uc.validate(input); err != nil {
		return nil, err
	}

	fullPrice, ok := uc.catalog.Price(input.PlanName)
	if !ok {
		return nil, domainerror.NewMutualError(
			domainerror.ErrCodeUnknownPlan,
			fmt.Sprintf("unknown plan %q", input.PlanName),
			domainerror.ErrUnknownPlan,
		)
	}
	splitPrice, err := uc.catalog.SplitPrice(input.PlanName, len(input.UserIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to compute split price: %w", err)
	}

	recipients, err := uc.lookupRecipients(ctx, input.UserIDs)
	if err != nil {
		return nil, err
	}

	if uc.options.SingleMembership {
		active, err := uc.ledger.FindUsersWithActiveMembership(ctx, input.UserIDs)
		if err != nil {
			return nil, storageError(fmt.Errorf("failed to check active memberships: %w", err))
		}
		if len(active) > 0 {
			return nil, domainerror.NewMutualError(
				domainerror.ErrCodeAlreadyActiveMember,
				fmt.Sprintf("%d selected user(s) already belong to an active group", len(active)),
				domainerror.ErrAlreadyActiveMember,
			)
		}
	}

	adminMessage := strings.TrimSpace(input.AdminMessage)
	group := entity.NewMutualGroup(input.PlanName, fullPrice, splitPrice, len(input.UserIDs))
	invites := make([]*entity.MutualInvite, 0, len(input.UserIDs))
	for _, userID := range input.UserIDs {
		invites = append(invites, entity.NewMutualInvite(group, userID, adminMessage))
	}

	err = uc.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.registry.Create(txCtx, group); err != nil {
			return fmt.Errorf("failed to create group: %w", err)
		}
		if err := uc.ledger.CreateBatch(txCtx, invites); err != nil {
			return fmt.Errorf("failed to create invitations: %w", err)
		}
		return uc.queueInvitationEmails(txCtx, group, invites, recipients)
	})
	if err != nil {
		return nil, storageError(err)
	}

	invalidateCounts(ctx, uc.cache, input.UserIDs...)
	uc.metrics.GroupCreated(group.PlanName, len(invites))

	slog.Info("mutual group created",
		"group_id", group.ID,
		"plan", group.PlanName,
		"split_price", group.SplitPrice.StringFixed(2),
		"invites", len(invites),
	)

	return &CreateGroupAndInviteOutput{
		Group:   group,
		Invites: invites,
		Message: fmt.Sprintf("Group created and %d invites sent!", len(invites)),
	}, nil
}

func (uc *CreateGroupAndInviteUseCase) validate(input CreateGroupAndInviteInput) error {
	minMembers := uc.options.minMembers()
	if len(input.UserIDs) < minMembers {
		return domainerror.NewMutualError(
			domainerror.ErrCodeNotEnoughMembers,
			fmt.Sprintf("Select at least %d users to form a group.", minMembers),
			domainerror.ErrNotEnoughMembers,
		)
	}

	seen := make(map[uuid.UUID]struct{}, len(input.UserIDs))
	for _, id := range input.UserIDs {
		if id == uuid.Nil {
			return domainerror.NewMutualError(
				domainerror.ErrCodeMissingMutualFields,
				"user id cannot be empty",
				domainerror.ErrUnknownUsers,
			)
		}
		if _, dup := seen[id]; dup {
			return domainerror.NewMutualError(
				domainerror.ErrCodeDuplicateMembers,
				fmt.Sprintf("user %s was selected more than once", id),
				domainerror.ErrDuplicateMembers,
			)
		}
		seen[id] = struct{}{}
	}

	if uc.options.RequireAdminMessage && strings.TrimSpace(input.AdminMessage) == "" {
		return domainerror.NewMutualError(
			domainerror.ErrCodeAdminMessageRequired,
			"admin message is required",
			domainerror.ErrAdminMessageRequired,
		)
	}

	return nil
}

// lookupRecipients loads display info for every invitee and rejects unknown users.
func (uc *CreateGroupAndInviteUseCase) lookupRecipients(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*entity.UserDisplayInfo, error) {
	infos, err := uc.directory.FindDisplayInfo(ctx, userIDs)
	if err != nil {
		return nil, storageError(fmt.Errorf("failed to load users: %w", err))
	}

	recipients := make(map[uuid.UUID]*entity.UserDisplayInfo, len(infos))
	for _, info := range infos {
		recipients[info.ID] = info
	}

	var missing []string
	for _, id := range userIDs {
		if _, ok := recipients[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		return nil, domainerror.NewMutualError(
			domainerror.ErrCodeUnknownUsers,
			fmt.Sprintf("unknown users: %s", strings.Join(missing, ", ")),
			domainerror.ErrUnknownUsers,
		)
	}

	return recipients, nil
}

func (uc *CreateGroupAndInviteUseCase) queueInvitationEmails(
	ctx context.Context,
	group *entity.MutualGroup,
	invites []*entity.MutualInvite,
	recipients map[uuid.UUID]*entity.UserDisplayInfo,
) error {
	if uc.emailService == nil {
		return nil
	}

	for _, invite := range invites {
		recipient := recipients[invite.UserID]
		if recipient == nil || recipient.Email == "" {
			continue
		}
		err := uc.emailService.QueueMutualInvitationEmail(ctx, adapter.QueueMutualInvitationInput{
			InviteID:     invite.ID,
			UserEmail:    recipient.Email,
			UserName:     recipient.Name,
			PlanName:     group.PlanName,
			FullPrice:    group.FullPrice,
			SplitPrice:   group.SplitPrice,
			MemberCount:  group.MaxMembers,
			AdminMessage: invite.AdminMessage,
		})
		if err != nil {
			return fmt.Errorf("failed to queue invitation email: %w", err)
		}
	}
	return nil
}
