package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/streamshare/backend/internal/application/adapter"
	"github.com/streamshare/backend/internal/domain/entity"
	"github.com/streamshare/backend/internal/integration/persistence/model"
)

const joinGroups = "JOIN mutual_groups ON mutual_groups.id = mutual_invites.group_id"

// invitationLedgerRepository implements the adapter.InvitationLedger interface.
type invitationLedgerRepository struct {
	db *gorm.DB
}

// NewInvitationLedgerRepository creates a new invitation ledger repository instance.
func NewInvitationLedgerRepository(db *gorm.DB) adapter.InvitationLedger {
	return &invitationLedgerRepository{
		db: db,
	}
}

// CreateBatch inserts all invitations in one statement.
func (r *invitationLedgerRepository) CreateBatch(ctx context.Context, invites []*entity.MutualInvite) error {
	if len(invites) == 0 {
		return nil
	}
	models := make([]*model.MutualInviteModel, len(invites))
	for i, invite := range invites {
		models[i] = model.MutualInviteFromEntity(invite)
	}
	return conn(ctx, r.db).Create(&models).Error
}

// CountPendingByUser counts the user's undecided invitations to groups still forming.
func (r *invitationLedgerRepository) CountPendingByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&model.MutualInviteModel{}).
		Joins(joinGroups).
		Where("mutual_invites.user_id = ? AND mutual_invites.invite_status = ? AND mutual_groups.status = ?",
			userID, entity.MutualInviteStatusPending, entity.MutualGroupStatusForming).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// FindByUser retrieves the user's invitations, newest first.
func (r *invitationLedgerRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.MutualInvite, error) {
	var models []model.MutualInviteModel
	err := conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("sent_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	invites := make([]*entity.MutualInvite, len(models))
	for i := range models {
		invites[i] = models[i].ToEntity()
	}
	return invites, nil
}

// FindByIDForUser retrieves an invitation scoped to its recipient.
func (r *invitationLedgerRepository) FindByIDForUser(ctx context.Context, inviteID, userID uuid.UUID) (*entity.MutualInvite, error) {
	var inviteModel model.MutualInviteModel
	result := conn(ctx, r.db).
		Where("id = ? AND user_id = ?", inviteID, userID).
		First(&inviteModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return inviteModel.ToEntity(), nil
}

// Respond records the decision only while the invitation is still PENDING and
// owned by the caller, so concurrent or repeated responses change one row at most once.
func (r *invitationLedgerRepository) Respond(ctx context.Context, input adapter.RespondInput) (bool, error) {
	result := conn(ctx, r.db).
		Model(&model.MutualInviteModel{}).
		Where("id = ? AND user_id = ? AND invite_status = ?", input.InviteID, input.UserID, entity.MutualInviteStatusPending).
		Updates(map[string]any{
			"invite_status": string(input.InviteStatus),
			"member_status": string(input.MemberStatus),
			"responded_at":  input.RespondedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CountByGroup tallies a group's invitations in a single aggregate query.
func (r *invitationLedgerRepository) CountByGroup(ctx context.Context, groupID uuid.UUID) (entity.InviteTally, error) {
	var result struct {
		Total    int `gorm:"column:total"`
		Accepted int `gorm:"column:accepted"`
		Declined int `gorm:"column:declined"`
	}

	query := `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN invite_status = ? THEN 1 ELSE 0 END), 0) AS accepted,
			COALESCE(SUM(CASE WHEN invite_status = ? THEN 1 ELSE 0 END), 0) AS declined
		FROM mutual_invites
		WHERE group_id = ?
	`
	err := conn(ctx, r.db).
		Raw(query, entity.MutualInviteStatusAccepted, entity.MutualInviteStatusDeclined, groupID).
		Scan(&result).Error
	if err != nil {
		return entity.InviteTally{}, fmt.Errorf("failed to count invitations: %w", err)
	}

	return entity.InviteTally{Total: result.Total, Accepted: result.Accepted, Declined: result.Declined}, nil
}

// FindGroupMembers loads a group's invitations and the invitees' display info, ordered by name.
func (r *invitationLedgerRepository) FindGroupMembers(ctx context.Context, groupID uuid.UUID) ([]*entity.GroupMember, error) {
	db := conn(ctx, r.db)

	var inviteModels []model.MutualInviteModel
	if err := db.Where("group_id = ?", groupID).Find(&inviteModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load invitations: %w", err)
	}
	if len(inviteModels) == 0 {
		return []*entity.GroupMember{}, nil
	}

	userIDs := make([]uuid.UUID, len(inviteModels))
	for i, m := range inviteModels {
		userIDs[i] = m.UserID
	}
	var userModels []model.UserModel
	if err := db.Where("id IN ?", userIDs).Find(&userModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	users := make(map[uuid.UUID]*model.UserModel, len(userModels))
	for i := range userModels {
		users[userModels[i].ID] = &userModels[i]
	}

	members := make([]*entity.GroupMember, len(inviteModels))
	for i, m := range inviteModels {
		member := &entity.GroupMember{
			InviteID:     m.ID,
			UserID:       m.UserID,
			InviteStatus: entity.MutualInviteStatus(m.InviteStatus),
			MemberStatus: entity.MemberStatus(m.MemberStatus),
			RespondedAt:  m.RespondedAt,
		}
		if u, ok := users[m.UserID]; ok {
			member.Name = u.Name
			member.Email = u.Email
			member.Country = u.Country
		}
		members[i] = member
	}

	sort.SliceStable(members, func(a, b int) bool { return members[a].Name < members[b].Name })
	return members, nil
}

// FindActiveConnection retrieves the user's most recently accepted live membership.
// Memberships of STALLED groups are not live.
func (r *invitationLedgerRepository) FindActiveConnection(ctx context.Context, userID uuid.UUID) (*entity.MutualInvite, error) {
	var inviteModel model.MutualInviteModel
	result := conn(ctx, r.db).
		Select("mutual_invites.*").
		Joins(joinGroups).
		Where("mutual_invites.user_id = ? AND mutual_invites.invite_status = ? AND mutual_invites.member_status = ? AND mutual_groups.status <> ?",
			userID, entity.MutualInviteStatusAccepted, entity.MemberStatusActive, entity.MutualGroupStatusStalled).
		Order("mutual_invites.responded_at DESC").
		First(&inviteModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return inviteModel.ToEntity(), nil
}

// FindUsersWithActiveMembership returns which of the given users hold a live membership.
func (r *invitationLedgerRepository) FindUsersWithActiveMembership(ctx context.Context, userIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(userIDs) == 0 {
		return []uuid.UUID{}, nil
	}

	var active []uuid.UUID
	err := conn(ctx, r.db).
		Model(&model.MutualInviteModel{}).
		Joins(joinGroups).
		Where("mutual_invites.user_id IN ? AND mutual_invites.invite_status = ? AND mutual_invites.member_status = ? AND mutual_groups.status <> ?",
			userIDs, entity.MutualInviteStatusAccepted, entity.MemberStatusActive, entity.MutualGroupStatusStalled).
		Distinct().
		Pluck("mutual_invites.user_id", &active).Error
	if err != nil {
		return nil, err
	}
	return active, nil
}
