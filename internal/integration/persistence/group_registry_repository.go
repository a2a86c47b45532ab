package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/streamshare/backend/internal/application/adapter"
	"github.com/streamshare/backend/internal/domain/entity"
	"github.com/streamshare/backend/internal/integration/persistence/model"
)

// groupRegistryRepository implements the adapter.GroupRegistry interface.
type groupRegistryRepository struct {
	db *gorm.DB
}

// NewGroupRegistryRepository creates a new group registry repository instance.
func NewGroupRegistryRepository(db *gorm.DB) adapter.GroupRegistry {
	return &groupRegistryRepository{
		db: db,
	}
}

// Create inserts a new group.
func (r *groupRegistryRepository) Create(ctx context.Context, group *entity.MutualGroup) error {
	return conn(ctx, r.db).Create(model.MutualGroupFromEntity(group)).Error
}

// FindByID retrieves a group by its ID.
func (r *groupRegistryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.MutualGroup, error) {
	return r.find(conn(ctx, r.db), id)
}

// FindByIDForUpdate retrieves a group with SELECT ... FOR UPDATE.
// Drivers without row locks (sqlite) ignore the clause.
func (r *groupRegistryRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.MutualGroup, error) {
	return r.find(conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *groupRegistryRepository) find(db *gorm.DB, id uuid.UUID) (*entity.MutualGroup, error) {
	var groupModel model.MutualGroupModel
	result := db.Where("id = ?", id).First(&groupModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return groupModel.ToEntity(), nil
}

// PromoteToActive flips a FORMING group to ACTIVE.
func (r *groupRegistryRepository) PromoteToActive(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.transition(ctx, id, entity.MutualGroupStatusActive)
}

// MarkStalled flips a FORMING group to STALLED.
func (r *groupRegistryRepository) MarkStalled(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.transition(ctx, id, entity.MutualGroupStatusStalled)
}

func (r *groupRegistryRepository) transition(ctx context.Context, id uuid.UUID, to entity.MutualGroupStatus) (bool, error) {
	result := conn(ctx, r.db).
		Model(&model.MutualGroupModel{}).
		Where("id = ? AND status = ?", id, entity.MutualGroupStatusForming).
		Update("status", string(to))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListWithCounts retrieves every group and merges in its invitation tally.
func (r *groupRegistryRepository) ListWithCounts(ctx context.Context) ([]*entity.MutualGroupSummary, error) {
	db := conn(ctx, r.db)

	var groupModels []model.MutualGroupModel
	if err := db.Order("created_at DESC").Find(&groupModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	if len(groupModels) == 0 {
		return []*entity.MutualGroupSummary{}, nil
	}

	var counts []struct {
		GroupID  uuid.UUID `gorm:"column:group_id"`
		Total    int       `gorm:"column:total"`
		Accepted int       `gorm:"column:accepted"`
		Declined int       `gorm:"column:declined"`
	}
	query := `
		SELECT
			group_id,
			COUNT(*) AS total,
			SUM(CASE WHEN invite_status = ? THEN 1 ELSE 0 END) AS accepted,
			SUM(CASE WHEN invite_status = ? THEN 1 ELSE 0 END) AS declined
		FROM mutual_invites
		GROUP BY group_id
	`
	err := db.Raw(query, entity.MutualInviteStatusAccepted, entity.MutualInviteStatusDeclined).
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count invitations: %w", err)
	}

	tallies := make(map[uuid.UUID]entity.InviteTally, len(counts))
	for _, c := range counts {
		tallies[c.GroupID] = entity.InviteTally{Total: c.Total, Accepted: c.Accepted, Declined: c.Declined}
	}

	summaries := make([]*entity.MutualGroupSummary, len(groupModels))
	for i := range groupModels {
		group := groupModels[i].ToEntity()
		summaries[i] = &entity.MutualGroupSummary{Group: group, Tally: tallies[group.ID]}
	}
	return summaries, nil
}
