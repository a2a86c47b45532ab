package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/streamshare/backend/internal/application/adapter"
	"github.com/streamshare/backend/internal/domain/entity"
	"github.com/streamshare/backend/internal/integration/persistence/model"
)

const subscriptionStatusActive = "ACTIVE"

// subscriberRepository implements the adapter.SubscriberDirectory interface.
type subscriberRepository struct {
	db *gorm.DB
}

// NewSubscriberRepository creates a new subscriber directory repository instance.
func NewSubscriberRepository(db *gorm.DB) adapter.SubscriberDirectory {
	return &subscriberRepository{
		db: db,
	}
}

// FindLowUsageSubscribers aggregates watch minutes per active subscriber since
// monthStart and keeps those under the threshold. Users with no sessions count as zero.
func (r *subscriberRepository) FindLowUsageSubscribers(ctx context.Context, thresholdMinutes int, monthStart time.Time) ([]*entity.LowUsageCandidate, error) {
	db := conn(ctx, r.db)

	var rows []struct {
		UserID         uuid.UUID `gorm:"column:user_id"`
		SubscriptionID uuid.UUID `gorm:"column:subscription_id"`
		TotalMinutes   int       `gorm:"column:total_minutes"`
	}

	query := `
		SELECT
			u.id AS user_id,
			s.id AS subscription_id,
			COALESCE(act.total, 0) AS total_minutes
		FROM users u
		JOIN subscriptions s ON s.user_id = u.id AND s.status = ?
		LEFT JOIN (
			SELECT user_id, SUM(session_minutes) AS total
			FROM user_activity
			WHERE login_time >= ?
			GROUP BY user_id
		) act ON act.user_id = u.id
		WHERE COALESCE(act.total, 0) < ?
		ORDER BY total_minutes ASC, u.name ASC, s.end_date DESC
	`
	if err := db.Raw(query, subscriptionStatusActive, monthStart, thresholdMinutes).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate usage: %w", err)
	}
	if len(rows) == 0 {
		return []*entity.LowUsageCandidate{}, nil
	}

	userIDs := make([]uuid.UUID, 0, len(rows))
	subscriptionIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		userIDs = append(userIDs, row.UserID)
		subscriptionIDs = append(subscriptionIDs, row.SubscriptionID)
	}

	var userModels []model.UserModel
	if err := db.Where("id IN ?", userIDs).Find(&userModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	users := make(map[uuid.UUID]*model.UserModel, len(userModels))
	for i := range userModels {
		users[userModels[i].ID] = &userModels[i]
	}

	var subscriptionModels []model.SubscriptionModel
	if err := db.Where("id IN ?", subscriptionIDs).Find(&subscriptionModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}
	subscriptions := make(map[uuid.UUID]*model.SubscriptionModel, len(subscriptionModels))
	for i := range subscriptionModels {
		subscriptions[subscriptionModels[i].ID] = &subscriptionModels[i]
	}

	// one row per user; a user with two active subscriptions keeps the latest-ending one
	seen := make(map[uuid.UUID]bool, len(rows))
	candidates := make([]*entity.LowUsageCandidate, 0, len(rows))
	for _, row := range rows {
		if seen[row.UserID] {
			continue
		}
		user, sub := users[row.UserID], subscriptions[row.SubscriptionID]
		if user == nil || sub == nil {
			continue
		}
		seen[row.UserID] = true
		candidates = append(candidates, &entity.LowUsageCandidate{
			UserID:          user.ID,
			Name:            user.Name,
			Email:           user.Email,
			Country:         user.Country,
			PlanName:        sub.PlanName,
			Amount:          sub.Amount,
			TotalMinutes:    row.TotalMinutes,
			SubscriptionEnd: sub.EndDate,
		})
	}
	return candidates, nil
}

// FindDisplayInfo loads name, email and country for the given users.
func (r *subscriberRepository) FindDisplayInfo(ctx context.Context, userIDs []uuid.UUID) ([]*entity.UserDisplayInfo, error) {
	if len(userIDs) == 0 {
		return []*entity.UserDisplayInfo{}, nil
	}

	var userModels []model.UserModel
	err := conn(ctx, r.db).
		Select("id", "name", "email", "country").
		Where("id IN ?", userIDs).
		Find(&userModels).Error
	if err != nil {
		return nil, err
	}

	infos := make([]*entity.UserDisplayInfo, len(userModels))
	for i := range userModels {
		infos[i] = userModels[i].ToDisplayInfo()
	}
	return infos, nil
}
