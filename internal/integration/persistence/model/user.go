package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/streamshare/backend/internal/domain/entity"
)

// UserModel represents the users table in the database.
type UserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"type:varchar(100);not null"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Mobile       string    `gorm:"type:varchar(20)"`
	Age          int
	Country      string    `gorm:"type:varchar(100)"`
	Role         string    `gorm:"type:varchar(10);not null;default:'USER'"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for the UserModel.
func (UserModel) TableName() string {
	return "users"
}

// ToEntity converts a UserModel to a domain User entity.
func (m *UserModel) ToEntity() *entity.User {
	return &entity.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Mobile:       m.Mobile,
		Age:          m.Age,
		Country:      m.Country,
		Role:         entity.UserRole(m.Role),
		CreatedAt:    m.CreatedAt,
	}
}

// ToDisplayInfo converts a UserModel to the fields shown next to group members.
func (m *UserModel) ToDisplayInfo() *entity.UserDisplayInfo {
	return &entity.UserDisplayInfo{
		ID:      m.ID,
		Name:    m.Name,
		Email:   m.Email,
		Country: m.Country,
	}
}

// FromEntity creates a UserModel from a domain User entity.
func FromEntity(user *entity.User) *UserModel {
	return &UserModel{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Mobile:       user.Mobile,
		Age:          user.Age,
		Country:      user.Country,
		Role:         string(user.Role),
		CreatedAt:    user.CreatedAt,
	}
}

// SubscriptionModel represents the subscriptions table. It is owned by the billing
// flow; this service only reads it.
type SubscriptionModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	PlanName    string          `gorm:"type:varchar(50);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	StartDate   time.Time       `gorm:"not null"`
	EndDate     time.Time       `gorm:"not null"`
	Status      string          `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	AutoRenewal bool            `gorm:"default:false"`
}

// TableName returns the table name for the SubscriptionModel.
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// UserActivityModel represents one viewing session in the user_activity table.
type UserActivityModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	LoginTime      time.Time  `gorm:"not null;index"`
	LogoutTime     *time.Time
	SessionMinutes int        `gorm:"not null;default:0"`
}

// TableName returns the table name for the UserActivityModel.
func (UserActivityModel) TableName() string {
	return "user_activity"
}

// All returns every model managed by this service, for auto-migration.
func All() []any {
	return []any{
		&UserModel{},
		&SubscriptionModel{},
		&UserActivityModel{},
		&MutualGroupModel{},
		&MutualInviteModel{},
		&EmailQueueModel{},
	}
}
