// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/streamshare/backend/internal/domain/entity"
)

// MutualGroupModel represents the mutual_groups table in the database.
type MutualGroupModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PlanName   string          `gorm:"type:varchar(50);not null"`
	FullPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	SplitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	MaxMembers int             `gorm:"not null"`
	Status     string          `gorm:"type:varchar(20);not null;default:'FORMING';index"`
	CreatedAt  time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for the MutualGroupModel.
func (MutualGroupModel) TableName() string {
	return "mutual_groups"
}

// ToEntity converts a MutualGroupModel to a domain MutualGroup entity.
func (m *MutualGroupModel) ToEntity() *entity.MutualGroup {
	return &entity.MutualGroup{
		ID:         m.ID,
		PlanName:   m.PlanName,
		FullPrice:  m.FullPrice,
		SplitPrice: m.SplitPrice,
		MaxMembers: m.MaxMembers,
		Status:     entity.MutualGroupStatus(m.Status),
		CreatedAt:  m.CreatedAt,
	}
}

// MutualGroupFromEntity creates a MutualGroupModel from a domain MutualGroup entity.
func MutualGroupFromEntity(group *entity.MutualGroup) *MutualGroupModel {
	return &MutualGroupModel{
		ID:         group.ID,
		PlanName:   group.PlanName,
		FullPrice:  group.FullPrice,
		SplitPrice: group.SplitPrice,
		MaxMembers: group.MaxMembers,
		Status:     string(group.Status),
		CreatedAt:  group.CreatedAt,
	}
}

// MutualInviteModel represents the mutual_invites table in the database.
type MutualInviteModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_mutual_invites_user_status,priority:1"`
	GroupID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	PlanName     string          `gorm:"type:varchar(50);not null"`
	SplitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	AdminMessage string          `gorm:"type:text"`
	InviteStatus string          `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_mutual_invites_user_status,priority:2"`
	MemberStatus string          `gorm:"type:varchar(20);not null;default:'NONE'"`
	SentAt       time.Time       `gorm:"not null"`
	RespondedAt  *time.Time
}

// TableName returns the table name for the MutualInviteModel.
func (MutualInviteModel) TableName() string {
	return "mutual_invites"
}

// ToEntity converts a MutualInviteModel to a domain MutualInvite entity.
func (m *MutualInviteModel) ToEntity() *entity.MutualInvite {
	return &entity.MutualInvite{
		ID:           m.ID,
		UserID:       m.UserID,
		GroupID:      m.GroupID,
		PlanName:     m.PlanName,
		SplitPrice:   m.SplitPrice,
		AdminMessage: m.AdminMessage,
		InviteStatus: entity.MutualInviteStatus(m.InviteStatus),
		MemberStatus: entity.MemberStatus(m.MemberStatus),
		SentAt:       m.SentAt,
		RespondedAt:  m.RespondedAt,
	}
}

// MutualInviteFromEntity creates a MutualInviteModel from a domain MutualInvite entity.
func MutualInviteFromEntity(invite *entity.MutualInvite) *MutualInviteModel {
	return &MutualInviteModel{
		ID:           invite.ID,
		UserID:       invite.UserID,
		GroupID:      invite.GroupID,
		PlanName:     invite.PlanName,
		SplitPrice:   invite.SplitPrice,
		AdminMessage: invite.AdminMessage,
		InviteStatus: string(invite.InviteStatus),
		MemberStatus: string(invite.MemberStatus),
		SentAt:       invite.SentAt,
		RespondedAt:  invite.RespondedAt,
	}
}
