// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MutualGroupStatus represents the lifecycle state of a mutual connection group.
type MutualGroupStatus string

const (
	MutualGroupStatusForming MutualGroupStatus = "FORMING"
	MutualGroupStatusActive  MutualGroupStatus = "ACTIVE"
	MutualGroupStatusStalled MutualGroupStatus = "STALLED"
)

// IsValid reports whether the status is one of the known group states.
func (s MutualGroupStatus) IsValid() bool {
	switch s {
	case MutualGroupStatusForming, MutualGroupStatusActive, MutualGroupStatusStalled:
		return true
	}
	return false
}

// MutualInviteStatus represents the recipient's decision on an invitation.
type MutualInviteStatus string

const (
	MutualInviteStatusPending  MutualInviteStatus = "PENDING"
	MutualInviteStatusAccepted MutualInviteStatus = "ACCEPTED"
	MutualInviteStatusDeclined MutualInviteStatus = "DECLINED"
)

// MemberStatus represents whether an invitee is a live member of the group.
type MemberStatus string

const (
	MemberStatusNone   MemberStatus = "NONE"
	MemberStatusActive MemberStatus = "ACTIVE"
)

// MutualGroup is a set of users invited to share one subscription plan.
// Prices are fixed at creation and never recomputed.
type MutualGroup struct {
	ID         uuid.UUID
	PlanName   string
	FullPrice  decimal.Decimal
	SplitPrice decimal.Decimal
	MaxMembers int
	Status     MutualGroupStatus
	CreatedAt  time.Time
}

// NewMutualGroup creates a new MutualGroup in the FORMING state.
func NewMutualGroup(planName string, fullPrice, splitPrice decimal.Decimal, maxMembers int) *MutualGroup {
	return &MutualGroup{
		ID:         uuid.New(),
		PlanName:   planName,
		FullPrice:  fullPrice,
		SplitPrice: splitPrice,
		MaxMembers: maxMembers,
		Status:     MutualGroupStatusForming,
		CreatedAt:  time.Now().UTC(),
	}
}

// Savings returns how much each member saves compared to paying the full price.
func (g *MutualGroup) Savings() decimal.Decimal {
	return g.FullPrice.Sub(g.SplitPrice)
}

// MutualInvite is one user's invitation into a mutual group.
type MutualInvite struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	GroupID      uuid.UUID
	PlanName     string
	SplitPrice   decimal.Decimal
	AdminMessage string
	InviteStatus MutualInviteStatus
	MemberStatus MemberStatus
	SentAt       time.Time
	RespondedAt  *time.Time
}

// NewMutualInvite creates a pending invitation for the given group.
func NewMutualInvite(group *MutualGroup, userID uuid.UUID, adminMessage string) *MutualInvite {
	return &MutualInvite{
		ID:           uuid.New(),
		UserID:       userID,
		GroupID:      group.ID,
		PlanName:     group.PlanName,
		SplitPrice:   group.SplitPrice,
		AdminMessage: adminMessage,
		InviteStatus: MutualInviteStatusPending,
		MemberStatus: MemberStatusNone,
		SentAt:       group.CreatedAt,
	}
}

// IsPending returns true while the recipient has not decided.
func (i *MutualInvite) IsPending() bool {
	return i.InviteStatus == MutualInviteStatusPending
}

// IsActiveMember returns true if the invite represents a live membership.
func (i *MutualInvite) IsActiveMember() bool {
	return i.InviteStatus == MutualInviteStatusAccepted && i.MemberStatus == MemberStatusActive
}

// Decision returns the terminal statuses an accept or decline moves the invite to.
func Decision(accept bool) (MutualInviteStatus, MemberStatus) {
	if accept {
		return MutualInviteStatusAccepted, MemberStatusActive
	}
	return MutualInviteStatusDeclined, MemberStatusNone
}

// InviteTally holds the per-group invitation counts.
type InviteTally struct {
	Total    int
	Accepted int
	Declined int
}

// Pending returns the number of invitations still awaiting a decision.
func (t InviteTally) Pending() int {
	return t.Total - t.Accepted - t.Declined
}

// AllAccepted reports whether every invitation in the group has been accepted.
func (t InviteTally) AllAccepted() bool {
	return t.Total > 0 && t.Accepted == t.Total
}

// MutualGroupSummary is a group with its invitation counts, used by the admin view.
type MutualGroupSummary struct {
	Group *MutualGroup
	Tally InviteTally
}

// GroupMember is an invitation joined with the invitee's display info.
type GroupMember struct {
	InviteID     uuid.UUID
	UserID       uuid.UUID
	Name         string
	Email        string
	Country      string
	InviteStatus MutualInviteStatus
	MemberStatus MemberStatus
	RespondedAt  *time.Time
}

// ActiveConnection is a user's current live membership.
type ActiveConnection struct {
	Invite  *MutualInvite
	Group   *MutualGroup
	Members []*GroupMember
}

// LowUsageCandidate is an active subscriber whose watch time this month is below a threshold.
type LowUsageCandidate struct {
	UserID          uuid.UUID
	Name            string
	Email           string
	Country         string
	PlanName        string
	Amount          decimal.Decimal
	TotalMinutes    int
	SubscriptionEnd time.Time
}
