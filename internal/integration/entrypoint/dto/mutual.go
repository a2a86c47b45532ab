package dto

import (
	"time"

	"github.com/streamshare/backend/internal/application/usecase/mutual"
	"github.com/streamshare/backend/internal/domain/entity"
)

// CreateMutualGroupRequest represents the request body for forming a group.
// The member count is checked by the use case so the caller gets a domain error.
type CreateMutualGroupRequest struct {
	UserIDs      []string `json:"user_ids" binding:"dive,uuid"`
	PlanName     string   `json:"plan_name" binding:"required"`
	AdminMessage string   `json:"admin_message" binding:"max=500"`
}

// RespondInviteRequest represents the request body for accepting or declining an invite.
type RespondInviteRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

// NotificationCountResponse represents the pending invite badge.
type NotificationCountResponse struct {
	Count int `json:"count"`
}

// MutualGroupResponse represents a mutual group in API responses.
type MutualGroupResponse struct {
	ID         string    `json:"id"`
	PlanName   string    `json:"plan_name"`
	FullPrice  string    `json:"full_price"`
	SplitPrice string    `json:"split_price"`
	Savings    string    `json:"savings"`
	MaxMembers int       `json:"max_members"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// InviteTallyResponse represents a group's invitation counts.
type InviteTallyResponse struct {
	Total    int `json:"total"`
	Accepted int `json:"accepted"`
	Declined int `json:"declined"`
	Pending  int `json:"pending"`
}

// MutualGroupSummaryResponse represents one row of the admin group list.
type MutualGroupSummaryResponse struct {
	MutualGroupResponse
	Invites InviteTallyResponse `json:"invites"`
}

// MutualGroupListResponse represents the admin group list.
type MutualGroupListResponse struct {
	Groups []MutualGroupSummaryResponse `json:"groups"`
}

// CreateMutualGroupResponse represents the response for group formation.
type CreateMutualGroupResponse struct {
	Message     string              `json:"message"`
	Group       MutualGroupResponse `json:"group"`
	InviteCount int                 `json:"invite_count"`
}

// MutualInviteResponse represents an invitation as seen by its recipient.
type MutualInviteResponse struct {
	ID           string     `json:"id"`
	GroupID      string     `json:"group_id"`
	PlanName     string     `json:"plan_name"`
	SplitPrice   string     `json:"split_price"`
	AdminMessage string     `json:"admin_message,omitempty"`
	InviteStatus string     `json:"invite_status"`
	MemberStatus string     `json:"member_status"`
	SentAt       time.Time  `json:"sent_at"`
	RespondedAt  *time.Time `json:"responded_at,omitempty"`
}

// MutualInviteListResponse represents the user's inbox.
type MutualInviteListResponse struct {
	Invites      []MutualInviteResponse `json:"invites"`
	PendingCount int                    `json:"pending_count"`
}

// RespondInviteResponse represents the outcome of a decision.
type RespondInviteResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	GroupID     string `json:"group_id"`
	GroupStatus string `json:"group_status"`
}

// GroupMemberResponse represents one invitee in a roster.
type GroupMemberResponse struct {
	InviteID     string     `json:"invite_id"`
	UserID       string     `json:"user_id"`
	Name         string     `json:"name"`
	Email        string     `json:"email,omitempty"`
	Country      string     `json:"country,omitempty"`
	InviteStatus string     `json:"invite_status"`
	MemberStatus string     `json:"member_status"`
	RespondedAt  *time.Time `json:"responded_at,omitempty"`
}

// GroupMembersResponse represents the admin roster view.
type GroupMembersResponse struct {
	Group   MutualGroupResponse   `json:"group"`
	Members []GroupMemberResponse `json:"members"`
	Invites InviteTallyResponse   `json:"invites"`
}

// ActiveConnectionResponse represents the user's live membership.
// Connected is false and the other fields are empty when there is none.
type ActiveConnectionResponse struct {
	Connected bool                  `json:"connected"`
	InviteID  string                `json:"invite_id,omitempty"`
	Group     *MutualGroupResponse  `json:"group,omitempty"`
	Members   []GroupMemberResponse `json:"members,omitempty"`
}

// LowUsageCandidateResponse represents one candidate for grouping.
type LowUsageCandidateResponse struct {
	UserID          string    `json:"user_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Country         string    `json:"country,omitempty"`
	PlanName        string    `json:"plan_name"`
	Amount          string    `json:"amount"`
	TotalMinutes    int       `json:"total_minutes"`
	SubscriptionEnd time.Time `json:"subscription_end"`
}

// LowUsageCandidatesResponse represents the candidate list.
type LowUsageCandidatesResponse struct {
	ThresholdMinutes int                         `json:"threshold_minutes"`
	MonthStart       time.Time                   `json:"month_start"`
	Candidates       []LowUsageCandidateResponse `json:"candidates"`
}

// PlanResponse represents a catalog entry.
type PlanResponse struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// PlanListResponse represents the plan catalog.
type PlanListResponse struct {
	Plans []PlanResponse `json:"plans"`
}

// ToMutualGroupResponse converts a domain MutualGroup to its DTO.
func ToMutualGroupResponse(group *entity.MutualGroup) MutualGroupResponse {
	return MutualGroupResponse{
		ID:         group.ID.String(),
		PlanName:   group.PlanName,
		FullPrice:  group.FullPrice.StringFixed(2),
		SplitPrice: group.SplitPrice.StringFixed(2),
		Savings:    group.Savings().StringFixed(2),
		MaxMembers: group.MaxMembers,
		Status:     string(group.Status),
		CreatedAt:  group.CreatedAt,
	}
}

// ToInviteTallyResponse converts a tally to its DTO.
func ToInviteTallyResponse(tally entity.InviteTally) InviteTallyResponse {
	return InviteTallyResponse{
		Total:    tally.Total,
		Accepted: tally.Accepted,
		Declined: tally.Declined,
		Pending:  tally.Pending(),
	}
}

// ToMutualGroupListResponse converts group summaries to the admin list.
func ToMutualGroupListResponse(summaries []*entity.MutualGroupSummary) MutualGroupListResponse {
	groups := make([]MutualGroupSummaryResponse, len(summaries))
	for i, s := range summaries {
		groups[i] = MutualGroupSummaryResponse{
			MutualGroupResponse: ToMutualGroupResponse(s.Group),
			Invites:             ToInviteTallyResponse(s.Tally),
		}
	}
	return MutualGroupListResponse{Groups: groups}
}

// ToMutualInviteResponse converts a domain MutualInvite to its DTO.
func ToMutualInviteResponse(invite *entity.MutualInvite) MutualInviteResponse {
	return MutualInviteResponse{
		ID:           invite.ID.String(),
		GroupID:      invite.GroupID.String(),
		PlanName:     invite.PlanName,
		SplitPrice:   invite.SplitPrice.StringFixed(2),
		AdminMessage: invite.AdminMessage,
		InviteStatus: string(invite.InviteStatus),
		MemberStatus: string(invite.MemberStatus),
		SentAt:       invite.SentAt,
		RespondedAt:  invite.RespondedAt,
	}
}

// ToMutualInviteListResponse converts the inbox output to its DTO.
func ToMutualInviteListResponse(output *mutual.ListUserInvitesOutput) MutualInviteListResponse {
	invites := make([]MutualInviteResponse, len(output.Invites))
	for i, invite := range output.Invites {
		invites[i] = ToMutualInviteResponse(invite)
	}
	return MutualInviteListResponse{Invites: invites, PendingCount: output.PendingCount}
}

// ToGroupMemberResponses converts a roster to DTOs.
// includeEmail is false when members see each other.
func ToGroupMemberResponses(members []*entity.GroupMember, includeEmail bool) []GroupMemberResponse {
	result := make([]GroupMemberResponse, len(members))
	for i, m := range members {
		result[i] = GroupMemberResponse{
			InviteID:     m.InviteID.String(),
			UserID:       m.UserID.String(),
			Name:         m.Name,
			Country:      m.Country,
			InviteStatus: string(m.InviteStatus),
			MemberStatus: string(m.MemberStatus),
			RespondedAt:  m.RespondedAt,
		}
		if includeEmail {
			result[i].Email = m.Email
		}
	}
	return result
}

// ToActiveConnectionResponse converts the active connection output to its DTO.
func ToActiveConnectionResponse(connection *entity.ActiveConnection) ActiveConnectionResponse {
	if connection == nil {
		return ActiveConnectionResponse{Connected: false}
	}
	group := ToMutualGroupResponse(connection.Group)
	return ActiveConnectionResponse{
		Connected: true,
		InviteID:  connection.Invite.ID.String(),
		Group:     &group,
		Members:   ToGroupMemberResponses(connection.Members, false),
	}
}

// ToLowUsageCandidatesResponse converts the candidate output to its DTO.
func ToLowUsageCandidatesResponse(threshold int, output *mutual.GetLowUsageUsersOutput) LowUsageCandidatesResponse {
	candidates := make([]LowUsageCandidateResponse, len(output.Candidates))
	for i, c := range output.Candidates {
		candidates[i] = LowUsageCandidateResponse{
			UserID:          c.UserID.String(),
			Name:            c.Name,
			Email:           c.Email,
			Country:         c.Country,
			PlanName:        c.PlanName,
			Amount:          c.Amount.StringFixed(2),
			TotalMinutes:    c.TotalMinutes,
			SubscriptionEnd: c.SubscriptionEnd,
		}
	}
	return LowUsageCandidatesResponse{
		ThresholdMinutes: threshold,
		MonthStart:       output.MonthStart,
		Candidates:       candidates,
	}
}

// ToPlanListResponse converts catalog quotes to their DTO.
func ToPlanListResponse(quotes []mutual.PlanQuote) PlanListResponse {
	plans := make([]PlanResponse, len(quotes))
	for i, q := range quotes {
		plans[i] = PlanResponse{Name: q.Name, Price: q.Price.StringFixed(2)}
	}
	return PlanListResponse{Plans: plans}
}
