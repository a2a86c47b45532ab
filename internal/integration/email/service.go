// Package email provides email sending functionality.
package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/streamshare/backend/internal/application/adapter"
	"github.com/streamshare/backend/internal/domain/entity"
	domainerror "github.com/streamshare/backend/internal/domain/error"
)

// Service handles email queueing operations.
type Service struct {
	queue      adapter.EmailQueueRepository
	appBaseURL string
}

// NewService creates a new email service.
func NewService(queue adapter.EmailQueueRepository, appBaseURL string) *Service {
	return &Service{
		queue:      queue,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
	}
}

// QueueMutualInvitationEmail queues the invitation to join a mutual group.
func (s *Service) QueueMutualInvitationEmail(ctx context.Context, input adapter.QueueMutualInvitationInput) error {
	subject := fmt.Sprintf("Share %s and pay Rs. %s a month", input.PlanName, input.SplitPrice.StringFixed(2))

	templateData := map[string]any{
		"invite_id":     input.InviteID.String(),
		"user_name":     input.UserName,
		"plan_name":     input.PlanName,
		"full_price":    input.FullPrice.StringFixed(2),
		"split_price":   input.SplitPrice.StringFixed(2),
		"savings":       input.FullPrice.Sub(input.SplitPrice).StringFixed(2),
		"member_count":  input.MemberCount,
		"admin_message": input.AdminMessage,
		"invites_url":   s.appBaseURL + "/mutual/invites",
	}

	return s.enqueue(ctx, entity.TemplateMutualInvitation, input.UserEmail, input.UserName, subject, templateData)
}

// QueueGroupActiveEmail queues the notice that every member accepted.
func (s *Service) QueueGroupActiveEmail(ctx context.Context, input adapter.QueueGroupActiveInput) error {
	subject := fmt.Sprintf("Your %s group is active", input.PlanName)

	templateData := map[string]any{
		"group_id":       input.GroupID.String(),
		"user_name":      input.UserName,
		"plan_name":      input.PlanName,
		"split_price":    input.SplitPrice.StringFixed(2),
		"member_count":   input.MemberCount,
		"connection_url": s.appBaseURL + "/mutual/connection",
	}

	return s.enqueue(ctx, entity.TemplateMutualGroupActive, input.UserEmail, input.UserName, subject, templateData)
}

func (s *Service) enqueue(ctx context.Context, template entity.EmailTemplateType, to, name, subject string, data map[string]any) error {
	job := entity.NewEmailJob(template, to, name, subject, data)
	if err := s.queue.Create(ctx, job); err != nil {
		return domainerror.NewEmailError(
			domainerror.ErrCodeEmailQueueFailed,
			fmt.Sprintf("failed to queue %s email", template),
			err,
		)
	}
	return nil
}

// Ensure Service implements adapter.EmailService.
var _ adapter.EmailService = (*Service)(nil)
