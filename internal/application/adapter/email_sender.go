// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SendEmailInput represents the input for sending an email.
type SendEmailInput struct {
	To      string
	Name    string
	Subject string
	HTML    string
	Text    string
}

// SendEmailResult represents the result of sending an email.
type SendEmailResult struct {
	ResendID string
}

// EmailSender defines the interface for sending emails via an external provider.
type EmailSender interface {
	// Send sends an email via the email provider (e.g., Resend).
	Send(ctx context.Context, input SendEmailInput) (*SendEmailResult, error)
}

// EmailService defines the interface for queueing emails.
// Queue calls made with a transactional context are committed or rolled back with it.
type EmailService interface {
	// QueueMutualInvitationEmail queues the email telling a user they were invited to a group.
	QueueMutualInvitationEmail(ctx context.Context, input QueueMutualInvitationInput) error

	// QueueGroupActiveEmail queues the email telling a member their group is now active.
	QueueGroupActiveEmail(ctx context.Context, input QueueGroupActiveInput) error
}

// QueueMutualInvitationInput represents the input for queueing a mutual invitation email.
type QueueMutualInvitationInput struct {
	InviteID     uuid.UUID
	UserEmail    string
	UserName     string
	PlanName     string
	FullPrice    decimal.Decimal
	SplitPrice   decimal.Decimal
	MemberCount  int
	AdminMessage string
}

// QueueGroupActiveInput represents the input for queueing a group active email.
type QueueGroupActiveInput struct {
	GroupID     uuid.UUID
	UserEmail   string
	UserName    string
	PlanName    string
	SplitPrice  decimal.Decimal
	MemberCount int
}
