package email

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamshare/backend/internal/application/adapter"
	"github.com/streamshare/backend/internal/domain/entity"
	domainerror "github.com/streamshare/backend/internal/domain/error"
	"github.com/streamshare/backend/internal/integration/email/templates"
)

type fakeQueue struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*entity.EmailJob
	fail error
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{jobs: make(map[uuid.UUID]*entity.EmailJob)}
}

func (q *fakeQueue) Create(_ context.Context, job *entity.EmailJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.fail != nil {
		return q.fail
	}
	copied := *job
	q.jobs[job.ID] = &copied
	return nil
}

func (q *fakeQueue) GetPendingJobs(_ context.Context, limit int) ([]*entity.EmailJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var jobs []*entity.EmailJob
	for _, j := range q.jobs {
		if j.IsReadyToProcess(time.Now().UTC()) && len(jobs) < limit {
			copied := *j
			jobs = append(jobs, &copied)
		}
	}
	return jobs, nil
}

func (q *fakeQueue) Update(_ context.Context, job *entity.EmailJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	copied := *job
	q.jobs[job.ID] = &copied
	return nil
}

func (q *fakeQueue) GetByID(_ context.Context, id uuid.UUID) (*entity.EmailJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok {
		return nil, domainerror.ErrEmailJobNotFound
	}
	copied := *j
	return &copied, nil
}

func (q *fakeQueue) GetByRecipient(_ context.Context, email string) ([]*entity.EmailJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var jobs []*entity.EmailJob
	for _, j := range q.jobs {
		if j.RecipientEmail == email {
			copied := *j
			jobs = append(jobs, &copied)
		}
	}
	return jobs, nil
}

func (q *fakeQueue) CountByTemplate(_ context.Context, templateType entity.EmailTemplateType) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var n int64
	for _, j := range q.jobs {
		if j.TemplateType == templateType {
			n++
		}
	}
	return n, nil
}

func (q *fakeQueue) DeleteOldSentJobs(context.Context, int) (int64, error) { return 0, nil }

var _ adapter.EmailQueueRepository = (*fakeQueue)(nil)

func newTestWorker(t *testing.T, queue *fakeQueue, sender adapter.EmailSender) *Worker {
	t.Helper()
	renderer, err := templates.NewRenderer()
	require.NoError(t, err)
	return NewWorker(queue, sender, renderer, DefaultWorkerConfig())
}

func queueInvitation(t *testing.T, service *Service, email string) {
	t.Helper()
	require.NoError(t, service.QueueMutualInvitationEmail(context.Background(), adapter.QueueMutualInvitationInput{
		InviteID:    uuid.New(),
		UserEmail:   email,
		UserName:    "Asha",
		PlanName:    "Standard",
		FullPrice:   decimal.NewFromInt(499),
		SplitPrice:  decimal.RequireFromString("249.5"),
		MemberCount: 2,
	}))
}

func TestService(t *testing.T) {
	ctx := context.Background()

	t.Run("invitation job carries the pricing", func(t *testing.T) {
		queue := newFakeQueue()
		service := NewService(queue, "https://app.example.com/")
		queueInvitation(t, service, "asha@example.com")

		jobs, err := queue.GetByRecipient(ctx, "asha@example.com")
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		job := jobs[0]
		assert.Equal(t, entity.TemplateMutualInvitation, job.TemplateType)
		assert.Equal(t, "Share Standard and pay Rs. 249.50 a month", job.Subject)
		assert.Equal(t, "249.50", job.TemplateData["split_price"])
		assert.Equal(t, "249.50", job.TemplateData["savings"])
		assert.Equal(t, "https://app.example.com/mutual/invites", job.TemplateData["invites_url"])
	})

	t.Run("group active job", func(t *testing.T) {
		queue := newFakeQueue()
		service := NewService(queue, "https://app.example.com")
		err := service.QueueGroupActiveEmail(ctx, adapter.QueueGroupActiveInput{
			GroupID:     uuid.New(),
			UserEmail:   "bilal@example.com",
			PlanName:    "Premium",
			SplitPrice:  decimal.RequireFromString("324.5"),
			MemberCount: 2,
		})
		require.NoError(t, err)

		count, err := queue.CountByTemplate(ctx, entity.TemplateMutualGroupActive)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("queue failure is wrapped", func(t *testing.T) {
		queue := newFakeQueue()
		queue.fail = errors.New("disk full")
		err := NewService(queue, "").QueueGroupActiveEmail(ctx, adapter.QueueGroupActiveInput{UserEmail: "x@example.com"})

		var emailErr *domainerror.EmailError
		require.ErrorAs(t, err, &emailErr)
		assert.Equal(t, domainerror.ErrCodeEmailQueueFailed, emailErr.Code)
		assert.ErrorIs(t, err, domainerror.ErrEmailQueueFailed)
		assert.False(t, emailErr.Permanent())
	})
}

func TestWorker(t *testing.T) {
	ctx := context.Background()

	t.Run("sends rendered email", func(t *testing.T) {
		queue := newFakeQueue()
		sender := NewMockEmailSender()
		queueInvitation(t, NewService(queue, "https://app.example.com"), "asha@example.com")

		newTestWorker(t, queue, sender).ProcessNow(ctx)

		sent := sender.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "asha@example.com", sent[0].To)
		assert.Contains(t, sent[0].HTML, "Rs. 249.50")
		assert.Contains(t, sent[0].Text, "with 2 members")

		jobs, _ := queue.GetByRecipient(ctx, "asha@example.com")
		require.Len(t, jobs, 1)
		assert.Equal(t, entity.EmailStatusSent, jobs[0].Status)
		assert.Equal(t, "mock-1", jobs[0].ResendID)
	})

	t.Run("temporary failure schedules a retry", func(t *testing.T) {
		queue := newFakeQueue()
		sender := NewMockEmailSender()
		sender.SetFailure(errors.New("503 service unavailable"), false)
		queueInvitation(t, NewService(queue, ""), "asha@example.com")

		newTestWorker(t, queue, sender).ProcessNow(ctx)

		jobs, _ := queue.GetByRecipient(ctx, "asha@example.com")
		require.Len(t, jobs, 1)
		assert.Equal(t, entity.EmailStatusPending, jobs[0].Status)
		assert.Contains(t, jobs[0].LastError, "503 service unavailable")
		assert.Equal(t, 1, jobs[0].Attempts)
		assert.True(t, jobs[0].ScheduledAt.After(time.Now().UTC()))
	})

	t.Run("permanent failure stops retrying", func(t *testing.T) {
		queue := newFakeQueue()
		sender := NewMockEmailSender()
		sender.SetFailure(errors.New("422 invalid recipient"), true)
		queueInvitation(t, NewService(queue, ""), "asha@example.com")

		newTestWorker(t, queue, sender).ProcessNow(ctx)

		jobs, _ := queue.GetByRecipient(ctx, "asha@example.com")
		require.Len(t, jobs, 1)
		assert.Equal(t, entity.EmailStatusFailed, jobs[0].Status)
		assert.NotNil(t, jobs[0].ProcessedAt)
	})

	t.Run("unknown template fails permanently", func(t *testing.T) {
		queue := newFakeQueue()
		job := entity.NewEmailJob("password_reset", "asha@example.com", "", "reset", nil)
		require.NoError(t, queue.Create(ctx, job))

		newTestWorker(t, queue, NewMockEmailSender()).ProcessNow(ctx)

		stored, err := queue.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.EmailStatusFailed, stored.Status)
		assert.Equal(t, 1, stored.Attempts)
		assert.Contains(t, stored.LastError, "unknown template type")
	})

	t.Run("render failure fails permanently", func(t *testing.T) {
		queue := newFakeQueue()
		sender := NewMockEmailSender()
		queueInvitation(t, NewService(queue, ""), "asha@example.com")

		worker := NewWorker(queue, sender, failingRenderer{err: errors.New("template: missing key")}, DefaultWorkerConfig())
		worker.ProcessNow(ctx)

		assert.Empty(t, sender.Sent())
		jobs, _ := queue.GetByRecipient(ctx, "asha@example.com")
		require.Len(t, jobs, 1)
		assert.Equal(t, entity.EmailStatusFailed, jobs[0].Status)
		assert.Contains(t, jobs[0].LastError, "failed to render mutual_invitation")
		assert.Contains(t, jobs[0].LastError, "missing key")
	})
}

type failingRenderer struct {
	err error
}

func (r failingRenderer) Render(string, any) (string, string, error) {
	return "", "", r.err
}

func TestRenderTemplateErrors(t *testing.T) {
	t.Run("unknown template", func(t *testing.T) {
		worker := newTestWorker(t, newFakeQueue(), NewMockEmailSender())
		_, _, err := worker.renderTemplate(entity.NewEmailJob("password_reset", "asha@example.com", "", "reset", nil))

		assert.ErrorIs(t, err, domainerror.ErrInvalidTemplate)
		assert.NotErrorIs(t, err, domainerror.ErrTemplateRenderFailed)
		assert.True(t, isPermanent(err))
	})

	t.Run("renderer failure keeps its cause", func(t *testing.T) {
		cause := errors.New("boom")
		worker := NewWorker(newFakeQueue(), NewMockEmailSender(), failingRenderer{err: cause}, DefaultWorkerConfig())
		_, _, err := worker.renderTemplate(entity.NewEmailJob(entity.TemplateMutualGroupActive, "asha@example.com", "", "active", nil))

		var emailErr *domainerror.EmailError
		require.ErrorAs(t, err, &emailErr)
		assert.Equal(t, domainerror.ErrCodeTemplateRenderFailed, emailErr.Code)
		assert.ErrorIs(t, err, domainerror.ErrTemplateRenderFailed)
		assert.ErrorIs(t, err, cause)
		assert.True(t, isPermanent(err))
	})
}

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"provider rejection", domainerror.NewEmailError(domainerror.ErrCodePermanentEmailFailure, "rejected", nil), true},
		{"provider outage", domainerror.NewEmailError(domainerror.ErrCodeTemporaryEmailFailure, "unavailable", nil), false},
		{"wrapped rejection", fmt.Errorf("send: %w", domainerror.NewEmailError(domainerror.ErrCodePermanentEmailFailure, "rejected", nil)), true},
		{"plain error", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isPermanent(tt.err))
		})
	}
}

func TestIsPermanentError(t *testing.T) {
	assert.True(t, isPermanentError(errors.New("401 Unauthorized")))
	assert.True(t, isPermanentError(errors.New("validation_error: invalid `to` field")))
	assert.False(t, isPermanentError(errors.New("429 rate limit exceeded")))
	assert.False(t, isPermanentError(nil))
}
