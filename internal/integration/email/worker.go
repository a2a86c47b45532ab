package email

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/streamshare/backend/internal/application/adapter"
	"github.com/streamshare/backend/internal/domain/entity"
	domainerror "github.com/streamshare/backend/internal/domain/error"
	"github.com/streamshare/backend/internal/integration/email/templates"
)

// Renderer turns a template name and its data into HTML and plain text bodies.
type Renderer interface {
	Render(templateName string, data any) (html string, text string, err error)
}

// Worker processes the email queue and sends emails.
type Worker struct {
	queue        adapter.EmailQueueRepository
	sender       adapter.EmailSender
	renderer     Renderer
	pollInterval time.Duration
	batchSize    int
	retention    int
}

// WorkerConfig holds configuration for the email worker.
type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	// RetentionDays is how long sent jobs are kept. Zero keeps them forever.
	RetentionDays int
}

// DefaultWorkerConfig returns the default worker configuration.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval:  5 * time.Second,
		BatchSize:     10,
		RetentionDays: 30,
	}
}

// NewWorker creates a new email worker.
func NewWorker(queue adapter.EmailQueueRepository, sender adapter.EmailSender, renderer Renderer, config WorkerConfig) *Worker {
	return &Worker{
		queue:        queue,
		sender:       sender,
		renderer:     renderer,
		pollInterval: config.PollInterval,
		batchSize:    config.BatchSize,
		retention:    config.RetentionDays,
	}
}

// Start begins the worker loop. It blocks until the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("Email worker started",
		"poll_interval", w.pollInterval,
		"batch_size", w.batchSize,
	)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	cleanup := time.NewTicker(24 * time.Hour)
	defer cleanup.Stop()

	w.processBatch(ctx)
	w.purgeSent(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Email worker shutting down")
			return
		case <-ticker.C:
			w.processBatch(ctx)
		case <-cleanup.C:
			w.purgeSent(ctx)
		}
	}
}

// purgeSent deletes sent jobs older than the retention window.
func (w *Worker) purgeSent(ctx context.Context) {
	if w.retention <= 0 {
		return
	}
	deleted, err := w.queue.DeleteOldSentJobs(ctx, w.retention)
	if err != nil {
		slog.Error("Failed to purge sent email jobs", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("Purged sent email jobs", "count", deleted)
	}
}

// processBatch fetches and processes a batch of pending emails.
func (w *Worker) processBatch(ctx context.Context) {
	jobs, err := w.queue.GetPendingJobs(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to get pending email jobs", "error", err)
		return
	}

	if len(jobs) == 0 {
		return
	}

	slog.Debug("Processing email batch", "count", len(jobs))

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
			w.processJob(ctx, job)
		}
	}
}

// processJob processes a single email job.
func (w *Worker) processJob(ctx context.Context, job *entity.EmailJob) {
	logger := slog.With(
		"job_id", job.ID,
		"template", job.TemplateType,
		"recipient", job.RecipientEmail,
	)

	job.MarkProcessing()
	if err := w.queue.Update(ctx, job); err != nil {
		logger.Error("Failed to mark job as processing", "error", err)
		return
	}

	html, text, err := w.renderTemplate(job)
	if err != nil {
		logger.Error("Failed to render email template", "error", err)
		w.handleFailure(ctx, job, err, isPermanent(err))
		return
	}

	result, err := w.sender.Send(ctx, adapter.SendEmailInput{
		To:      job.RecipientEmail,
		Name:    job.RecipientName,
		Subject: job.Subject,
		HTML:    html,
		Text:    text,
	})

	if err != nil {
		logger.Error("Failed to send email", "error", err)
		w.handleFailure(ctx, job, err, isPermanent(err))
		return
	}

	job.MarkSent(result.ResendID)
	if err := w.queue.Update(ctx, job); err != nil {
		logger.Error("Failed to mark job as sent", "error", err)
		return
	}

	logger.Info("Email sent successfully", "resend_id", result.ResendID)
}

// renderTemplate renders the appropriate template for the job.
func (w *Worker) renderTemplate(job *entity.EmailJob) (html string, text string, err error) {
	templateName := string(job.TemplateType)

	var data any
	switch job.TemplateType {
	case entity.TemplateMutualInvitation:
		data = templates.MutualInvitationData{
			UserName:     getString(job.TemplateData, "user_name"),
			PlanName:     getString(job.TemplateData, "plan_name"),
			FullPrice:    getString(job.TemplateData, "full_price"),
			SplitPrice:   getString(job.TemplateData, "split_price"),
			Savings:      getString(job.TemplateData, "savings"),
			MemberCount:  getInt(job.TemplateData, "member_count"),
			AdminMessage: getString(job.TemplateData, "admin_message"),
			InvitesURL:   getString(job.TemplateData, "invites_url"),
		}
	case entity.TemplateMutualGroupActive:
		data = templates.MutualGroupActiveData{
			UserName:      getString(job.TemplateData, "user_name"),
			PlanName:      getString(job.TemplateData, "plan_name"),
			SplitPrice:    getString(job.TemplateData, "split_price"),
			MemberCount:   getInt(job.TemplateData, "member_count"),
			ConnectionURL: getString(job.TemplateData, "connection_url"),
		}
	default:
		return "", "", domainerror.NewEmailError(
			domainerror.ErrCodeInvalidTemplate,
			"unknown template type",
			domainerror.ErrInvalidTemplate,
		)
	}

	html, text, err = w.renderer.Render(templateName, data)
	if err != nil {
		return "", "", domainerror.NewEmailError(
			domainerror.ErrCodeTemplateRenderFailed,
			"failed to render "+templateName,
			err,
		)
	}
	return html, text, nil
}

// isPermanent reports whether err marks a job that retrying cannot fix.
// Errors without a code are retried.
func isPermanent(err error) bool {
	var emailErr *domainerror.EmailError
	return errors.As(err, &emailErr) && emailErr.Permanent()
}

// handleFailure handles a failed email job.
func (w *Worker) handleFailure(ctx context.Context, job *entity.EmailJob, err error, permanent bool) {
	job.MarkFailed(err, permanent)

	if updateErr := w.queue.Update(ctx, job); updateErr != nil {
		slog.Error("Failed to update job after failure",
			"job_id", job.ID,
			"error", updateErr,
		)
	}

	if job.Status == entity.EmailStatusFailed {
		slog.Warn("Email job permanently failed",
			"job_id", job.ID,
			"attempts", job.Attempts,
			"last_error", job.LastError,
		)
	} else {
		slog.Info("Email job scheduled for retry",
			"job_id", job.ID,
			"attempts", job.Attempts,
			"scheduled_at", job.ScheduledAt,
		)
	}
}

// getString safely extracts a string from a map.
func getString(data map[string]any, key string) string {
	if v, ok := data[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// getInt extracts a number that may have gone through a JSON round trip.
func getInt(data map[string]any, key string) int {
	switch v := data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// ProcessNow processes one batch synchronously.
func (w *Worker) ProcessNow(ctx context.Context) {
	w.processBatch(ctx)
}
