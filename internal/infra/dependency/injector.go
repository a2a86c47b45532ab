// Package dependency provides dependency injection for the application.
package dependency

import (
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/streamshare/backend/config"
	"github.com/streamshare/backend/internal/application/adapter"
	"github.com/streamshare/backend/internal/application/usecase/auth"
	"github.com/streamshare/backend/internal/application/usecase/mutual"
	"github.com/streamshare/backend/internal/domain/valueobject"
	"github.com/streamshare/backend/internal/infra/db"
	"github.com/streamshare/backend/internal/infra/metrics"
	infraredis "github.com/streamshare/backend/internal/infra/redis"
	"github.com/streamshare/backend/internal/infra/server/router"
	"github.com/streamshare/backend/internal/integration/adapters"
	"github.com/streamshare/backend/internal/integration/cache"
	"github.com/streamshare/backend/internal/integration/email"
	"github.com/streamshare/backend/internal/integration/email/templates"
	"github.com/streamshare/backend/internal/integration/entrypoint/controller"
	"github.com/streamshare/backend/internal/integration/entrypoint/middleware"
	"github.com/streamshare/backend/internal/integration/persistence"
)

// Injector holds all application dependencies.
type Injector struct {
	Config      *config.Config
	DB          *gorm.DB
	Router      *router.Router
	Metrics     *metrics.MutualMetrics
	EmailWorker *email.Worker
	EnsureAdmin *auth.EnsureAdminUseCase
	// EmailSender is exposed so tests can inspect delivered mail.
	EmailSender adapter.EmailSender
}

// Option adjusts the injector before wiring.
type Option func(*options)

type options struct {
	sender adapter.EmailSender
}

// WithEmailSender replaces the configured email provider.
func WithEmailSender(sender adapter.EmailSender) Option {
	return func(o *options) { o.sender = sender }
}

// NewInjector creates a new dependency injector with all dependencies wired.
// redisClient may be nil, in which case notification counts are not cached.
func NewInjector(cfg *config.Config, gormDB *gorm.DB, redisClient goredis.Cmdable, opts ...Option) (*Injector, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	catalog, err := planCatalog(cfg.Mutual.PlanPrices)
	if err != nil {
		return nil, err
	}

	// Repositories
	userRepo := persistence.NewUserRepository(gormDB)
	registry := persistence.NewGroupRegistryRepository(gormDB)
	ledger := persistence.NewInvitationLedgerRepository(gormDB)
	directory := persistence.NewSubscriberRepository(gormDB)
	emailQueueRepo := persistence.NewEmailQueueRepository(gormDB)
	transactor := persistence.NewTransactor(gormDB)

	// Adapters and services
	passwordService := adapters.NewPasswordService(cfg.JWT.BcryptCost)
	tokenService := adapters.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	emailService := email.NewService(emailQueueRepo, cfg.Email.AppBaseURL)
	mutualMetrics := metrics.NewMutualMetrics()

	notificationCache := cache.NewNopNotificationCache()
	cacheCheck := controller.HealthCheck(nil)
	if redisClient != nil {
		cacheCheck = infraredis.HealthCheck(redisClient)
		if cfg.Mutual.NotificationCacheTTL > 0 {
			notificationCache = cache.NewRedisNotificationCache(redisClient, cfg.Mutual.NotificationCacheTTL)
		}
	}

	sender := o.sender
	if sender == nil {
		sender, err = emailSender(cfg.Email)
		if err != nil {
			return nil, err
		}
	}
	renderer, err := templates.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}
	worker := email.NewWorker(emailQueueRepo, sender, renderer, email.WorkerConfig{
		PollInterval:  cfg.Email.PollInterval,
		BatchSize:     cfg.Email.BatchSize,
		RetentionDays: cfg.Email.RetentionDays,
	})

	mutualOptions := mutual.Options{
		MinMembers:          cfg.Mutual.MinMembers,
		RequireAdminMessage: cfg.Mutual.RequireAdminMessage,
		SingleMembership:    cfg.Mutual.SingleMembership,
		StallOnDecline:      cfg.Mutual.StallOnDecline,
	}

	// Auth use cases
	loginUseCase := auth.NewLoginUserUseCase(userRepo, passwordService, tokenService)
	ensureAdminUseCase := auth.NewEnsureAdminUseCase(userRepo, passwordService)

	// Mutual use cases
	notificationCountUseCase := mutual.NewGetNotificationCountUseCase(ledger, notificationCache)
	listInvitesUseCase := mutual.NewListUserInvitesUseCase(ledger)
	respondUseCase := mutual.NewRespondToInviteUseCase(registry, ledger, transactor, emailService, notificationCache, mutualMetrics, mutualOptions)
	activeConnectionUseCase := mutual.NewGetActiveConnectionUseCase(registry, ledger)
	lowUsageUseCase := mutual.NewGetLowUsageUsersUseCase(directory)
	createGroupUseCase := mutual.NewCreateGroupAndInviteUseCase(registry, ledger, directory, transactor, emailService, notificationCache, mutualMetrics, catalog, mutualOptions)
	listGroupsUseCase := mutual.NewListGroupsUseCase(registry)
	groupMembersUseCase := mutual.NewGetGroupMembersUseCase(registry, ledger)
	retireGroupUseCase := mutual.NewRetireGroupUseCase(registry, ledger, transactor, notificationCache, mutualMetrics)
	listPlansUseCase := mutual.NewListPlansUseCase(catalog)

	// Controllers
	healthController := controller.NewHealthController(db.Wrap(gormDB).Ping, cacheCheck)
	authController := controller.NewAuthController(loginUseCase)
	mutualController := controller.NewMutualController(
		notificationCountUseCase,
		listInvitesUseCase,
		respondUseCase,
		activeConnectionUseCase,
	)
	mutualAdminController := controller.NewMutualAdminController(
		lowUsageUseCase,
		createGroupUseCase,
		listGroupsUseCase,
		groupMembersUseCase,
		retireGroupUseCase,
		listPlansUseCase,
		cfg.Mutual.LowUsageDefaultMinutes,
	)

	// Middleware
	loginRateLimiter := middleware.NewRateLimiterWithConfig(cfg.Server.LoginMaxAttempts, cfg.Server.LoginWindow)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	r := router.NewRouter(router.Dependencies{
		Health:           healthController,
		Auth:             authController,
		Mutual:           mutualController,
		MutualAdmin:      mutualAdminController,
		LoginRateLimiter: loginRateLimiter,
		AuthMiddleware:   authMiddleware,
		MetricsHandler:   mutualMetrics.Handler(),
		CORSOrigins:      cfg.Server.CORSOrigins,
	})

	return &Injector{
		Config:      cfg,
		DB:          gormDB,
		Router:      r,
		Metrics:     mutualMetrics,
		EmailWorker: worker,
		EnsureAdmin: ensureAdminUseCase,
		EmailSender: sender,
	}, nil
}

func planCatalog(raw string) (valueobject.PlanCatalog, error) {
	if raw == "" {
		return valueobject.DefaultPlanCatalog(), nil
	}
	catalog, err := valueobject.ParsePlanCatalog(raw)
	if err != nil {
		return valueobject.PlanCatalog{}, fmt.Errorf("invalid PLAN_PRICES: %w", err)
	}
	return catalog, nil
}

// emailSender returns the Resend client, or a recording mock when no API key is configured.
func emailSender(cfg config.EmailConfig) (adapter.EmailSender, error) {
	if cfg.ResendAPIKey == "" {
		slog.Warn("RESEND_API_KEY not set, emails will be recorded instead of sent")
		return email.NewMockEmailSender(), nil
	}
	client := email.NewResendClient(cfg.ResendAPIKey, cfg.FromName, cfg.FromEmail)
	if cfg.ResendBaseURL != "" {
		if err := client.SetBaseURL(cfg.ResendBaseURL); err != nil {
			return nil, err
		}
	}
	return client, nil
}
