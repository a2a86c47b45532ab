// Package router sets up the HTTP routing for the application.
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/streamshare/backend/internal/integration/entrypoint/controller"
	"github.com/streamshare/backend/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine                *gin.Engine
	healthController      *controller.HealthController
	authController        *controller.AuthController
	mutualController      *controller.MutualController
	mutualAdminController *controller.MutualAdminController
	loginRateLimiter      *middleware.RateLimiter
	authMiddleware        *middleware.AuthMiddleware
	metricsHandler        http.Handler
	corsOrigins           []string
}

// Dependencies groups what the router needs. Nil controllers leave their routes unregistered.
type Dependencies struct {
	Health           *controller.HealthController
	Auth             *controller.AuthController
	Mutual           *controller.MutualController
	MutualAdmin      *controller.MutualAdminController
	LoginRateLimiter *middleware.RateLimiter
	AuthMiddleware   *middleware.AuthMiddleware
	MetricsHandler   http.Handler
	CORSOrigins      []string
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(deps Dependencies) *Router {
	return &Router{
		healthController:      deps.Health,
		authController:        deps.Auth,
		mutualController:      deps.Mutual,
		mutualAdminController: deps.MutualAdmin,
		loginRateLimiter:      deps.LoginRateLimiter,
		authMiddleware:        deps.AuthMiddleware,
		metricsHandler:        deps.MetricsHandler,
		corsOrigins:           deps.CORSOrigins,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	switch environment {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r.engine = gin.Default()
	if len(r.corsOrigins) > 0 {
		r.engine.Use(cors.New(cors.Config{
			AllowOrigins:     r.corsOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// Engine returns the configured engine; Setup must be called first.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) setupHealthRoutes() {
	if r.healthController != nil {
		r.engine.GET("/health", r.healthController.Check)
	}
	if r.metricsHandler != nil {
		r.engine.GET("/metrics", gin.WrapH(r.metricsHandler))
	}
}

func (r *Router) setupAPIRoutes() {
	v1 := r.engine.Group("/api/v1")

	if r.authController != nil {
		auth := v1.Group("/auth")
		if r.loginRateLimiter != nil {
			auth.POST("/login", r.loginRateLimiter.Middleware(), r.authController.Login)
		} else {
			auth.POST("/login", r.authController.Login)
		}
	}

	if r.authMiddleware == nil {
		return
	}

	if r.mutualController != nil {
		mutual := v1.Group("/mutual")
		mutual.Use(r.authMiddleware.Authenticate())
		{
			mutual.GET("/notifications/count", r.mutualController.NotificationCount)
			mutual.GET("/invites", r.mutualController.ListInvites)
			mutual.POST("/invites/:id/respond", r.mutualController.Respond)
			mutual.GET("/connection", r.mutualController.ActiveConnection)
		}
	}

	if r.mutualAdminController != nil {
		admin := v1.Group("/admin/mutual")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireAdmin())
		{
			admin.GET("/candidates", r.mutualAdminController.Candidates)
			admin.GET("/plans", r.mutualAdminController.Plans)
			admin.GET("/groups", r.mutualAdminController.ListGroups)
			admin.POST("/groups", r.mutualAdminController.CreateGroup)
			admin.GET("/groups/:id/members", r.mutualAdminController.GroupMembers)
			admin.POST("/groups/:id/retire", r.mutualAdminController.RetireGroup)
		}
	}
}
