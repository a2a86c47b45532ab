package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// HealthController handles health check endpoints.
type HealthController struct {
	database HealthCheck
	cache    HealthCheck
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Cache     string `json:"cache"`
	Timestamp string `json:"timestamp"`
}

// NewHealthController creates a new health controller instance.
// A nil cache check reports the cache as disabled.
func NewHealthController(database, cache HealthCheck) *HealthController {
	return &HealthController{
		database: database,
		cache:    cache,
	}
}

// Check handles GET /health requests.
// The database is required; the cache only degrades the status.
func (h *HealthController) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "ok",
		Database:  "connected",
		Cache:     "disabled",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK

	if h.database == nil || h.database(ctx) != nil {
		response.Status = "unavailable"
		response.Database = "disconnected"
		status = http.StatusServiceUnavailable
	}

	if h.cache != nil {
		response.Cache = "connected"
		if err := h.cache(ctx); err != nil {
			response.Cache = "disconnected"
			if status == http.StatusOK {
				response.Status = "degraded"
			}
		}
	}

	c.JSON(status, response)
}
