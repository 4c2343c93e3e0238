package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atelierhq/storefront_api/internal/utils"
)

var startTime = time.Now()

// Check pings one backing store.
type Check func(ctx context.Context) error

// HealthHandler provides health endpoint.
type HealthHandler struct {
	checks map[string]Check
}

// NewHealthHandler creates a new HealthHandler with one check per store.
func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// GetHealth responds with the status of every store. Any failing store
// turns the response into a 503.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	healthy := true
	stores := make(gin.H, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			healthy = false
			stores[name] = gin.H{"status": "disconnected", "error": err.Error()}
			continue
		}
		stores[name] = gin.H{"status": "connected"}
	}

	data := gin.H{
		"status": "healthy",
		"uptime": int(time.Since(startTime).Seconds()),
		"stores": stores,
	}
	if !healthy {
		data["status"] = "degraded"
		utils.ErrorWithData(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "One or more stores are unreachable", data)
		return
	}
	utils.Success(c, http.StatusOK, "Service is healthy", data)
}
