package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/velux/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// HealthCheck checks one dependency; a nil error means healthy
type HealthCheck func(ctx context.Context) error

// HealthHandler reports the state of the database and cache
type HealthHandler struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

// NewHealthHandler creates a HealthHandler. Dependencies that are not
// configured are simply left out of checks.
func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

// Check answers 200 when every dependency responds and 503 otherwise
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			logger.L(ctx).Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
			results[name] = "error"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}
	c.JSON(status, gin.H{
		"status": state,
		"time":   time.Now().Format(time.RFC3339),
		"checks": results,
	})
}
