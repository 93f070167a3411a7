package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/doorsets/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string `json:"status" example:"healthy"`
	Version  string `json:"version" example:"1.0.0"`
	Database string `json:"database" example:"ok"`
	Uptime   string `json:"uptime" example:"1h2m3s"`
	Time     string `json:"time"`
}

// HealthHandler answers load balancer health checks
type HealthHandler struct {
	db      Pinger
	version string
	started time.Time
	timeout time.Duration
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version, started: time.Now(), timeout: 2 * time.Second}
}

// Health godoc
// @Summary      Health check
// @Description  503 when the database cannot be reached.
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:   "healthy",
		Version:  h.version,
		Database: "ok",
		Uptime:   time.Since(h.started).Truncate(time.Second).String(),
		Time:     time.Now().UTC().Format(time.RFC3339),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		logger.L(c.Request.Context()).Warn("Health check failed", zap.Error(err))
		resp.Status = "unhealthy"
		resp.Database = "error"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
