package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/brandlens-backend/internal/http/response"
)

// Pinger is a dependency the readiness probe checks.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Ready reports 503 naming the first failing dependency.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			response.RespondError(c, http.StatusServiceUnavailable, name+"_unavailable", err)
			return
		}
	}
	response.RespondOK(c, gin.H{"status": "ready"})
}
