package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	env  string
	ping func() error
}

func NewHealthHandler(env string, ping func() error) *HealthHandler {
	return &HealthHandler{env: env, ping: ping}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.ping != nil {
		if err := h.ping(); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Health is the public /api/health payload.
func (h *HealthHandler) Health(ctx *gin.Context) {
	RespondSuccess(ctx, http.StatusOK, "Server is running", gin.H{
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.env,
	})
}
