package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/user-management-api/pkg/response"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	Store   Pinger
	Timeout time.Duration
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{Store: store, Timeout: 2 * time.Second}
}

// Root is the service banner.
func (h *HealthHandler) Root(c *gin.Context) {
	c.String(http.StatusOK, "User Management API is running")
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"status": "ok"}, "alive", nil)
}

func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	if err := h.Store.Ping(ctx); err != nil {
		response.Error[any](c, http.StatusServiceUnavailable, "store unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ready"}, "ready", nil)
}
