// Package handler provides HTTP handlers for platform-level endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// defaultPingTimeout bounds how long a readiness probe waits for the store.
const defaultPingTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness endpoints.
type HealthHandler struct {
	store   Pinger
	timeout time.Duration
}

// NewHealthHandler creates a HealthHandler that probes store on readiness checks.
// A nil store makes Ready behave like Live.
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store, timeout: defaultPingTimeout}
}

// Live handles /healthz. It only reports that the process is serving.
func (h *HealthHandler) Live(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Ready handles /readyz. It answers 503 while the store cannot be pinged.
func (h *HealthHandler) Ready(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()

		if err := h.store.Ping(ctx); err != nil {
			slog.Warn("readiness check failed", "error", err, "remote_addr", c.ClientIP())
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
