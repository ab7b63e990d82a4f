package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/pokemon-battle-service/internal/repository"
)

// readyTimeout bounds the store ping behind /ready.
const readyTimeout = 2 * time.Second

// Pinger is anything whose readiness can be checked, normally the battle store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves /live and /ready.
type HealthHandler struct {
	store   Pinger
	started time.Time
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store, started: time.Now()}
}

// readiness is the /ready body. Reason is a stable code, Error the raw message.
type readiness struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Reason string            `json:"reason,omitempty"`
	Error  string            `json:"error,omitempty"`
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "alive",
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}

// Readiness pings the store and reports why it is not ready.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	err := h.store.Ping(ctx)
	if err == nil {
		c.JSON(http.StatusOK, readiness{Status: "ready", Checks: map[string]string{"store": "ok"}})
		return
	}
	reason := storeReason(err)
	c.JSON(http.StatusServiceUnavailable, readiness{
		Status: "unavailable",
		Checks: map[string]string{"store": reason},
		Reason: reason,
		Error:  err.Error(),
	})
}

func storeReason(err error) string {
	switch {
	case errors.Is(err, repository.ErrClosed):
		return "store_closed"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "store_timeout"
	default:
		return "store_error"
	}
}
