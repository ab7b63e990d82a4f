package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/pokemon-battle-service/internal/middleware"
)

// ServiceInfo describes the running build for /monitoring/info.
type ServiceInfo struct {
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	Env       string    `json:"env"`
	StartedAt time.Time `json:"started_at"`
}

// MonitoringHandler exposes the in-process request statistics.
type MonitoringHandler struct {
	endpoints *middleware.Collector
	actions   *middleware.Collector
	info      ServiceInfo
	now       func() time.Time
}

func NewMonitoringHandler(endpoints, actions *middleware.Collector, info ServiceInfo) *MonitoringHandler {
	return &MonitoringHandler{endpoints: endpoints, actions: actions, info: info, now: time.Now}
}

func (h *MonitoringHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/monitoring")
	{
		g.GET("/statistics", h.statistics(h.endpoints))
		g.GET("/action-statistics", h.statistics(h.actions))
		g.GET("/info", h.serviceInfo)
	}
}

type statisticsResponse struct {
	Collector string            `json:"collector"`
	Total     int64             `json:"total_requests"`
	Entries   []middleware.Stat `json:"entries"`
}

func (h *MonitoringHandler) statistics(col *middleware.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		if col == nil {
			c.JSON(http.StatusOK, statisticsResponse{Entries: []middleware.Stat{}})
			return
		}
		c.JSON(http.StatusOK, statisticsResponse{
			Collector: col.Name(),
			Total:     col.Total(),
			Entries:   col.Snapshot(),
		})
	}
}

func (h *MonitoringHandler) serviceInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":       h.info.Name,
		"version":    h.info.Version,
		"env":        h.info.Env,
		"started_at": h.info.StartedAt,
		"uptime":     h.now().Sub(h.info.StartedAt).Round(time.Second).String(),
		"go_version": runtime.Version(),
		"goroutines": runtime.NumGoroutine(),
	})
}
