package handler

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/maxviazov/pokemon-battle-service/internal/middleware"
)

// RouterConfig collects the cross-cutting middleware settings.
type RouterConfig struct {
	// CORSOrigins lists allowed origins; empty or "*" allows any origin without credentials.
	CORSOrigins []string
	SlowRequest time.Duration
	// Middleware runs after request id, logging and CORS, before the routes. Nil entries are skipped.
	Middleware []gin.HandlerFunc
}

// NewRouter builds the gin engine with the shared middleware chain and every route of d.
func NewRouter(cfg RouterConfig, d Deps, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(logger, cfg.SlowRequest), cors.New(corsConfig(cfg.CORSOrigins)))
	for _, mw := range cfg.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method_not_allowed"})
	})

	Register(r, d)
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	cfg.ExposeHeaders = []string{middleware.RequestIDHeader, "Location", "Retry-After"}
	cfg.MaxAge = 12 * time.Hour
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
