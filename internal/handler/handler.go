package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/pokemon-battle-service/internal/middleware"
	"github.com/maxviazov/pokemon-battle-service/internal/model"
	"github.com/maxviazov/pokemon-battle-service/internal/repository"
	"github.com/maxviazov/pokemon-battle-service/internal/service"
	"github.com/maxviazov/pokemon-battle-service/pkg/response"
)

// APIPrefix is the canonical base path for the public HTTP API.
// Keep a single source of truth to avoid path drift across handlers and tests.
const APIPrefix = "/api"

// Deps carries everything the routes need. Nil services leave their routes unmounted,
// which keeps focused tests small.
type Deps struct {
	Store    Pinger
	Pokemon  service.PokemonService
	Trainers service.TrainerService
	Battles  service.BattleService
	Auth     service.AuthService
	Tokens   middleware.TokenValidator

	// LoginLimiter throttles POST /api/auth/login; nil disables throttling.
	LoginLimiter *middleware.RateLimiter
	Monitoring   *MonitoringHandler
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
}

// Register mounts all public routes on the given engine.
func Register(r *gin.Engine, d Deps) {
	h := NewHealthHandler(d.Store)

	// Health checks
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	// Docs endpoints (root-level)
	RegisterDocs(r)

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	api := r.Group(APIPrefix)
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}

		requireAuth := func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "authentication is not configured"})
		}
		if d.Tokens != nil {
			requireAuth = middleware.RequireAuth(d.Tokens)
		}

		if d.Pokemon != nil {
			NewPokemonHandler(d.Pokemon).Register(api, requireAuth)
		}
		if d.Trainers != nil && d.Battles != nil {
			NewTrainerHandler(d.Trainers, d.Battles).Register(api, requireAuth)
		}
		if d.Battles != nil {
			NewBattleHandler(d.Battles).Register(api, requireAuth)
		}
		if d.Auth != nil {
			var limit gin.HandlerFunc
			if d.LoginLimiter != nil {
				limit = d.LoginLimiter.Handler()
			}
			NewAuthHandler(d.Auth).Register(api, requireAuth, limit)
		}
		if d.Monitoring != nil {
			d.Monitoring.Register(api)
		}
	}
}

// adminOnly and trainerOnly mirror the two authorization policies of the API.
var (
	adminOnly   = middleware.RequireRole(model.RoleAdmin)
	trainerOnly = middleware.RequireRole(model.RoleTrainer, model.RoleAdmin)
)

// pathID parses a positive int64 path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, service.NewInvalidInputError([]service.FieldError{{Field: name, Message: "must be a positive integer"}})
	}
	return id, nil
}

// queryInt reads an optional integer query parameter, falling back to def when absent.
func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, service.NewInvalidInputError([]service.FieldError{{Field: name, Message: "must be an integer"}})
	}
	return n, nil
}

func pageFromQuery(c *gin.Context) (repository.Page, error) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return repository.Page{}, err
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return repository.Page{}, err
	}
	return repository.Page{Limit: limit, Offset: offset}, nil
}

// bindJSON decodes the body; parsing details are not echoed back to the client.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return service.NewInvalidInputError([]service.FieldError{{Field: "body", Message: "malformed JSON body"}})
	}
	return nil
}

// writeOne adapts a (value, error) service result to a JSON response.
func writeOne[T any](c *gin.Context, status int) func(T, error) {
	return func(v T, err error) {
		if err != nil {
			response.WriteError(c, err)
			return
		}
		response.WriteData(c, status, v)
	}
}

// writeList is writeOne for slices; a nil slice is rendered as [].
func writeList[T any](c *gin.Context) func([]T, error) {
	return func(items []T, err error) {
		if err != nil {
			response.WriteError(c, err)
			return
		}
		if items == nil {
			items = []T{}
		}
		response.WriteData(c, http.StatusOK, items)
	}
}
