package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/pokemon-battle-service/internal/model"
	"github.com/maxviazov/pokemon-battle-service/internal/service"
	"github.com/maxviazov/pokemon-battle-service/pkg/response"
)

// TrainerHandler serves /trainer. Battle lookups per trainer live here too,
// since their paths are rooted at a trainer.
type TrainerHandler struct {
	svc     service.TrainerService
	battles service.BattleService
}

func NewTrainerHandler(svc service.TrainerService, battles service.BattleService) *TrainerHandler {
	return &TrainerHandler{svc: svc, battles: battles}
}

func (h *TrainerHandler) Register(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	g := r.Group("/trainer")
	{
		g.GET("", h.list)
		g.GET("/name/:name", h.byName)
		g.GET("/region/:region", h.byRegion)
		g.GET("/:id", h.getByID)
		g.GET("/:id/statistics", h.statistics)
		g.GET("/:id/battles", h.battlesOf)
		g.GET("/:id/battles/:opponentId", h.history)

		w := g.Group("", requireAuth)
		w.POST("", h.create)
		w.PUT("/:id", h.update)
		w.DELETE("/:id", h.delete)

		team := w.Group("/:id/pokemon", trainerOnly)
		team.POST("", h.assign)
		team.DELETE("/:pokemonId", h.remove)
	}
}

type trainerRequest struct {
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Region     string `json:"region"`
	BadgeCount int    `json:"badge_count"`
}

func (r trainerRequest) input() service.TrainerInput {
	return service.TrainerInput{Name: r.Name, Age: r.Age, Region: r.Region, BadgeCount: r.BadgeCount}
}

type assignRequest struct {
	PokemonID int64 `json:"pokemon_id"`
}

func (h *TrainerHandler) create(c *gin.Context) {
	var req trainerRequest
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	t, err := h.svc.CreateTrainer(c.Request.Context(), req.input())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	c.Header("Location", APIPrefix+"/trainer/"+strconv.FormatInt(t.ID, 10))
	response.WriteData(c, http.StatusCreated, t)
}

func (h *TrainerHandler) update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var req trainerRequest
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	writeOne[model.Trainer](c, http.StatusOK)(h.svc.UpdateTrainer(c.Request.Context(), id, req.input()))
}

func (h *TrainerHandler) delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	if err := h.svc.DeleteTrainer(c.Request.Context(), id); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TrainerHandler) getByID(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	writeOne[model.Trainer](c, http.StatusOK)(h.svc.GetTrainer(c.Request.Context(), id))
}

func (h *TrainerHandler) byName(c *gin.Context) {
	writeOne[model.Trainer](c, http.StatusOK)(h.svc.GetTrainerByName(c.Request.Context(), c.Param("name")))
}

func (h *TrainerHandler) list(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	res, err := h.svc.ListTrainers(c.Request.Context(), page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *TrainerHandler) byRegion(c *gin.Context) {
	writeList[model.Trainer](c)(h.svc.ListTrainersByRegion(c.Request.Context(), c.Param("region")))
}

func (h *TrainerHandler) assign(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var req assignRequest
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	writeOne[model.Trainer](c, http.StatusOK)(h.svc.AssignPokemon(c.Request.Context(), id, req.PokemonID))
}

func (h *TrainerHandler) remove(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	pokemonID, err := pathID(c, "pokemonId")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	writeOne[model.Trainer](c, http.StatusOK)(h.svc.RemovePokemon(c.Request.Context(), id, pokemonID))
}

func (h *TrainerHandler) statistics(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	writeOne[model.BattleStatistics](c, http.StatusOK)(h.battles.GetStatistics(c.Request.Context(), id))
}

func (h *TrainerHandler) battlesOf(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	writeList[model.Battle](c)(h.battles.ListBattlesByTrainer(c.Request.Context(), id))
}

func (h *TrainerHandler) history(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	opponentID, err := pathID(c, "opponentId")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	writeList[model.Battle](c)(h.battles.GetBattleHistory(c.Request.Context(), id, opponentID))
}
