package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/pokemon-battle-service/internal/model"
	"github.com/maxviazov/pokemon-battle-service/internal/service"
	"github.com/maxviazov/pokemon-battle-service/pkg/response"
)

type PokemonHandler struct {
	svc service.PokemonService
}

func NewPokemonHandler(svc service.PokemonService) *PokemonHandler { return &PokemonHandler{svc: svc} }

// Register mounts /pokemon. Reads are public, writes need a bearer token.
func (h *PokemonHandler) Register(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	g := r.Group("/pokemon")
	{
		g.GET("", h.list)
		g.GET("/level", h.byLevel)
		g.GET("/name/:name", h.byName)
		g.GET("/type/:type", h.byType)
		g.GET("/ability/:ability", h.byAbility)
		g.GET("/:id", h.getByID)

		w := g.Group("", requireAuth)
		w.POST("", h.create)
		w.PUT("/:id", h.update)
		w.DELETE("/:id", h.delete)
		w.PATCH("/:id/level-up", h.levelUp)
		w.PATCH("/:id/ability", h.changeAbility)
	}
}

type pokemonRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Level   int    `json:"level"`
	Ability string `json:"ability"`
}

func (r pokemonRequest) input() service.PokemonInput {
	return service.PokemonInput{Name: r.Name, Type: r.Type, Level: r.Level, Ability: r.Ability}
}

type abilityRequest struct {
	Ability string `json:"ability"`
}

func (h *PokemonHandler) create(c *gin.Context) {
	var req pokemonRequest
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	p, err := h.svc.CreatePokemon(c.Request.Context(), req.input())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	c.Header("Location", APIPrefix+"/pokemon/"+strconv.FormatInt(p.ID, 10))
	response.WriteData(c, http.StatusCreated, p)
}

func (h *PokemonHandler) update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var req pokemonRequest
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	writeOne[model.Pokemon](c, http.StatusOK)(h.svc.UpdatePokemon(c.Request.Context(), id, req.input()))
}

func (h *PokemonHandler) delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	if err := h.svc.DeletePokemon(c.Request.Context(), id); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PokemonHandler) getByID(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	writeOne[model.Pokemon](c, http.StatusOK)(h.svc.GetPokemon(c.Request.Context(), id))
}

func (h *PokemonHandler) byName(c *gin.Context) {
	writeOne[model.Pokemon](c, http.StatusOK)(h.svc.GetPokemonByName(c.Request.Context(), c.Param("name")))
}

func (h *PokemonHandler) list(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	res, err := h.svc.ListPokemon(c.Request.Context(), page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *PokemonHandler) byType(c *gin.Context) {
	writeList[model.Pokemon](c)(h.svc.ListPokemonByType(c.Request.Context(), c.Param("type")))
}

func (h *PokemonHandler) byAbility(c *gin.Context) {
	writeList[model.Pokemon](c)(h.svc.ListPokemonByAbility(c.Request.Context(), c.Param("ability")))
}

func (h *PokemonHandler) byLevel(c *gin.Context) {
	minLevel, err := queryInt(c, "minLevel", model.MinPokemonLevel)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	maxLevel, err := queryInt(c, "maxLevel", model.MaxPokemonLevel)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	writeList[model.Pokemon](c)(h.svc.ListPokemonByLevel(c.Request.Context(), minLevel, maxLevel))
}

func (h *PokemonHandler) levelUp(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	writeOne[model.Pokemon](c, http.StatusOK)(h.svc.LevelUpPokemon(c.Request.Context(), id))
}

func (h *PokemonHandler) changeAbility(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var req abilityRequest
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	writeOne[model.Pokemon](c, http.StatusOK)(h.svc.ChangePokemonAbility(c.Request.Context(), id, req.Ability))
}
