package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/pokemon-battle-service/internal/model"
	"github.com/maxviazov/pokemon-battle-service/internal/service"
	"github.com/maxviazov/pokemon-battle-service/pkg/response"
)

// BattleHandler serves /battle. Every route needs a bearer token.
type BattleHandler struct {
	svc service.BattleService
}

func NewBattleHandler(svc service.BattleService) *BattleHandler { return &BattleHandler{svc: svc} }

func (h *BattleHandler) Register(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	g := r.Group("/battle", requireAuth)
	{
		g.GET("", h.list)
		g.GET("/recent", h.recent)
		g.GET("/statistics", h.summary)
		g.GET("/result/:result", h.byResult)
		g.GET("/:id", h.getByID)
		g.POST("", h.create)
		g.POST("/:id/rounds", h.addRound)
		g.PATCH("/:id/start", h.transition(h.svc.StartBattle))
		g.PATCH("/:id/winner", h.setWinner)
		g.PATCH("/:id/draw", h.transition(h.svc.SetDraw))
		g.PATCH("/:id/cancel", h.transition(h.svc.Cancel))
		g.PATCH("/:id/notes", h.addNotes)
		g.DELETE("/:id", h.delete)
	}
}

type createBattleRequest struct {
	Trainer1ID int64  `json:"trainer1_id"`
	Trainer2ID int64  `json:"trainer2_id"`
	Location   string `json:"location"`
}

type roundRequest struct {
	Pokemon1ID      int64  `json:"pokemon1_id"`
	Pokemon2ID      int64  `json:"pokemon2_id"`
	WinnerPokemonID *int64 `json:"winner_pokemon_id"`
	Description     string `json:"description"`
}

type winnerRequest struct {
	WinnerID int64 `json:"winner_id"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

func (h *BattleHandler) create(c *gin.Context) {
	var req createBattleRequest
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	b, err := h.svc.CreateBattle(c.Request.Context(), req.Trainer1ID, req.Trainer2ID, req.Location)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	c.Header("Location", APIPrefix+"/battle/"+strconv.FormatInt(b.ID, 10))
	response.WriteData(c, http.StatusCreated, b)
}

func (h *BattleHandler) getByID(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	writeOne[model.Battle](c, http.StatusOK)(h.svc.GetBattle(c.Request.Context(), id))
}

func (h *BattleHandler) list(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	res, err := h.svc.ListBattles(c.Request.Context(), page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *BattleHandler) recent(c *gin.Context) {
	days, err := queryInt(c, "days", service.DefaultRecentDays)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	writeList[model.Battle](c)(h.svc.GetRecentBattles(c.Request.Context(), days))
}

func (h *BattleHandler) summary(c *gin.Context) {
	writeOne[model.BattleSummary](c, http.StatusOK)(h.svc.GetSummary(c.Request.Context()))
}

func (h *BattleHandler) byResult(c *gin.Context) {
	result := model.BattleResult(c.Param("result"))
	writeList[model.Battle](c)(h.svc.ListBattlesByResult(c.Request.Context(), result))
}

func (h *BattleHandler) addRound(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var req roundRequest
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	in := service.RoundInput{
		Pokemon1ID:      req.Pokemon1ID,
		Pokemon2ID:      req.Pokemon2ID,
		WinnerPokemonID: req.WinnerPokemonID,
		Description:     req.Description,
	}
	writeOne[model.Battle](c, http.StatusCreated)(h.svc.AddRound(c.Request.Context(), id, in))
}

func (h *BattleHandler) setWinner(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var req winnerRequest
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	writeOne[model.Battle](c, http.StatusOK)(h.svc.SetWinner(c.Request.Context(), id, req.WinnerID))
}

func (h *BattleHandler) addNotes(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var req notesRequest
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	writeOne[model.Battle](c, http.StatusOK)(h.svc.AddNotes(c.Request.Context(), id, req.Notes))
}

func (h *BattleHandler) delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	if err := h.svc.DeleteBattle(c.Request.Context(), id); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// transition wraps the id-only state changes: start, draw and cancel.
func (h *BattleHandler) transition(fn func(ctx context.Context, id int64) (model.Battle, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			response.WriteError(c, err)
			return
		}
		writeOne[model.Battle](c, http.StatusOK)(fn(c.Request.Context(), id))
	}
}
