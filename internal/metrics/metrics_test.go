package metrics_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/pokemon-battle-service/internal/metrics"
	"github.com/maxviazov/pokemon-battle-service/internal/model"
)

func TestMetrics_MiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.New()
	m.RegisterBattleSummary(func(context.Context) (model.BattleSummary, error) {
		return model.BattleSummary{TotalBattles: 3, CompletedBattles: 2, DrawBattles: 1}, nil
	})

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/pokemon/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/pokemon/25", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, _ := io.ReadAll(w.Body)
	text := string(body)
	assert.Contains(t, text, `pokemon_battle_http_requests_total{method="GET",route="/api/pokemon/:id",status="200"} 1`)
	assert.Contains(t, text, "pokemon_battle_http_request_duration_seconds_bucket")
	assert.Contains(t, text, `pokemon_battle_battles_total{result="completed"} 2`)
	assert.Contains(t, text, `pokemon_battle_battles_total{result="draw"} 1`)
	assert.Contains(t, text, "go_goroutines")
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = metrics.New()
		_ = metrics.New()
	})
}
