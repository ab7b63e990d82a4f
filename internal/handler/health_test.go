package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/pokemon-battle-service/internal/handler"
	"github.com/maxviazov/pokemon-battle-service/internal/repository"
	"github.com/maxviazov/pokemon-battle-service/internal/repository/memory"
)

func newHealthEngine(p handler.Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	// no services: only health and docs routes are mounted
	return handler.NewRouter(handler.RouterConfig{}, handler.Deps{Store: p}, zerolog.Nop())
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthEndpoints(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		path   string
		status int
	}{
		{"api ready", nil, "/api/health/ready", http.StatusOK},
		{"api ready down", repository.ErrClosed, "/api/health/ready", http.StatusServiceUnavailable},
		{"api live", repository.ErrClosed, "/api/health/live", http.StatusOK},
		{"root live", nil, "/live", http.StatusOK},
		{"root ready", nil, "/ready", http.StatusOK},
		{"root ready down", errors.New("disk gone"), "/ready", http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := get(newHealthEngine(stubPinger{err: tc.err}), tc.path)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
		})
	}
}

type readyBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Reason string            `json:"reason"`
	Error  string            `json:"error"`
}

func decodeReady(t *testing.T, w *httptest.ResponseRecorder) readyBody {
	t.Helper()
	var out readyBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestReadiness_Payload(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status string
		reason string
	}{
		{"ready", nil, "ready", ""},
		{"closed", fmt.Errorf("ping: %w", repository.ErrClosed), "unavailable", "store_closed"},
		{"timeout", context.DeadlineExceeded, "unavailable", "store_timeout"},
		{"other", errors.New("disk gone"), "unavailable", "store_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := decodeReady(t, get(newHealthEngine(stubPinger{err: tc.err}), "/ready"))
			assert.Equal(t, tc.status, body.Status)
			assert.Equal(t, tc.reason, body.Reason)
			if tc.err == nil {
				assert.Equal(t, map[string]string{"store": "ok"}, body.Checks)
				assert.Empty(t, body.Error)
				return
			}
			assert.Equal(t, tc.reason, body.Checks["store"])
			assert.Equal(t, tc.err.Error(), body.Error)
		})
	}
}

func TestReadiness_ClosedMemoryStore(t *testing.T) {
	store := memory.NewStore(zerolog.Nop())
	r := newHealthEngine(store)
	require.Equal(t, http.StatusOK, get(r, "/api/health/ready").Code)

	store.Close()
	w := get(r, "/api/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "store_closed", decodeReady(t, w).Reason)
	assert.Equal(t, http.StatusOK, get(r, "/api/health/live").Code)
}

func TestLiveness_ReportsUptime(t *testing.T) {
	w := get(newHealthEngine(stubPinger{}), "/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uptime_seconds":`)
	assert.Contains(t, w.Body.String(), `"status":"alive"`)
}

func TestHealth_NotFound(t *testing.T) {
	w := get(newHealthEngine(stubPinger{}), "/no-such")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
}

func TestReadiness_MethodNotAllowed(t *testing.T) {
	w := httptest.NewRecorder()
	newHealthEngine(stubPinger{}).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/health/ready", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestDocs(t *testing.T) {
	r := newHealthEngine(stubPinger{})

	w := get(r, "/openapi.yaml")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")
	assert.Contains(t, w.Body.String(), "/api/battle/{id}/rounds")

	w = get(r, "/docs")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/openapi.yaml")
}

func TestRequestIDEchoed(t *testing.T) {
	w := get(newHealthEngine(stubPinger{}), "/live")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := handler.NewRouter(handler.RouterConfig{CORSOrigins: []string{"https://pokedex.example"}}, handler.Deps{Store: stubPinger{}}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodOptions, "/api/health/live", nil)
	req.Header.Set("Origin", "https://pokedex.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://pokedex.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/health/live", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
